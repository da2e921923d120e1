package collab

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderoom/internal/app/executor"
	"coderoom/internal/app/room"
	"coderoom/internal/app/tree"
)

type fakeExecutor struct {
	fn func(ctx context.Context, req executor.Request) (*executor.Result, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	return f.fn(ctx, req)
}

func echoExecutor() *fakeExecutor {
	return &fakeExecutor{fn: func(_ context.Context, req executor.Request) (*executor.Result, error) {
		raw, _ := json.Marshal(map[string]any{"run": map[string]string{"output": req.Stdin}})
		return &executor.Result{Raw: raw, Output: req.Stdin}, nil
	}}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(Options{Executor: echoExecutor()})
	t.Cleanup(func() { h.Shutdown(context.Background()) })
	return h
}

func newTestClient(h *Hub) *Client {
	c := NewClient(h, nil)
	h.Register(c)
	return c
}

func envelope(t *testing.T, event EventType, data any) Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Envelope{Event: event, Data: raw}
}

func joinRoom(t *testing.T, h *Hub, c *Client, roomID, user string) {
	t.Helper()
	h.Dispatch(c, envelope(t, EventJoin, JoinPayload{RoomID: roomID, UserName: user}))
}

// nextFrame returns the next queued frame for c.
func nextFrame(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send queue closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame: %s", msg)
		}
	default:
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func decodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestJoinSendsCodeAndBroadcastsUsers(t *testing.T) {
	h := newTestHub(t)
	alice := newTestClient(h)

	joinRoom(t, h, alice, "room-1", "alice")

	env := nextFrame(t, alice)
	assert.Equal(t, EventCodeUpdate, env.Event)
	assert.Equal(t, room.DefaultCode, decodeData[string](t, env))

	env = nextFrame(t, alice)
	assert.Equal(t, EventUserJoined, env.Event)
	assert.Equal(t, []string{"alice"}, decodeData[[]string](t, env))

	bob := newTestClient(h)
	joinRoom(t, h, bob, "room-1", "bob")

	assert.Equal(t, EventCodeUpdate, nextFrame(t, bob).Event)
	assert.Equal(t, []string{"alice", "bob"}, decodeData[[]string](t, nextFrame(t, bob)))
	assert.Equal(t, []string{"alice", "bob"}, decodeData[[]string](t, nextFrame(t, alice)))
}

func TestJoinRejectsInvalidInput(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)

	joinRoom(t, h, c, "bad room!", "alice")
	joinRoom(t, h, c, "room-1", "")
	h.Dispatch(c, Envelope{Event: EventJoin, Data: json.RawMessage(`"not an object"`)})
	h.Dispatch(c, Envelope{Event: EventJoin})

	assertNoFrame(t, c)
	assert.Equal(t, 0, h.Stats().Rooms)
}

func TestEventsBeforeJoinAreDropped(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)

	h.Dispatch(c, envelope(t, EventCodeChange, CodeChangePayload{RoomID: "room-1", Code: "x"}))
	h.Dispatch(c, envelope(t, EventLanguageChange, LanguageChangePayload{RoomID: "room-1", Language: "go"}))
	h.Dispatch(c, envelope(t, EventCompileCode, CompilePayload{RoomID: "room-1", Language: "go"}))

	assertNoFrame(t, c)
	_, ok := h.RoomInfo("room-1")
	assert.False(t, ok)
}

func TestCodeChangeReachesOthersOnly(t *testing.T) {
	h := newTestHub(t)
	alice, bob := newTestClient(h), newTestClient(h)
	joinRoom(t, h, alice, "room-1", "alice")
	joinRoom(t, h, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	h.Dispatch(alice, envelope(t, EventCodeChange, CodeChangePayload{RoomID: "room-1", Code: "fmt.Println(1)"}))

	env := nextFrame(t, bob)
	assert.Equal(t, EventCodeUpdate, env.Event)
	assert.Equal(t, "fmt.Println(1)", decodeData[string](t, env))
	assertNoFrame(t, alice)

	info, ok := h.RoomInfo("room-1")
	require.True(t, ok)
	assert.Equal(t, "fmt.Println(1)", info.Code)

	// a late joiner receives the current buffer
	carol := newTestClient(h)
	joinRoom(t, h, carol, "room-1", "carol")
	assert.Equal(t, "fmt.Println(1)", decodeData[string](t, nextFrame(t, carol)))
}

func TestEventsForForeignRoomAreDropped(t *testing.T) {
	h := newTestHub(t)
	alice, bob := newTestClient(h), newTestClient(h)
	joinRoom(t, h, alice, "room-1", "alice")
	joinRoom(t, h, bob, "room-2", "bob")
	drain(alice)
	drain(bob)

	h.Dispatch(alice, envelope(t, EventCodeChange, CodeChangePayload{RoomID: "room-2", Code: "hijack"}))

	assertNoFrame(t, bob)
	info, _ := h.RoomInfo("room-2")
	assert.Equal(t, room.DefaultCode, info.Code)
}

func TestFileChangeWritesAndRefreshesEveryone(t *testing.T) {
	h := newTestHub(t)
	alice, bob := newTestClient(h), newTestClient(h)
	joinRoom(t, h, alice, "room-1", "alice")
	joinRoom(t, h, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	require.NoError(t, h.CreateDirectory("room-1", "src"))
	assert.Equal(t, EventFileRefresh, nextFrame(t, alice).Event)
	assert.Equal(t, EventFileRefresh, nextFrame(t, bob).Event)

	h.Dispatch(alice, envelope(t, EventFileChange, FileChangePayload{RoomID: "room-1", Path: "src/main.go", Content: "package main"}))

	env := nextFrame(t, alice)
	assert.Equal(t, EventFileRefresh, env.Event)
	assert.Empty(t, env.Data)
	assert.Equal(t, EventFileRefresh, nextFrame(t, bob).Event)

	content, err := h.ReadFile("room-1", "src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", content)
}

func TestFileChangeFailuresAreSilent(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	joinRoom(t, h, c, "room-1", "alice")
	drain(c)

	h.Dispatch(c, envelope(t, EventFileChange, FileChangePayload{RoomID: "room-1", Path: "missing/main.go", Content: "x"}))
	h.Dispatch(c, envelope(t, EventFileChange, FileChangePayload{RoomID: "room-1", Path: "bad path", Content: "x"}))
	h.Dispatch(c, envelope(t, EventFileChange, FileChangePayload{RoomID: "room-1", Path: "a//b", Content: "x"}))

	assertNoFrame(t, c)
}

func TestTypingAndLanguageRelays(t *testing.T) {
	h := newTestHub(t)
	alice, bob := newTestClient(h), newTestClient(h)
	joinRoom(t, h, alice, "room-1", "alice")
	joinRoom(t, h, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	h.Dispatch(alice, envelope(t, EventTyping, TypingPayload{RoomID: "room-1", UserName: "alice"}))
	env := nextFrame(t, bob)
	assert.Equal(t, EventUserTyping, env.Event)
	assert.Equal(t, "alice", decodeData[string](t, env))
	assertNoFrame(t, alice)

	h.Dispatch(bob, envelope(t, EventTyping, TypingPayload{RoomID: "room-1"}))
	assert.Equal(t, "bob", decodeData[string](t, nextFrame(t, alice)))

	h.Dispatch(alice, envelope(t, EventLanguageChange, LanguageChangePayload{RoomID: "room-1", Language: "python"}))
	for _, c := range []*Client{alice, bob} {
		env := nextFrame(t, c)
		assert.Equal(t, EventLanguageUpdate, env.Event)
		assert.Equal(t, "python", decodeData[string](t, env))
	}
}

func TestDisconnectBroadcastsRemainingAndDiscardsEmptyRoom(t *testing.T) {
	h := newTestHub(t)
	alice, bob := newTestClient(h), newTestClient(h)
	joinRoom(t, h, alice, "room-1", "alice")
	joinRoom(t, h, bob, "room-1", "bob")
	require.NoError(t, h.CreateFile("room-1", "notes.txt"))
	drain(alice)
	drain(bob)

	h.Disconnect(alice)

	env := nextFrame(t, bob)
	assert.Equal(t, EventUserJoined, env.Event)
	assert.Equal(t, []string{"bob"}, decodeData[[]string](t, env))

	_, ok := <-alice.send
	assert.False(t, ok, "disconnect closes the send queue")

	h.Disconnect(bob)
	_, ok = h.RoomInfo("room-1")
	assert.False(t, ok)

	// a later join starts from scratch
	carol := newTestClient(h)
	joinRoom(t, h, carol, "room-1", "carol")
	assert.Equal(t, room.DefaultCode, decodeData[string](t, nextFrame(t, carol)))
	root, err := h.Tree("room-1")
	require.NoError(t, err)
	assert.Empty(t, root)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	joinRoom(t, h, c, "room-1", "alice")

	h.Disconnect(c)
	assert.NotPanics(t, func() { h.Disconnect(c) })
	assert.Equal(t, Stats{}, h.Stats())
}

func TestJoinAnotherRoomLeavesPrevious(t *testing.T) {
	h := newTestHub(t)
	alice, bob := newTestClient(h), newTestClient(h)
	joinRoom(t, h, alice, "room-1", "alice")
	joinRoom(t, h, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	joinRoom(t, h, alice, "room-2", "alice")

	env := nextFrame(t, bob)
	assert.Equal(t, EventUserJoined, env.Event)
	assert.Equal(t, []string{"bob"}, decodeData[[]string](t, env))

	assert.Equal(t, EventCodeUpdate, nextFrame(t, alice).Event)
	assert.Equal(t, []string{"alice"}, decodeData[[]string](t, nextFrame(t, alice)))

	// alice no longer receives room-1 traffic
	h.Dispatch(bob, envelope(t, EventLanguageChange, LanguageChangePayload{RoomID: "room-1", Language: "go"}))
	drain(bob)
	assertNoFrame(t, alice)
}

func TestRejoinSameRoomKeepsState(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	joinRoom(t, h, c, "room-1", "alice")
	require.NoError(t, h.CreateFile("room-1", "keep.txt"))
	drain(c)

	joinRoom(t, h, c, "room-1", "alice")
	assert.Equal(t, EventCodeUpdate, nextFrame(t, c).Event)
	assert.Equal(t, []string{"alice"}, decodeData[[]string](t, nextFrame(t, c)))

	_, err := h.ReadFile("room-1", "keep.txt")
	assert.NoError(t, err)
}

func TestSlowConsumerQueueIsClosed(t *testing.T) {
	h := newTestHub(t)
	slow, fast := newTestClient(h), newTestClient(h)
	joinRoom(t, h, slow, "room-1", "slow")
	joinRoom(t, h, fast, "room-1", "fast")

	for i := 0; i < sendQueueSize+1; i++ {
		h.Dispatch(fast, envelope(t, EventCodeChange, CodeChangePayload{RoomID: "room-1", Code: "x"}))
	}

	h.mu.Lock()
	assert.True(t, slow.sendClosed)
	h.mu.Unlock()

	// further broadcasts skip the closed queue without panicking
	assert.NotPanics(t, func() {
		h.Dispatch(fast, envelope(t, EventCodeChange, CodeChangePayload{RoomID: "room-1", Code: "y"}))
	})
}

func TestUnknownEventIgnored(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	joinRoom(t, h, c, "room-1", "alice")
	drain(c)

	h.Dispatch(c, Envelope{Event: "chatMessage", Data: json.RawMessage(`{}`)})
	assertNoFrame(t, c)
}

func TestTreeFacadeBroadcastsOnlyOnSuccess(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	joinRoom(t, h, c, "room-1", "alice")
	drain(c)

	require.NoError(t, h.CreateFile("room-1", "a/b.txt"))
	assert.Equal(t, EventFileRefresh, nextFrame(t, c).Event)

	assert.ErrorIs(t, h.CreateFile("room-1", "a/b.txt"), tree.ErrAlreadyExists)
	assert.ErrorIs(t, h.DeletePath("room-1", "nope"), tree.ErrNotFound)
	assertNoFrame(t, c)

	require.NoError(t, h.DeletePath("room-1", "a"))
	assert.Equal(t, EventFileRefresh, nextFrame(t, c).Event)

	root, err := h.Tree("room-1")
	require.NoError(t, err)
	assert.Equal(t, tree.Directory{}, root)
}

func TestTreeReturnsCopy(t *testing.T) {
	h := newTestHub(t)
	require.NoError(t, h.CreateFile("room-1", "a.txt"))

	root, err := h.Tree("room-1")
	require.NoError(t, err)
	root["b.txt"] = tree.File("injected")

	_, err = h.ReadFile("room-1", "b.txt")
	assert.ErrorIs(t, err, tree.ErrNotFound)
}

func TestSnapshotAndRestore(t *testing.T) {
	h := newTestHub(t)

	_, ok, err := h.Snapshot("room-1")
	require.NoError(t, err)
	assert.False(t, ok, "snapshots need a live room")
	assert.False(t, h.RestoreTree("room-1", tree.Directory{}))

	c := newTestClient(h)
	joinRoom(t, h, c, "room-1", "alice")
	require.NoError(t, h.CreateFile("room-1", "src/main.go"))
	drain(c)

	snap, ok, err := h.Snapshot("room-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tree.Directory{"src": tree.Directory{"main.go": tree.File("")}}, snap)

	require.True(t, h.RestoreTree("room-1", tree.Directory{"README.md": tree.File("hi")}))
	assert.Equal(t, EventFileRefresh, nextFrame(t, c).Event)

	content, err := h.ReadFile("room-1", "README.md")
	require.NoError(t, err)
	assert.Equal(t, "hi", content)
}

func TestRegisterAfterShutdownClosesQueue(t *testing.T) {
	h := NewHub(Options{Executor: echoExecutor()})
	h.Shutdown(context.Background())

	c := newTestClient(h)
	_, ok := <-c.send
	assert.False(t, ok)

	joinRoom(t, h, c, "room-1", "alice")
	assert.Equal(t, 0, h.Stats().Rooms)
}

func TestShutdownClosesAllQueues(t *testing.T) {
	h := NewHub(Options{Executor: echoExecutor()})
	a, b := newTestClient(h), newTestClient(h)
	joinRoom(t, h, a, "room-1", "alice")
	drain(a)

	h.Shutdown(context.Background())

	for _, c := range []*Client{a, b} {
		_, ok := <-c.send
		assert.False(t, ok)
	}
}
