/*
Package collab contains the real-time core of the editor: the Hub that owns all room
state and the Client sessions attached to it.

This file defines the Hub. A single mutex serializes every state transition, whether it
comes from a websocket event or an HTTP call, so each one runs to completion before the
next starts. Broadcasts are queued while the lock is held, which keeps the order in which
clients observe events identical to the order in which they were applied.
*/
package collab

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"coderoom/internal/app/db"
	"coderoom/internal/app/executor"
	"coderoom/internal/app/room"
	"coderoom/internal/app/tree"
	"coderoom/internal/pkg/limiter"
	"coderoom/internal/pkg/logx"
)

// Executor runs code on behalf of a room.
type Executor interface {
	Execute(ctx context.Context, req executor.Request) (*executor.Result, error)
}

// ExecutionLog persists execution history. It is optional.
type ExecutionLog interface {
	Record(ctx context.Context, e db.Execution) error
	Recent(ctx context.Context, roomID string, limit int) ([]db.Execution, error)
}

// Options configures a Hub.
type Options struct {
	// Executor is required.
	Executor Executor

	// Log receives one entry per execution when set.
	Log ExecutionLog

	// ExecLimiter throttles executions per room when set.
	ExecLimiter *limiter.KeyedLimiter
}

// Stats is a point-in-time view of the Hub used by health checks.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Hub owns the room registry, the tree store and the room → connections index.
type Hub struct {
	// mu serializes every read and write of the fields below as well as
	// all queueing onto client send channels.
	mu sync.Mutex

	rooms *room.Registry
	trees *tree.Store

	// conns maps a room id to the connections joined to it.
	conns map[string]map[*Client]struct{}

	// clients holds every registered connection, joined or not.
	clients map[*Client]struct{}

	// closed is set once Shutdown starts; new work is refused afterwards.
	closed bool

	executor    Executor
	log         ExecutionLog
	execLimiter *limiter.KeyedLimiter

	// inflight tracks running executions.
	inflight sync.WaitGroup

	// ctx is cancelled when Shutdown gives up on in-flight executions.
	ctx    context.Context
	cancel context.CancelFunc

	logger zerolog.Logger
}

// NewHub constructs a Hub with empty state.
func NewHub(opts Options) *Hub {
	trees := tree.NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		rooms:       room.NewRegistry(trees),
		trees:       trees,
		conns:       make(map[string]map[*Client]struct{}),
		clients:     make(map[*Client]struct{}),
		executor:    opts.Executor,
		log:         opts.Log,
		execLimiter: opts.ExecLimiter,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logx.With("Hub"),
	}
}

// Register adds a freshly accepted connection. A Hub that is shutting down closes the
// connection's queue straight away.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		h.closeSendLocked(c)
		return
	}
	h.clients[c] = struct{}{}
}

// Disconnect moves the connection to Closed and performs the leave for its room.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.state == stateClosed {
		return
	}

	wasJoined := c.state == stateJoined
	c.state = stateClosed
	delete(h.clients, c)
	h.closeSendLocked(c)

	if wasJoined {
		h.departLocked(c, c.roomID, c.userName, true)
	}

	c.logger.Info().Bool("was_joined", wasJoined).Msg("Client disconnected.")
}

// Stats reports the number of live rooms and registered connections.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	return Stats{Rooms: h.rooms.Len(), Connections: len(h.clients)}
}

// Shutdown refuses new work, waits for in-flight executions until ctx is done and then
// closes every connection's send queue.
func (h *Hub) Shutdown(ctx context.Context) {
	h.logger.Info().Msg("Shutting down Hub...")

	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		h.logger.Warn().Msg("Shutdown deadline reached, cancelling in-flight executions.")
		h.cancel()
		<-done
	}
	h.cancel()

	h.mu.Lock()
	for c := range h.clients {
		h.closeSendLocked(c)
	}
	h.mu.Unlock()

	if h.execLimiter != nil {
		h.execLimiter.Stop()
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}

// attachLocked adds c to the connection index of roomID.
func (h *Hub) attachLocked(c *Client, roomID string) {
	set, ok := h.conns[roomID]
	if !ok {
		set = make(map[*Client]struct{})
		h.conns[roomID] = set
	}
	set[c] = struct{}{}
}

// detachLocked removes c from the connection index of roomID.
func (h *Hub) detachLocked(c *Client, roomID string) {
	set, ok := h.conns[roomID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, roomID)
	}
}

// departLocked removes user from roomID and tells the remaining connections.
func (h *Hub) departLocked(c *Client, roomID, user string, detach bool) {
	if detach {
		h.detachLocked(c, roomID)
	}

	users, removed := h.rooms.Leave(roomID, user)
	if removed {
		h.logger.Info().Str("room_id", roomID).Msg("Room is empty. Room and tree discarded.")
	}

	h.broadcastLocked(roomID, EventUserJoined, users, nil)
}

// broadcastLocked queues one frame for every connection in roomID except skip.
func (h *Hub) broadcastLocked(roomID string, event EventType, data any, skip *Client) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(event)).Msg("Error marshaling event for broadcast.")
		return
	}

	for c := range h.conns[roomID] {
		if c == skip {
			continue
		}
		h.enqueueLocked(c, msg)
	}
}

// sendLocked queues one frame for c only.
func (h *Hub) sendLocked(c *Client, event EventType, data any) {
	msg, err := encodeEvent(event, data)
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(event)).Msg("Error marshaling event for client.")
		return
	}
	h.enqueueLocked(c, msg)
}

// enqueueLocked hands msg to the client's write pump. A full queue marks the client as
// a slow consumer: its queue is closed and the pumps tear the connection down.
func (h *Hub) enqueueLocked(c *Client, msg []byte) {
	if c.sendClosed {
		return
	}

	select {
	case c.send <- msg:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, closing connection.")
		h.closeSendLocked(c)
	}
}

func (h *Hub) closeSendLocked(c *Client) {
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}
