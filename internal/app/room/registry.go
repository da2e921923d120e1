/*
Package room tracks the rooms of the collaboration service.

A Room is created by the first join, holds the names of the users currently present,
the shared code buffer and the output of the last execution, and disappears together
with its file tree when the last user leaves.
*/
package room

import (
	"sort"
	"time"

	"coderoom/internal/app/tree"
)

// DefaultCode is the buffer content of a freshly created room.
const DefaultCode = "// start code here"

// Room is the shared state of one collaboration session.
type Room struct {
	ID        string
	Code      string
	Output    string
	CreatedAt time.Time

	users map[string]struct{}
}

// Info is a read-only view of a Room.
type Info struct {
	ID        string    `json:"roomId"`
	Users     []string  `json:"users"`
	Code      string    `json:"code"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry owns every Room and removes a room's tree together with the room.
// It is not safe for concurrent use; callers serialize access.
type Registry struct {
	rooms map[string]*Room
	trees *tree.Store
	now   func() time.Time
}

// NewRegistry returns an empty Registry bound to the given tree store.
func NewRegistry(trees *tree.Store) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		trees: trees,
		now:   time.Now,
	}
}

// Join adds user to the room, creating the room and its tree when absent.
// It returns the current code buffer and the full user list.
func (r *Registry) Join(roomID, user string) (string, []string) {
	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &Room{
			ID:        roomID,
			Code:      DefaultCode,
			CreatedAt: r.now(),
			users:     make(map[string]struct{}),
		}
		r.rooms[roomID] = rm
	}
	r.trees.Tree(roomID)

	rm.users[user] = struct{}{}
	return rm.Code, rm.userList()
}

// SetCode overwrites the room's code buffer. It reports false when the room does not exist.
func (r *Registry) SetCode(roomID, code string) bool {
	rm, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	rm.Code = code
	return true
}

// Leave removes user from the room. When no user remains, the room and its
// tree are discarded and removed is true. The remaining users are returned.
func (r *Registry) Leave(roomID, user string) (users []string, removed bool) {
	rm, ok := r.rooms[roomID]
	if !ok {
		return []string{}, false
	}

	delete(rm.users, user)
	if len(rm.users) > 0 {
		return rm.userList(), false
	}

	delete(r.rooms, roomID)
	r.trees.Drop(roomID)
	return []string{}, true
}

// RecordOutput stores the last execution output of the room, if it exists.
func (r *Registry) RecordOutput(roomID, output string) {
	if rm, ok := r.rooms[roomID]; ok {
		rm.Output = output
	}
}

// Exists reports whether the room is live.
func (r *Registry) Exists(roomID string) bool {
	_, ok := r.rooms[roomID]
	return ok
}

// Users returns the sorted user list of the room, or an empty list.
func (r *Registry) Users(roomID string) []string {
	rm, ok := r.rooms[roomID]
	if !ok {
		return []string{}
	}
	return rm.userList()
}

// Info returns a snapshot of the room.
func (r *Registry) Info(roomID string) (Info, bool) {
	rm, ok := r.rooms[roomID]
	if !ok {
		return Info{}, false
	}
	return Info{
		ID:        rm.ID,
		Users:     rm.userList(),
		Code:      rm.Code,
		Output:    rm.Output,
		CreatedAt: rm.CreatedAt,
	}, true
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	return len(r.rooms)
}

func (rm *Room) userList() []string {
	users := make([]string, 0, len(rm.users))
	for u := range rm.users {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}
