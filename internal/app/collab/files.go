package collab

import (
	"coderoom/internal/app/room"
	"coderoom/internal/app/tree"
)

// Tree returns a sanitized deep copy of the room's tree, creating an empty tree
// when the room has none yet.
func (h *Hub) Tree(roomID string) (tree.Directory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	root := h.trees.Tree(roomID)
	if err := tree.Sanitize(root); err != nil {
		return nil, err
	}
	return tree.Clone(root), nil
}

// ReadFile returns the content of the file at path.
func (h *Hub) ReadFile(roomID, path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.trees.ReadFile(roomID, path)
}

// CreateFile adds an empty file and tells the room to refresh.
func (h *Hub) CreateFile(roomID, path string) error {
	return h.mutateTree(roomID, func() error {
		return h.trees.CreateFile(roomID, path)
	})
}

// CreateDirectory adds a directory chain and tells the room to refresh.
func (h *Hub) CreateDirectory(roomID, path string) error {
	return h.mutateTree(roomID, func() error {
		return h.trees.CreateDirectory(roomID, path)
	})
}

// DeletePath removes a file or subtree and tells the room to refresh.
func (h *Hub) DeletePath(roomID, path string) error {
	return h.mutateTree(roomID, func() error {
		return h.trees.DeletePath(roomID, path)
	})
}

// Snapshot returns a sanitized copy of a live room's tree.
func (h *Hub) Snapshot(roomID string) (tree.Directory, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.rooms.Exists(roomID) {
		return nil, false, nil
	}

	root, ok := h.trees.Lookup(roomID)
	if !ok {
		root = tree.Directory{}
	}
	if err := tree.Sanitize(root); err != nil {
		return nil, true, err
	}
	return tree.Clone(root), true, nil
}

// RestoreTree replaces a live room's tree and tells the room to refresh.
// It reports false when the room does not exist.
func (h *Hub) RestoreTree(roomID string, root tree.Directory) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.rooms.Exists(roomID) {
		return false
	}

	h.trees.Replace(roomID, root)
	h.broadcastLocked(roomID, EventFileRefresh, nil, nil)
	return true
}

// RoomInfo returns a snapshot of a live room.
func (h *Hub) RoomInfo(roomID string) (room.Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.rooms.Info(roomID)
}

func (h *Hub) mutateTree(roomID string, fn func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	h.broadcastLocked(roomID, EventFileRefresh, nil, nil)
	return nil
}
