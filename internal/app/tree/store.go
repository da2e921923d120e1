package tree

import (
	"fmt"
	"strings"

	"coderoom/internal/pkg/pathx"
)

// Store holds the root Directory of every room.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	roots map[string]Directory
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{roots: make(map[string]Directory)}
}

// Tree returns the room's root, creating an empty one on first touch.
func (s *Store) Tree(roomID string) Directory {
	root, ok := s.roots[roomID]
	if !ok {
		root = Directory{}
		s.roots[roomID] = root
	}
	return root
}

// Lookup returns the room's root without creating it.
func (s *Store) Lookup(roomID string) (Directory, bool) {
	root, ok := s.roots[roomID]
	return root, ok
}

// Replace installs root as the room's whole tree.
func (s *Store) Replace(roomID string, root Directory) {
	if root == nil {
		root = Directory{}
	}
	s.roots[roomID] = root
}

// Drop discards the room's tree.
func (s *Store) Drop(roomID string) {
	delete(s.roots, roomID)
}

// Len returns the number of rooms holding a tree.
func (s *Store) Len() int {
	return len(s.roots)
}

// ReadFile returns the content of the file at path.
func (s *Store) ReadFile(roomID, path string) (string, error) {
	segments, err := split(path)
	if err != nil {
		return "", err
	}

	root, ok := s.roots[roomID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoTree, roomID)
	}

	var current Node = root
	for _, segment := range segments {
		dir, ok := current.(Directory)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		current, ok = dir[segment]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
	}

	file, ok := current.(File)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a file", ErrNotFound, path)
	}
	return string(file), nil
}

// CreateDirectory creates every directory along path. Existing directories are
// reused; a file standing where a directory is needed is replaced.
func (s *Store) CreateDirectory(roomID, path string) error {
	segments, err := split(path)
	if err != nil {
		return err
	}

	mkdirAll(s.Tree(roomID), segments)
	return nil
}

// CreateFile creates an empty file at path along with any missing parents.
// It fails with ErrAlreadyExists if the leaf is already present.
func (s *Store) CreateFile(roomID, path string) error {
	segments, err := split(path)
	if err != nil {
		return err
	}

	parents, leaf := segments[:len(segments)-1], segments[len(segments)-1]
	parent := mkdirAll(s.Tree(roomID), parents)

	if _, exists := parent[leaf]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	parent[leaf] = File("")
	return nil
}

// WriteFile overwrites the leaf at path with content. The parent directory must
// already exist; whatever the leaf held before is replaced.
func (s *Store) WriteFile(roomID, path, content string) error {
	parent, leaf, err := s.parentOf(roomID, path)
	if err != nil {
		return err
	}

	parent[leaf] = File(content)
	return nil
}

// DeletePath removes the entry at path, including any subtree below it.
func (s *Store) DeletePath(roomID, path string) error {
	parent, leaf, err := s.parentOf(roomID, path)
	if err != nil {
		return err
	}

	if _, ok := parent[leaf]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	delete(parent, leaf)
	return nil
}

// parentOf resolves the directory holding the leaf of path without creating anything.
func (s *Store) parentOf(roomID, path string) (Directory, string, error) {
	segments, err := split(path)
	if err != nil {
		return nil, "", err
	}

	root, ok := s.roots[roomID]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrNoTree, roomID)
	}

	current := root
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(Directory)
		if !ok || next == nil {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		current = next
	}

	return current, segments[len(segments)-1], nil
}

func mkdirAll(current Directory, segments []string) Directory {
	for _, segment := range segments {
		next, ok := current[segment].(Directory)
		if !ok || next == nil {
			next = Directory{}
			current[segment] = next
		}
		current = next
	}
	return current
}

func split(path string) ([]string, error) {
	segments := strings.Split(path, "/")
	for _, segment := range segments {
		if !pathx.IsValidName(segment) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}
