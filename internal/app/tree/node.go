/*
Package tree implements the per-room virtual file system.

A tree is built from two node kinds: Directory, a mapping from child name to node,
and File, the full text content of a file. The Store keeps one root Directory per
room and offers path-addressed lookup and mutation on top of it.
*/
package tree

import (
	"encoding/json"
	"errors"
	"fmt"

	"coderoom/internal/pkg/pathx"
)

var (
	// ErrNotFound is returned when a path segment, leaf or room tree is missing.
	ErrNotFound = errors.New("tree: not found")

	// ErrNoTree is returned when the room has no tree at all. It wraps ErrNotFound.
	ErrNoTree = fmt.Errorf("%w: room has no tree", ErrNotFound)

	// ErrAlreadyExists is returned when a file is created over an existing entry.
	ErrAlreadyExists = errors.New("tree: already exists")

	// ErrInvalidName is returned when a tree key fails the name grammar.
	ErrInvalidName = errors.New("tree: invalid name")

	// ErrInvalidPath is returned when a path contains an empty or invalid segment.
	ErrInvalidPath = errors.New("tree: invalid path")

	// ErrMalformed is returned when decoded input is not a directory object.
	ErrMalformed = errors.New("tree: malformed tree")
)

// Node is either a Directory or a File.
type Node interface {
	isNode()
}

// Directory maps child names to nodes.
type Directory map[string]Node

// File holds the whole content of a file.
type File string

func (Directory) isNode() {}
func (File) isNode()      {}

// Clone returns a deep copy of d.
func Clone(d Directory) Directory {
	out := make(Directory, len(d))
	for name, child := range d {
		switch n := child.(type) {
		case Directory:
			out[name] = Clone(n)
		case File:
			out[name] = n
		default:
			out[name] = File("")
		}
	}
	return out
}

// Sanitize walks d recursively, failing on any key outside the name grammar and
// replacing nil children with empty files.
func Sanitize(d Directory) error {
	for name, child := range d {
		if !pathx.IsValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}

		switch n := child.(type) {
		case Directory:
			if n == nil {
				d[name] = Directory{}
				continue
			}
			if err := Sanitize(n); err != nil {
				return err
			}
		case File:
		default:
			d[name] = File("")
		}
	}
	return nil
}

// Decode builds a Directory from the nested-object JSON form. Values that are
// neither objects nor strings become empty files; keys outside the name grammar
// fail with ErrInvalidName.
func Decode(data []byte) (Directory, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrMalformed
	}

	return fromRaw(obj)
}

func fromRaw(obj map[string]any) (Directory, error) {
	dir := make(Directory, len(obj))
	for name, value := range obj {
		if !pathx.IsValidName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}

		switch v := value.(type) {
		case map[string]any:
			child, err := fromRaw(v)
			if err != nil {
				return nil, err
			}
			dir[name] = child
		case string:
			dir[name] = File(v)
		default:
			dir[name] = File("")
		}
	}
	return dir, nil
}
