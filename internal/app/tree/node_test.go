package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRejectsBadName(t *testing.T) {
	d := Directory{"bad name!": File("x")}
	assert.ErrorIs(t, Sanitize(d), ErrInvalidName)
}

func TestSanitizeRejectsBadNestedName(t *testing.T) {
	d := Directory{"src": Directory{"ok.go": File(""), "no/slash": File("")}}
	assert.ErrorIs(t, Sanitize(d), ErrInvalidName)
}

func TestSanitizeCoercesNilChildren(t *testing.T) {
	d := Directory{
		"ok":  nil,
		"sub": Directory{"inner": nil},
		"dir": Directory(nil),
	}

	require.NoError(t, Sanitize(d))
	assert.Equal(t, File(""), d["ok"])
	assert.Equal(t, File(""), d["sub"].(Directory)["inner"])
	assert.Equal(t, Directory{}, d["dir"])
}

func TestDecodeCoercesNonStringValues(t *testing.T) {
	d, err := Decode([]byte(`{"ok": 42, "flag": true, "nothing": null, "list": [1,2], "text": "hi", "dir": {"n": 1.5}}`))
	require.NoError(t, err)

	assert.Equal(t, File(""), d["ok"])
	assert.Equal(t, File(""), d["flag"])
	assert.Equal(t, File(""), d["nothing"])
	assert.Equal(t, File(""), d["list"])
	assert.Equal(t, File("hi"), d["text"])
	assert.Equal(t, Directory{"n": File("")}, d["dir"])
}

func TestDecodeRejectsBadName(t *testing.T) {
	_, err := Decode([]byte(`{"bad name!": "x"}`))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = Decode([]byte(`{"a": {"../escape": "x"}}`))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDecodeRejectsNonObjectRoot(t *testing.T) {
	for _, in := range []string{`"text"`, `[]`, `42`, `null`, `{`} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, in)
	}
}

func TestDecodeRoundTripsMarshal(t *testing.T) {
	original := Directory{
		"main.go": File("package main"),
		"pkg":     Directory{"util.go": File("package pkg"), "empty": Directory{}},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestCloneIsDeep(t *testing.T) {
	original := Directory{"a": Directory{"b.txt": File("one")}}
	copied := Clone(original)

	copied["a"].(Directory)["b.txt"] = File("two")
	copied["new"] = File("")

	assert.Equal(t, File("one"), original["a"].(Directory)["b.txt"])
	_, ok := original["new"]
	assert.False(t, ok)
}
