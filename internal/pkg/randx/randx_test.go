package randx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderoom/internal/pkg/pathx"
)

func TestRoomIDSatisfiesJoinGrammar(t *testing.T) {
	seen := make(map[string]struct{})
	for range 200 {
		id, err := RoomID()
		require.NoError(t, err)

		assert.Len(t, id, 14)
		assert.True(t, pathx.IsValidRoomID(id), id)
		assert.Equal(t, byte('-'), id[4])
		assert.Equal(t, byte('-'), id[9])

		seen[id] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestConnectionIDIsUUID(t *testing.T) {
	_, err := uuid.Parse(ConnectionID())
	assert.NoError(t, err)
	assert.NotEqual(t, ConnectionID(), ConnectionID())
}
