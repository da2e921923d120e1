/*
Package randx generates identifiers: room ids handed out to editors that want a
fresh room, and ids for connections, snapshots and execution records.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for short room ids (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 alphabet.
	Base62Len = int64(len(Base62Chars))

	// RoomIDGroupLength is the length of each dash-separated group of a room id.
	RoomIDGroupLength = 4

	// RoomIDGroups is the number of groups in a room id.
	RoomIDGroups = 3
)

// RoomID returns a random id such as "x7Qa-9kLm-P2bz", drawn from crypto/rand.
// The result always satisfies the join grammar [A-Za-z0-9-]+.
func RoomID() (string, error) {
	length := RoomIDGroups*RoomIDGroupLength + RoomIDGroups - 1
	result := make([]byte, 0, length)

	for g := range RoomIDGroups {
		if g > 0 {
			result = append(result, '-')
		}
		for range RoomIDGroupLength {
			num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
			if err != nil {
				return "", fmt.Errorf("failed to generate random number for room id: %w", err)
			}
			result = append(result, Base62Chars[num.Int64()])
		}
	}

	return string(result), nil
}

// ConnectionID returns a UUID v4 string identifying one websocket connection.
func ConnectionID() string {
	return uuid.New().String()
}
