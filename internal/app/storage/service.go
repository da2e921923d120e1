/*
Package storage keeps exported file-tree snapshots in S3-compatible object storage.

Snapshots are plain JSON documents (the nested-object tree form) stored under a
per-room key prefix, so a room can only restore snapshots it exported itself.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a snapshot key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// PresignDuration is how long a snapshot download URL stays valid.
const PresignDuration = 15 * time.Minute

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// SnapshotStore is the storage needed by the snapshot endpoints.
type SnapshotStore interface {
	// Put uploads a snapshot document under key.
	Put(ctx context.Context, key string, data []byte) error

	// Get downloads the snapshot stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// PresignDownload returns a time-limited URL for downloading key.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// NewSnapshotStore returns the S3-backed SnapshotStore for cfg.
func NewSnapshotStore(ctx context.Context, cfg ServiceConfig) (SnapshotStore, error) {
	return newS3Client(ctx, cfg)
}

// KeyPrefix returns the key prefix owned by roomID.
func KeyPrefix(roomID string) string {
	return fmt.Sprintf("snapshots/%s/", roomID)
}

// SnapshotKey builds the key of a new snapshot for roomID.
func SnapshotKey(roomID, id string) string {
	return KeyPrefix(roomID) + id + ".json"
}

// OwnsKey reports whether key lies under roomID's prefix without escaping it.
func OwnsKey(roomID, key string) bool {
	prefix := KeyPrefix(roomID)
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	rest := key[len(prefix):]
	return rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}
