package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execution is one logged code run.
type Execution struct {
	ID         uuid.UUID `json:"id"`
	RoomID     string    `json:"roomId"`
	Language   string    `json:"language"`
	Version    string    `json:"version"`
	Output     string    `json:"output"`
	Failed     bool      `json:"failed"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// querier is the subset of *pgxpool.Pool used by ExecutionStore.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ExecutionStore reads and writes the executions table.
type ExecutionStore struct {
	db querier
}

// NewExecutionStore wraps a pool (or any compatible querier).
func NewExecutionStore(db querier) *ExecutionStore {
	return &ExecutionStore{db: db}
}

const insertExecution = `
INSERT INTO executions (id, room_id, language, version, output, failed, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Record appends e to the log. Zero ID and CreatedAt are filled in.
func (s *ExecutionStore) Record(ctx context.Context, e Execution) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, insertExecution,
		e.ID, e.RoomID, e.Language, e.Version, e.Output, e.Failed, e.DurationMS, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

const recentExecutions = `
SELECT id, room_id, language, version, output, failed, duration_ms, created_at
FROM executions
WHERE room_id = $1
ORDER BY created_at DESC
LIMIT $2`

// Recent returns up to limit executions of the room, newest first.
func (s *ExecutionStore) Recent(ctx context.Context, roomID string, limit int) ([]Execution, error) {
	rows, err := s.db.Query(ctx, recentExecutions, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	out := make([]Execution, 0, limit)
	for rows.Next() {
		var e Execution
		if err := rows.Scan(&e.ID, &e.RoomID, &e.Language, &e.Version, &e.Output, &e.Failed, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return out, nil
}
