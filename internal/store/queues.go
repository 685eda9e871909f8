package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PrecomputedQueue is a batch-built queue snapshot for one user. The payload
// is the JSON-encoded card list; the queue package owns its shape.
type PrecomputedQueue struct {
	UserID  string    `db:"user_id"`
	BuiltAt time.Time `db:"built_at"`
	Payload []byte    `db:"payload"`
}

// QueueRepo persists precomputed queues, one per user, newest build wins.
type QueueRepo struct {
	db *sqlx.DB
}

// Save replaces the user's precomputed queue.
func (r *QueueRepo) Save(ctx context.Context, q PrecomputedQueue) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO precomputed_queues (user_id, built_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			built_at = excluded.built_at,
			payload = excluded.payload`,
		q.UserID, q.BuiltAt, string(q.Payload))
	if err != nil {
		return fmt.Errorf("save queue for %s: %w", q.UserID, err)
	}
	return nil
}

// Get returns the user's precomputed queue or ErrNotFound.
func (r *QueueRepo) Get(ctx context.Context, userID string) (PrecomputedQueue, error) {
	var q PrecomputedQueue
	err := r.db.GetContext(ctx, &q,
		`SELECT * FROM precomputed_queues WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return PrecomputedQueue{}, fmt.Errorf("queue for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return PrecomputedQueue{}, fmt.Errorf("get queue for %s: %w", userID, err)
	}
	return q, nil
}
