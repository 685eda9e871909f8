package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avelar/adapt/internal/srs"
)

// Review is one recorded review event. The log is append-only; every derived
// record (scheduling, statistics, difficulty) can be rebuilt from it.
type Review struct {
	ID         int64       `db:"id"`
	UserID     string      `db:"user_id"`
	ItemID     string      `db:"item_id"`
	Topic      string      `db:"topic"`
	Quality    srs.Quality `db:"quality"`
	Correct    bool        `db:"correct"`
	ResponseMs int         `db:"response_ms"`
	ReviewedAt time.Time   `db:"reviewed_at"`
}

// ReviewLog is the append-only review history.
type ReviewLog struct {
	db *sqlx.DB
}

// Reviews returns the append-only review log.
func (s *Store) Reviews() *ReviewLog { return &ReviewLog{db: s.db} }

// Append records one review event.
func (l *ReviewLog) Append(ctx context.Context, rev Review) error {
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO reviews (user_id, item_id, topic, quality, correct, response_ms, reviewed_at)
		VALUES (:user_id, :item_id, :topic, :quality, :correct, :response_ms, :reviewed_at)`, rev)
	if err != nil {
		return fmt.Errorf("append review %s/%s: %w", rev.UserID, rev.ItemID, err)
	}
	return nil
}

// RecentOutcomes returns the user's last n outcomes in a topic, oldest first,
// as the difficulty tracker's rolling window.
func (l *ReviewLog) RecentOutcomes(ctx context.Context, userID, topic string, n int) ([]bool, error) {
	var outcomes []bool
	err := l.db.SelectContext(ctx, &outcomes, `
		SELECT correct FROM (
			SELECT id, correct FROM reviews
			WHERE user_id = ? AND topic = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id`, userID, topic, n)
	if err != nil {
		return nil, fmt.Errorf("recent outcomes %s/%s: %w", userID, topic, err)
	}
	return outcomes, nil
}

// ListByUser returns a user's reviews, newest first, capped at limit
// (0 means unlimited).
func (l *ReviewLog) ListByUser(ctx context.Context, userID string, limit int) ([]Review, error) {
	q := `SELECT * FROM reviews WHERE user_id = ? ORDER BY id DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var revs []Review
	if err := l.db.SelectContext(ctx, &revs, q, args...); err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", userID, err)
	}
	return revs, nil
}
