package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avelar/adapt/internal/srs"
)

// StatsRepo persists cumulative review statistics. Statistics are monotone
// counters folded in by the engine, so saves are plain upserts.
type StatsRepo struct {
	db *sqlx.DB
}

type statsRow struct {
	UserID        string  `db:"user_id"`
	ItemID        string  `db:"item_id"`
	TotalReviews  int     `db:"total_reviews"`
	CorrectCount  int     `db:"correct_count"`
	Streak        int     `db:"streak"`
	MaxStreak     int     `db:"max_streak"`
	AvgResponseMs float64 `db:"avg_response_ms"`
	RetentionRate float64 `db:"retention_rate"`
}

func (r statsRow) toStatistics() srs.Statistics {
	return srs.Statistics{
		UserID:        r.UserID,
		ItemID:        r.ItemID,
		TotalReviews:  r.TotalReviews,
		CorrectCount:  r.CorrectCount,
		Streak:        r.Streak,
		MaxStreak:     r.MaxStreak,
		AvgResponseMs: r.AvgResponseMs,
		RetentionRate: r.RetentionRate,
	}
}

// Get returns the statistics for one (user, item) or ErrNotFound.
func (r *StatsRepo) Get(ctx context.Context, userID, itemID string) (srs.Statistics, error) {
	var row statsRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM statistics WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return srs.Statistics{}, fmt.Errorf("statistics %s/%s: %w", userID, itemID, ErrNotFound)
	}
	if err != nil {
		return srs.Statistics{}, fmt.Errorf("get statistics %s/%s: %w", userID, itemID, err)
	}
	return row.toStatistics(), nil
}

// Save upserts the statistics record.
func (r *StatsRepo) Save(ctx context.Context, st srs.Statistics) error {
	row := statsRow{
		UserID:        st.UserID,
		ItemID:        st.ItemID,
		TotalReviews:  st.TotalReviews,
		CorrectCount:  st.CorrectCount,
		Streak:        st.Streak,
		MaxStreak:     st.MaxStreak,
		AvgResponseMs: st.AvgResponseMs,
		RetentionRate: st.RetentionRate,
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO statistics (
			user_id, item_id, total_reviews, correct_count, streak, max_streak,
			avg_response_ms, retention_rate
		) VALUES (
			:user_id, :item_id, :total_reviews, :correct_count, :streak, :max_streak,
			:avg_response_ms, :retention_rate
		)
		ON CONFLICT(user_id, item_id) DO UPDATE SET
			total_reviews = excluded.total_reviews,
			correct_count = excluded.correct_count,
			streak = excluded.streak,
			max_streak = excluded.max_streak,
			avg_response_ms = excluded.avg_response_ms,
			retention_rate = excluded.retention_rate`, row)
	if err != nil {
		return fmt.Errorf("save statistics %s/%s: %w", st.UserID, st.ItemID, err)
	}
	return nil
}

// ListByUser returns every statistics record for a user ordered by item ID.
func (r *StatsRepo) ListByUser(ctx context.Context, userID string) ([]srs.Statistics, error) {
	var rows []statsRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM statistics WHERE user_id = ? ORDER BY item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list statistics for %s: %w", userID, err)
	}
	out := make([]srs.Statistics, len(rows))
	for i, row := range rows {
		out[i] = row.toStatistics()
	}
	return out, nil
}

// TopicAccuracy is one user's lifetime accuracy aggregated over a topic.
type TopicAccuracy struct {
	Topic    string  `db:"topic"`
	Reviews  int     `db:"reviews"`
	Accuracy float64 `db:"accuracy"`
}

// TopicAccuracies aggregates per-topic accuracy for a user by joining the
// statistics against the item catalog. Topics with no reviews are absent.
func (r *StatsRepo) TopicAccuracies(ctx context.Context, userID string) (map[string]TopicAccuracy, error) {
	var rows []TopicAccuracy
	err := r.db.SelectContext(ctx, &rows, `
		SELECT i.topic AS topic,
			SUM(s.total_reviews) AS reviews,
			CAST(SUM(s.correct_count) AS REAL) / SUM(s.total_reviews) AS accuracy
		FROM statistics s
		JOIN items i ON i.id = s.item_id
		WHERE s.user_id = ? AND s.total_reviews > 0
		GROUP BY i.topic`, userID)
	if err != nil {
		return nil, fmt.Errorf("topic accuracies for %s: %w", userID, err)
	}
	out := make(map[string]TopicAccuracy, len(rows))
	for _, row := range rows {
		out[row.Topic] = row
	}
	return out, nil
}
