package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avelar/adapt/internal/mastery"
	"github.com/avelar/adapt/internal/srs"
)

// SchedulingRepo persists per-(user, item) scheduling records with optimistic
// concurrency: Save only succeeds when the incoming version is exactly one
// past the stored version.
type SchedulingRepo struct {
	db *sqlx.DB
}

type schedulingRow struct {
	UserID            string       `db:"user_id"`
	ItemID            string       `db:"item_id"`
	Level             string       `db:"level"`
	IntervalDays      int          `db:"interval_days"`
	Ease              float64      `db:"ease"`
	Repetitions       int          `db:"repetitions"`
	Lapses            int          `db:"lapses"`
	ConsecutiveLapses int          `db:"consecutive_lapses"`
	Step              int          `db:"step"`
	Due               time.Time    `db:"due"`
	LastReviewed      sql.NullTime `db:"last_reviewed"`
	Stability         float64      `db:"stability"`
	Difficulty        float64      `db:"difficulty"`
	Version           int64        `db:"version"`
}

func toSchedulingRow(s srs.Scheduling) schedulingRow {
	row := schedulingRow{
		UserID:            s.UserID,
		ItemID:            s.ItemID,
		Level:             string(s.Level),
		IntervalDays:      s.IntervalDays,
		Ease:              s.Ease,
		Repetitions:       s.Repetitions,
		Lapses:            s.Lapses,
		ConsecutiveLapses: s.ConsecutiveLapses,
		Step:              s.Step,
		Due:               s.Due,
		Stability:         s.Stability,
		Difficulty:        s.Difficulty,
		Version:           s.Version,
	}
	if !s.LastReviewed.IsZero() {
		row.LastReviewed = sql.NullTime{Time: s.LastReviewed, Valid: true}
	}
	return row
}

func (r schedulingRow) toScheduling() srs.Scheduling {
	s := srs.Scheduling{
		UserID:            r.UserID,
		ItemID:            r.ItemID,
		Level:             mastery.Level(r.Level),
		IntervalDays:      r.IntervalDays,
		Ease:              r.Ease,
		Repetitions:       r.Repetitions,
		Lapses:            r.Lapses,
		ConsecutiveLapses: r.ConsecutiveLapses,
		Step:              r.Step,
		Due:               r.Due,
		Stability:         r.Stability,
		Difficulty:        r.Difficulty,
		Version:           r.Version,
	}
	if r.LastReviewed.Valid {
		s.LastReviewed = r.LastReviewed.Time
	}
	return s
}

// Get returns one scheduling record or ErrNotFound.
func (r *SchedulingRepo) Get(ctx context.Context, userID, itemID string) (srs.Scheduling, error) {
	var row schedulingRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM scheduling WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return srs.Scheduling{}, fmt.Errorf("scheduling %s/%s: %w", userID, itemID, ErrNotFound)
	}
	if err != nil {
		return srs.Scheduling{}, fmt.Errorf("get scheduling %s/%s: %w", userID, itemID, err)
	}
	return row.toScheduling(), nil
}

// Save upserts a record. The write only lands when no row exists yet or the
// stored version is exactly s.Version-1; otherwise ErrVersionConflict.
func (r *SchedulingRepo) Save(ctx context.Context, s srs.Scheduling) error {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO scheduling (
			user_id, item_id, level, interval_days, ease, repetitions, lapses,
			consecutive_lapses, step, due, last_reviewed, stability, difficulty, version
		) VALUES (
			:user_id, :item_id, :level, :interval_days, :ease, :repetitions, :lapses,
			:consecutive_lapses, :step, :due, :last_reviewed, :stability, :difficulty, :version
		)
		ON CONFLICT(user_id, item_id) DO UPDATE SET
			level = excluded.level,
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			repetitions = excluded.repetitions,
			lapses = excluded.lapses,
			consecutive_lapses = excluded.consecutive_lapses,
			step = excluded.step,
			due = excluded.due,
			last_reviewed = excluded.last_reviewed,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			version = excluded.version
		WHERE scheduling.version = excluded.version - 1`, toSchedulingRow(s))
	if err != nil {
		return fmt.Errorf("save scheduling %s/%s: %w", s.UserID, s.ItemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save scheduling %s/%s: %w", s.UserID, s.ItemID, err)
	}
	if n == 0 {
		return fmt.Errorf("save scheduling %s/%s: %w", s.UserID, s.ItemID, ErrVersionConflict)
	}
	return nil
}

// ListByUser returns every scheduling record for a user ordered by item ID.
func (r *SchedulingRepo) ListByUser(ctx context.Context, userID string) ([]srs.Scheduling, error) {
	var rows []schedulingRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM scheduling WHERE user_id = ? ORDER BY item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list scheduling for %s: %w", userID, err)
	}
	out := make([]srs.Scheduling, len(rows))
	for i, row := range rows {
		out[i] = row.toScheduling()
	}
	return out, nil
}

// ListDue returns the user's records due at or before the cutoff, soonest
// first with item-ID tie-breaking.
func (r *SchedulingRepo) ListDue(ctx context.Context, userID string, cutoff time.Time) ([]srs.Scheduling, error) {
	var rows []schedulingRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM scheduling
		WHERE user_id = ? AND due <= ?
		ORDER BY due, item_id`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list due for %s: %w", userID, err)
	}
	out := make([]srs.Scheduling, len(rows))
	for i, row := range rows {
		out[i] = row.toScheduling()
	}
	return out, nil
}

// ListUsers returns every user with at least one scheduling record.
func (r *SchedulingRepo) ListUsers(ctx context.Context) ([]string, error) {
	var users []string
	err := r.db.SelectContext(ctx, &users,
		`SELECT DISTINCT user_id FROM scheduling ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
