package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avelar/adapt/internal/difficulty"
)

// DifficultyRepo persists per-(user, topic) difficulty state with the same
// optimistic concurrency contract as SchedulingRepo.
type DifficultyRepo struct {
	db *sqlx.DB
}

type difficultyRow struct {
	UserID                string    `db:"user_id"`
	Topic                 string    `db:"topic"`
	CurrentDifficulty     float64   `db:"current_difficulty"`
	StabilityScore        float64   `db:"stability_score"`
	ConfidenceInterval    float64   `db:"confidence_interval"`
	TargetSuccessRate     float64   `db:"target_success_rate"`
	CurrentSuccessRate    float64   `db:"current_success_rate"`
	LastDirection         int       `db:"last_direction"`
	ManualOverrideEnabled bool      `db:"manual_override_enabled"`
	ManualOverrideValue   float64   `db:"manual_override_value"`
	UpdatedAt             time.Time `db:"updated_at"`
	Version               int64     `db:"version"`
}

func toDifficultyRow(s difficulty.State) difficultyRow {
	return difficultyRow{
		UserID:                s.UserID,
		Topic:                 s.Topic,
		CurrentDifficulty:     s.CurrentDifficulty,
		StabilityScore:        s.StabilityScore,
		ConfidenceInterval:    s.ConfidenceInterval,
		TargetSuccessRate:     s.TargetSuccessRate,
		CurrentSuccessRate:    s.CurrentSuccessRate,
		LastDirection:         s.LastDirection,
		ManualOverrideEnabled: s.ManualOverrideEnabled,
		ManualOverrideValue:   s.ManualOverrideValue,
		UpdatedAt:             s.UpdatedAt,
		Version:               s.Version,
	}
}

func (r difficultyRow) toState() difficulty.State {
	return difficulty.State{
		UserID:                r.UserID,
		Topic:                 r.Topic,
		CurrentDifficulty:     r.CurrentDifficulty,
		StabilityScore:        r.StabilityScore,
		ConfidenceInterval:    r.ConfidenceInterval,
		TargetSuccessRate:     r.TargetSuccessRate,
		CurrentSuccessRate:    r.CurrentSuccessRate,
		LastDirection:         r.LastDirection,
		ManualOverrideEnabled: r.ManualOverrideEnabled,
		ManualOverrideValue:   r.ManualOverrideValue,
		UpdatedAt:             r.UpdatedAt,
		Version:               r.Version,
	}
}

// Get returns the state for one (user, topic) or ErrNotFound.
func (r *DifficultyRepo) Get(ctx context.Context, userID, topic string) (difficulty.State, error) {
	var row difficultyRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM difficulty_state WHERE user_id = ? AND topic = ?`, userID, topic)
	if errors.Is(err, sql.ErrNoRows) {
		return difficulty.State{}, fmt.Errorf("difficulty %s/%s: %w", userID, topic, ErrNotFound)
	}
	if err != nil {
		return difficulty.State{}, fmt.Errorf("get difficulty %s/%s: %w", userID, topic, err)
	}
	return row.toState(), nil
}

// Save upserts the state. The write only lands when no row exists yet or the
// stored version is exactly s.Version-1; otherwise ErrVersionConflict.
func (r *DifficultyRepo) Save(ctx context.Context, s difficulty.State) error {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO difficulty_state (
			user_id, topic, current_difficulty, stability_score, confidence_interval,
			target_success_rate, current_success_rate, last_direction,
			manual_override_enabled, manual_override_value, updated_at, version
		) VALUES (
			:user_id, :topic, :current_difficulty, :stability_score, :confidence_interval,
			:target_success_rate, :current_success_rate, :last_direction,
			:manual_override_enabled, :manual_override_value, :updated_at, :version
		)
		ON CONFLICT(user_id, topic) DO UPDATE SET
			current_difficulty = excluded.current_difficulty,
			stability_score = excluded.stability_score,
			confidence_interval = excluded.confidence_interval,
			target_success_rate = excluded.target_success_rate,
			current_success_rate = excluded.current_success_rate,
			last_direction = excluded.last_direction,
			manual_override_enabled = excluded.manual_override_enabled,
			manual_override_value = excluded.manual_override_value,
			updated_at = excluded.updated_at,
			version = excluded.version
		WHERE difficulty_state.version = excluded.version - 1`, toDifficultyRow(s))
	if err != nil {
		return fmt.Errorf("save difficulty %s/%s: %w", s.UserID, s.Topic, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save difficulty %s/%s: %w", s.UserID, s.Topic, err)
	}
	if n == 0 {
		return fmt.Errorf("save difficulty %s/%s: %w", s.UserID, s.Topic, ErrVersionConflict)
	}
	return nil
}

// ListByUser returns every difficulty state for a user ordered by topic.
func (r *DifficultyRepo) ListByUser(ctx context.Context, userID string) ([]difficulty.State, error) {
	var rows []difficultyRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM difficulty_state WHERE user_id = ? ORDER BY topic`, userID)
	if err != nil {
		return nil, fmt.Errorf("list difficulty for %s: %w", userID, err)
	}
	out := make([]difficulty.State, len(rows))
	for i, row := range rows {
		out[i] = row.toState()
	}
	return out, nil
}

// AdjustmentLog is the append-only audit trail of difficulty decisions.
type AdjustmentLog struct {
	db *sqlx.DB
}

type adjustmentRow struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	Topic              string    `db:"topic"`
	PreviousDifficulty float64   `db:"previous_difficulty"`
	NewDifficulty      float64   `db:"new_difficulty"`
	Reason             string    `db:"reason"`
	SuccessRate        float64   `db:"success_rate"`
	Confidence         float64   `db:"confidence"`
	Applied            bool      `db:"applied"`
	CreatedAt          time.Time `db:"created_at"`
}

// Append records one adjustment. Records are never updated or deleted.
func (l *AdjustmentLog) Append(ctx context.Context, a difficulty.Adjustment) error {
	row := adjustmentRow{
		ID:                 a.ID,
		UserID:             a.UserID,
		Topic:              a.Topic,
		PreviousDifficulty: a.PreviousDifficulty,
		NewDifficulty:      a.NewDifficulty,
		Reason:             string(a.Reason),
		SuccessRate:        a.SuccessRate,
		Confidence:         a.Confidence,
		Applied:            a.Applied,
		CreatedAt:          a.CreatedAt,
	}
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO difficulty_adjustments (
			id, user_id, topic, previous_difficulty, new_difficulty, reason,
			success_rate, confidence, applied, created_at
		) VALUES (
			:id, :user_id, :topic, :previous_difficulty, :new_difficulty, :reason,
			:success_rate, :confidence, :applied, :created_at
		)`, row)
	if err != nil {
		return fmt.Errorf("append adjustment %s: %w", a.ID, err)
	}
	return nil
}

// List returns a user's adjustments for one topic, newest first, capped at
// limit (0 means unlimited).
func (l *AdjustmentLog) List(ctx context.Context, userID, topic string, limit int) ([]difficulty.Adjustment, error) {
	q := `SELECT * FROM difficulty_adjustments
		WHERE user_id = ? AND topic = ?
		ORDER BY created_at DESC, id`
	args := []any{userID, topic}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []adjustmentRow
	if err := l.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list adjustments %s/%s: %w", userID, topic, err)
	}
	out := make([]difficulty.Adjustment, len(rows))
	for i, row := range rows {
		out[i] = difficulty.Adjustment{
			ID:                 row.ID,
			UserID:             row.UserID,
			Topic:              row.Topic,
			PreviousDifficulty: row.PreviousDifficulty,
			NewDifficulty:      row.NewDifficulty,
			Reason:             difficulty.Reason(row.Reason),
			SuccessRate:        row.SuccessRate,
			Confidence:         row.Confidence,
			Applied:            row.Applied,
			CreatedAt:          row.CreatedAt,
		}
	}
	return out, nil
}
