package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/avelar/adapt/internal/forgetting"
)

// CurveRepo persists per-(user, item) forgetting curves as JSON documents.
// Curves carry their bounded history inline, so a row is always replaced
// whole and versioning is unnecessary.
type CurveRepo struct {
	db *sqlx.DB
}

// Get returns the curve for one (user, item) or ErrNotFound.
func (r *CurveRepo) Get(ctx context.Context, userID, itemID string) (*forgetting.Curve, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload,
		`SELECT curve FROM forgetting_curves WHERE user_id = ? AND item_id = ?`, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("curve %s/%s: %w", userID, itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get curve %s/%s: %w", userID, itemID, err)
	}
	var curve forgetting.Curve
	if err := json.Unmarshal([]byte(payload), &curve); err != nil {
		return nil, fmt.Errorf("decode curve %s/%s: %w", userID, itemID, err)
	}
	return &curve, nil
}

// Save upserts the curve.
func (r *CurveRepo) Save(ctx context.Context, userID, itemID string, curve *forgetting.Curve) error {
	payload, err := json.Marshal(curve)
	if err != nil {
		return fmt.Errorf("encode curve %s/%s: %w", userID, itemID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO forgetting_curves (user_id, item_id, curve)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE SET curve = excluded.curve`,
		userID, itemID, string(payload))
	if err != nil {
		return fmt.Errorf("save curve %s/%s: %w", userID, itemID, err)
	}
	return nil
}
