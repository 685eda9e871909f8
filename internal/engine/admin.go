package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/adapt/internal/depgraph"
	"github.com/avelar/adapt/internal/difficulty"
	"github.com/avelar/adapt/internal/mastery"
	"github.com/avelar/adapt/internal/srs"
	"github.com/avelar/adapt/internal/store"
)

// SuspendItem removes a card from scheduling until resumed. Suspending an
// already suspended card is a no-op.
func (e *Engine) SuspendItem(ctx context.Context, userID, itemID string) error {
	return e.setLevel(ctx, userID, itemID, mastery.Suspend, "suspend")
}

// ResumeItem returns a suspended card to learning; its gates are re-proven
// from there.
func (e *Engine) ResumeItem(ctx context.Context, userID, itemID string) error {
	return e.setLevel(ctx, userID, itemID, mastery.Resume, "resume")
}

func (e *Engine) setLevel(ctx context.Context, userID, itemID string, change func(mastery.Level) (mastery.Level, bool), action string) error {
	sched, err := e.store.Scheduling().Get(ctx, userID, itemID)
	if err != nil {
		return err
	}
	next, changed := change(sched.Level)
	if !changed {
		return nil
	}
	sched.Level = next
	sched.Version++
	if err := e.store.Scheduling().Save(ctx, sched); err != nil {
		return fmt.Errorf("%s %s/%s: %w", action, userID, itemID, err)
	}
	return nil
}

// SetManualOverride pins (or releases) a topic's difficulty. While pinned,
// automatic adjustments are computed and logged as shadow records but never
// applied.
func (e *Engine) SetManualOverride(ctx context.Context, userID, topic string, value float64, enabled bool) error {
	state, err := e.store.Difficulty().Get(ctx, userID, topic)
	if errors.Is(err, store.ErrNotFound) {
		state = difficulty.NewState(userID, topic, e.cfg.Difficulty.TargetSuccessRate)
	} else if err != nil {
		return err
	}
	prev := state.EffectiveDifficulty()
	state.ManualOverrideEnabled = enabled
	state.ManualOverrideValue = value
	state.UpdatedAt = time.Now()
	state.Version++
	if err := e.store.Difficulty().Save(ctx, state); err != nil {
		return err
	}
	if enabled {
		return e.store.Adjustments().Append(ctx, difficulty.Adjustment{
			ID:                 uuid.NewString(),
			UserID:             userID,
			Topic:              topic,
			PreviousDifficulty: prev,
			NewDifficulty:      state.EffectiveDifficulty(),
			Reason:             difficulty.ReasonManualOverride,
			Applied:            true,
			CreatedAt:          state.UpdatedAt,
		})
	}
	return nil
}

// Adjustments returns a topic's difficulty audit trail, newest first.
func (e *Engine) Adjustments(ctx context.Context, userID, topic string, limit int) ([]difficulty.Adjustment, error) {
	return e.store.Adjustments().List(ctx, userID, topic, limit)
}

// AddDependency validates the new edge against the full stored graph, then
// persists it. Cycles and duplicates are rejected before any write.
func (e *Engine) AddDependency(ctx context.Context, edge depgraph.Edge) error {
	if !edge.MinLevel.Valid() || edge.MinLevel == mastery.LevelSuspended {
		return &srs.ValidationError{Field: "minLevel", Value: string(edge.MinLevel), Msg: "must be a promotion level"}
	}
	graph, err := e.store.Graph().LoadGraph(ctx)
	if err != nil {
		return err
	}
	if err := graph.AddEdge(edge); err != nil {
		return err
	}
	return e.store.Graph().AddEdge(ctx, edge)
}

// RemoveDependency deletes an edge; removing a missing edge is a no-op.
func (e *Engine) RemoveDependency(ctx context.Context, prereq, dependent string) error {
	return e.store.Graph().RemoveEdge(ctx, prereq, dependent)
}

// ValidateGraph rebuilds the stored graph, surfacing any cycle or duplicate
// the edge-level checks would have caught.
func (e *Engine) ValidateGraph(ctx context.Context) ([]depgraph.Edge, error) {
	graph, err := e.store.Graph().LoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Edges(), nil
}
