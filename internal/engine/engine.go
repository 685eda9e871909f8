package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avelar/adapt/internal/config"
	"github.com/avelar/adapt/internal/difficulty"
	"github.com/avelar/adapt/internal/forgetting"
	"github.com/avelar/adapt/internal/mastery"
	"github.com/avelar/adapt/internal/queue"
	"github.com/avelar/adapt/internal/srs"
	"github.com/avelar/adapt/internal/store"
)

// maxRetries bounds the optimistic-concurrency retry loop in SubmitReview.
const maxRetries = 3

// ErrRetriesExhausted is returned when every save attempt lost the version
// race. The review was not recorded; the caller may resubmit.
var ErrRetriesExhausted = errors.New("engine: version conflict retries exhausted")

// Engine is the single write path for review events and the read path for
// session queues. It owns no state of its own; everything lives in the store.
type Engine struct {
	cfg     config.Config
	store   *store.Store
	updater srs.Updater
	machine *mastery.Machine
	tracker *difficulty.Tracker
	builder *queue.Builder
	log     *zap.Logger
}

// New wires an engine over an open store.
func New(cfg config.Config, st *store.Store, log *zap.Logger) (*Engine, error) {
	updater, err := srs.NewUpdater(cfg.SRS)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		store:   st,
		updater: updater,
		machine: mastery.NewMachine(cfg.Mastery),
		tracker: difficulty.NewTracker(cfg.Difficulty),
		builder: queue.NewBuilder(cfg.Queue),
		log:     log,
	}, nil
}

// NewSessionBalancer returns a fresh per-session load balancer.
func (e *Engine) NewSessionBalancer() *queue.Balancer {
	return queue.NewBalancer(e.cfg.Load)
}

// ReviewSubmission is one answered item.
type ReviewSubmission struct {
	UserID         string
	ItemID         string
	Quality        srs.Quality
	ResponseTimeMs int
	HintsUsed      bool
	// Timestamp of the review; zero means now.
	Timestamp time.Time
}

// ReviewResult reports everything one review changed.
type ReviewResult struct {
	Scheduling srs.Scheduling
	Statistics srs.Statistics
	// Retrievability estimated at the moment of the review, before updating.
	Retrievability float64
	// Transition is set when the mastery level changed.
	Transition *mastery.Transition
	// Adjustment is set when the difficulty tracker produced an applied or
	// override-shadow record for the item's topic.
	Adjustment *difficulty.Adjustment
}

// SubmitReview drives the full update path for one review event: interval
// update, statistics, mastery gating, forgetting-curve refit, and the topic
// difficulty tracker. Scheduling saves retry on version conflicts; after
// maxRetries the review fails with ErrRetriesExhausted and nothing derived
// from it is persisted.
func (e *Engine) SubmitReview(ctx context.Context, sub ReviewSubmission) (*ReviewResult, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}
	now := sub.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	item, err := e.store.Items().Get(ctx, sub.ItemID)
	if err != nil {
		return nil, err
	}

	resp := srs.Response{
		Quality:        sub.Quality,
		ResponseTimeMs: sub.ResponseTimeMs,
		HintsUsed:      sub.HintsUsed,
	}

	var result *ReviewResult
	for attempt := 0; ; attempt++ {
		if attempt == maxRetries {
			return nil, fmt.Errorf("submit review %s/%s: %w", sub.UserID, sub.ItemID, ErrRetriesExhausted)
		}
		result, err = e.applyReview(ctx, item, resp, sub, now)
		if errors.Is(err, store.ErrVersionConflict) {
			e.log.Warn("scheduling version conflict, retrying",
				zap.String("user", sub.UserID), zap.String("item", sub.ItemID),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	// The difficulty tracker is advisory: a failure here is logged, never
	// surfaced, and never rolls back the recorded review.
	adj, err := e.evaluateDifficulty(ctx, sub.UserID, item.Topic, now)
	if err != nil {
		e.log.Warn("difficulty evaluation failed",
			zap.String("user", sub.UserID), zap.String("topic", item.Topic), zap.Error(err))
	} else {
		result.Adjustment = adj
	}

	return result, nil
}

// applyReview runs one attempt of the scheduling update path.
func (e *Engine) applyReview(ctx context.Context, item store.Item, resp srs.Response, sub ReviewSubmission, now time.Time) (*ReviewResult, error) {
	sched, err := e.store.Scheduling().Get(ctx, sub.UserID, sub.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		sched = srs.NewScheduling(sub.UserID, sub.ItemID, now)
	} else if err != nil {
		return nil, err
	}
	if sched.Level == mastery.LevelSuspended {
		return nil, &srs.ValidationError{Field: "itemID", Value: sub.ItemID, Msg: "item is suspended"}
	}

	curve, err := e.loadCurve(ctx, sub.UserID, sub.ItemID)
	if err != nil {
		return nil, err
	}
	var elapsed time.Duration
	if !sched.LastReviewed.IsZero() {
		elapsed = now.Sub(sched.LastReviewed)
	}
	retrievability := curve.Retrievability(elapsed)

	updated, err := e.updater.Update(sched, resp, now)
	if err != nil {
		return nil, err
	}

	stats, err := e.store.Statistics().Get(ctx, sub.UserID, sub.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		stats = srs.Statistics{UserID: sub.UserID, ItemID: sub.ItemID}
	} else if err != nil {
		return nil, err
	}
	pass := resp.Quality.Pass()
	stats.Record(pass, resp.ResponseTimeMs)

	var transition *mastery.Transition
	from := updated.Level
	if pass {
		progress := mastery.Progress{
			TotalReviews: stats.TotalReviews,
			Accuracy:     stats.Accuracy(),
			Streak:       stats.Streak,
			IntervalDays: updated.IntervalDays,
		}
		if next, changed := e.machine.Advance(from, progress); changed {
			updated.Level = next
			transition = &mastery.Transition{
				UserID: sub.UserID, ItemID: sub.ItemID,
				From: from, To: next, Trigger: "gate-met",
			}
		}
	} else {
		if next, changed := e.machine.RegressOnLapse(from, updated.ConsecutiveLapses); changed {
			trigger := "lapse"
			if from == mastery.LevelYoung {
				trigger = "repeated-lapse"
			}
			updated.Level = next
			transition = &mastery.Transition{
				UserID: sub.UserID, ItemID: sub.ItemID,
				From: from, To: next, Trigger: trigger,
			}
		}
	}

	retention := 0.0
	confidence := 1.0
	if pass {
		retention = 1.0
	}
	if resp.HintsUsed {
		confidence = 0.5
	}
	curve.Observe(forgetting.RetentionDataPoint{
		ElapsedHours:   elapsed.Hours(),
		Retention:      retention,
		ResponseTimeMs: resp.ResponseTimeMs,
		Confidence:     confidence,
		ObservedAt:     now,
	}, e.cfg.Forgetting)

	// The scheduling save carries the version check; everything after it is
	// derived data keyed to this review.
	if err := e.store.Scheduling().Save(ctx, updated); err != nil {
		return nil, err
	}
	if err := e.store.Statistics().Save(ctx, stats); err != nil {
		return nil, err
	}
	if err := e.store.Curves().Save(ctx, sub.UserID, sub.ItemID, curve); err != nil {
		return nil, err
	}
	if err := e.store.Reviews().Append(ctx, store.Review{
		UserID: sub.UserID, ItemID: sub.ItemID, Topic: item.Topic,
		Quality: resp.Quality, Correct: pass,
		ResponseMs: resp.ResponseTimeMs, ReviewedAt: now,
	}); err != nil {
		return nil, err
	}

	if transition != nil {
		e.log.Info("mastery transition",
			zap.String("user", sub.UserID), zap.String("item", sub.ItemID),
			zap.String("from", string(transition.From)), zap.String("to", string(transition.To)),
			zap.String("trigger", transition.Trigger))
	}

	return &ReviewResult{
		Scheduling:     updated,
		Statistics:     stats,
		Retrievability: retrievability,
		Transition:     transition,
	}, nil
}

// evaluateDifficulty folds the topic's recent outcomes into its difficulty
// state and persists whatever the tracker decided.
func (e *Engine) evaluateDifficulty(ctx context.Context, userID, topic string, now time.Time) (*difficulty.Adjustment, error) {
	state, err := e.store.Difficulty().Get(ctx, userID, topic)
	if errors.Is(err, store.ErrNotFound) {
		state = difficulty.NewState(userID, topic, e.cfg.Difficulty.TargetSuccessRate)
	} else if err != nil {
		return nil, err
	}

	window, err := e.store.Reviews().RecentOutcomes(ctx, userID, topic, e.cfg.Difficulty.WindowSize)
	if err != nil {
		return nil, err
	}

	ev := e.tracker.Evaluate(state, window, difficulty.Neutral(), now)

	if ev.Adjustment != nil && ev.Adjustment.Reason != difficulty.ReasonInsufficientData {
		ev.State.Version = state.Version + 1
		if err := e.store.Difficulty().Save(ctx, ev.State); err != nil {
			// A concurrent session won the race; its evaluation stands.
			if errors.Is(err, store.ErrVersionConflict) {
				e.log.Warn("difficulty state version conflict, dropping evaluation",
					zap.String("user", userID), zap.String("topic", topic))
				return nil, nil
			}
			return nil, err
		}
	}

	// Only decisions worth auditing hit the log: applied changes and the
	// shadow records produced while a manual override is active.
	if ev.Adjustment != nil && (ev.Applied || ev.Adjustment.Reason == difficulty.ReasonManualOverride) {
		if err := e.store.Adjustments().Append(ctx, *ev.Adjustment); err != nil {
			return nil, err
		}
		return ev.Adjustment, nil
	}
	return nil, nil
}

// loadCurve returns the stored curve or a fresh one matching the configured
// algorithm family.
func (e *Engine) loadCurve(ctx context.Context, userID, itemID string) (*forgetting.Curve, error) {
	curve, err := e.store.Curves().Get(ctx, userID, itemID)
	if errors.Is(err, store.ErrNotFound) {
		model := forgetting.ModelExponential
		if e.updater.Name() == "fsrs" {
			model = forgetting.ModelPower
		}
		return forgetting.NewCurve(model), nil
	}
	if err != nil {
		return nil, err
	}
	return curve, nil
}

func validateSubmission(sub ReviewSubmission) error {
	if sub.UserID == "" {
		return &srs.ValidationError{Field: "userID", Value: sub.UserID, Msg: "must not be empty"}
	}
	if sub.ItemID == "" {
		return &srs.ValidationError{Field: "itemID", Value: sub.ItemID, Msg: "must not be empty"}
	}
	if !sub.Quality.Valid() {
		return &srs.ValidationError{Field: "quality", Value: int(sub.Quality), Msg: "must be on the 0-5 scale"}
	}
	if sub.ResponseTimeMs < 0 {
		return &srs.ValidationError{Field: "responseTimeMs", Value: sub.ResponseTimeMs, Msg: "must be non-negative"}
	}
	return nil
}
