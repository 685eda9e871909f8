package batch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/avelar/adapt/internal/engine"
	"github.com/avelar/adapt/internal/store"
)

// Precomputer periodically rebuilds every user's session queue and persists
// the result, so interactive callers can serve a prebuilt queue instead of
// ranking on demand.
type Precomputer struct {
	scheduler *gocron.Scheduler
	engine    *engine.Engine
	store     *store.Store
	req       engine.QueueRequest
	log       *zap.Logger
}

// New creates a precomputer. req carries the queue shape (budget, caps,
// ratio); its UserID and Now fields are filled per run.
func New(e *engine.Engine, st *store.Store, req engine.QueueRequest, log *zap.Logger) *Precomputer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Precomputer{
		scheduler: gocron.NewScheduler(time.UTC),
		engine:    e,
		store:     st,
		req:       req,
		log:       log,
	}
}

// Start schedules the job at the given interval and runs it in the
// background. Call Stop to halt.
func (p *Precomputer) Start(interval time.Duration) error {
	if _, err := p.scheduler.Every(interval).Do(func() {
		p.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	p.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduled job. A run in flight finishes.
func (p *Precomputer) Stop() {
	p.scheduler.Stop()
}

// RunOnce precomputes queues for every known user. Per-user failures are
// logged and skipped; one broken user never starves the rest.
func (p *Precomputer) RunOnce(ctx context.Context) {
	users, err := p.store.Scheduling().ListUsers(ctx)
	if err != nil {
		p.log.Error("precompute: list users failed", zap.Error(err))
		return
	}

	built := 0
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			p.log.Warn("precompute cancelled", zap.Int("built", built))
			return
		}
		if err := p.buildFor(ctx, userID); err != nil {
			p.log.Warn("precompute: user skipped",
				zap.String("user", userID), zap.Error(err))
			continue
		}
		built++
	}
	p.log.Info("precompute finished",
		zap.Int("users", len(users)), zap.Int("built", built))
}

func (p *Precomputer) buildFor(ctx context.Context, userID string) error {
	req := p.req
	req.UserID = userID
	req.Now = time.Now()

	q, err := p.engine.BuildQueue(ctx, req)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(q.Cards)
	if err != nil {
		return err
	}
	return p.store.Queues().Save(ctx, store.PrecomputedQueue{
		UserID:  userID,
		BuiltAt: q.BuiltAt,
		Payload: payload,
	})
}
