package queue

import (
	"math"
	"time"

	"github.com/avelar/adapt/internal/config"
	"github.com/avelar/adapt/internal/depgraph"
	"github.com/avelar/adapt/internal/srs"
	"github.com/avelar/adapt/internal/store"
)

// ReviewType classifies a queued card.
type ReviewType string

const (
	TypeNew     ReviewType = "new"
	TypeReview  ReviewType = "review"
	TypeRelearn ReviewType = "relearn"
)

// Candidate is one eligible item with everything ranking needs, assembled by
// the engine at queue-build time.
type Candidate struct {
	Item             store.Item
	Scheduling       srs.Scheduling
	Retrievability   float64
	TopicAccuracy    float64
	Eligibility      depgraph.Eligibility
	EstimatedSeconds int
}

// Type derives the candidate's review type from its scheduling state.
func (c Candidate) Type() ReviewType {
	switch {
	case c.Scheduling.Repetitions == 0 && c.Scheduling.Lapses == 0:
		return TypeNew
	case c.Scheduling.ConsecutiveLapses > 0:
		return TypeRelearn
	default:
		return TypeReview
	}
}

// Breakdown exposes the components behind a priority score, for the session
// UI and for debugging queue order.
type Breakdown struct {
	Overdue        float64 `json:"overdue"`
	Retrievability float64 `json:"retrievability"`
	Weakness       float64 `json:"weakness"`
	SoftDiscount   float64 `json:"soft_discount"`
}

// Ranker scores candidates into [0, 1]. Scores are recomputed per build and
// never persisted as ground truth.
type Ranker struct {
	cfg config.QueueConfig
}

// NewRanker creates a ranker with the given weights.
func NewRanker(cfg config.QueueConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Score combines overdue-ness, forgetting, and topic weakness by the
// configured weights, then applies the soft-prerequisite discount. Hard-
// blocked candidates must be filtered out before ranking; Score does not
// re-check them.
func (r *Ranker) Score(c Candidate, now time.Time) (float64, Breakdown) {
	b := Breakdown{
		Overdue:        saturate(c.Scheduling.Overdue(now) / r.cfg.OverdueSaturationDays),
		Retrievability: 1 - clamp01(c.Retrievability),
		Weakness:       1 - clamp01(c.TopicAccuracy),
	}

	score := r.cfg.OverdueWeight*b.Overdue +
		r.cfg.RetrievabilityWeight*b.Retrievability +
		r.cfg.WeaknessWeight*b.Weakness

	if c.Eligibility.SoftUnmet > 0 {
		b.SoftDiscount = r.cfg.SoftPrereqDiscount
		score *= 1 - r.cfg.SoftPrereqDiscount
	}

	return clamp01(score), b
}

func saturate(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
