package difficulty

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/adapt/internal/config"
)

// Tracker converts a rolling window of recent outcomes into target-difficulty
// adjustments. It is stateless between calls: the caller owns the State and
// the outcome window, the tracker owns the policy.
type Tracker struct {
	cfg config.DifficultyConfig
}

// NewTracker creates a tracker with the given tuning.
func NewTracker(cfg config.DifficultyConfig) *Tracker {
	return &Tracker{cfg: cfg}
}

// Multipliers are external per-learner scaling signals. They scale the
// adjustment magnitude but can never push it past MaxAdjustmentMagnitude.
type Multipliers struct {
	LearningStyle float64
	TopicAffinity float64
}

// Neutral returns multipliers that leave the magnitude unchanged.
func Neutral() Multipliers { return Multipliers{LearningStyle: 1, TopicAffinity: 1} }

// Evaluation is the outcome of one tracker pass.
type Evaluation struct {
	State      State
	Adjustment *Adjustment // audit record; nil only when nothing noteworthy happened
	Applied    bool
}

// Evaluate folds the outcome window into the state. The window holds the
// most recent outcomes, newest last; true means a correct answer.
//
// Below the sample-size floor the tracker reports insufficient data and
// leaves the state untouched; callers must treat that as a no-op, not an
// error. Under a manual override the automatic recommendation is still
// computed and logged as a shadow record, but never applied.
func (t *Tracker) Evaluate(s State, window []bool, m Multipliers, now time.Time) Evaluation {
	if len(window) > t.cfg.WindowSize {
		window = window[len(window)-t.cfg.WindowSize:]
	}

	if len(window) < t.cfg.MinAttempts {
		return Evaluation{State: s, Adjustment: t.record(s, s.CurrentDifficulty, ReasonInsufficientData, successRate(window), 0, false, now)}
	}

	rate := successRate(window)
	confidence := t.confidence(len(window))
	s.CurrentSuccessRate = rate
	s.ConfidenceInterval = t.confidenceInterval(confidence)
	s.UpdatedAt = now

	deviation := rate - s.TargetSuccessRate
	if math.Abs(deviation) <= t.cfg.AdjustmentThreshold || confidence < t.cfg.MinConfidence {
		s.StabilityScore = clampStability(s.StabilityScore + 2)
		return Evaluation{State: s, Adjustment: t.record(s, s.CurrentDifficulty, ReasonStable, rate, confidence, false, now)}
	}

	proposed := t.proposed(s, deviation, confidence, m)

	if s.ManualOverrideEnabled {
		// Log what the algorithm would have recommended; apply nothing.
		return Evaluation{State: s, Adjustment: t.record(s, proposed, ReasonManualOverride, rate, confidence, false, now)}
	}

	prev := s.CurrentDifficulty
	dir := sign(proposed - prev)
	if dir != 0 && s.LastDirection != 0 && dir != s.LastDirection {
		// Reversal: the topic is oscillating. Drop stability so the next
		// step shrinks.
		s.StabilityScore = clampStability(s.StabilityScore - 15)
	} else {
		s.StabilityScore = clampStability(s.StabilityScore + 5)
	}
	s.LastDirection = dir
	s.CurrentDifficulty = proposed

	adj := t.record(s, proposed, ReasonPerformance, rate, confidence, true, now)
	adj.PreviousDifficulty = prev
	return Evaluation{State: s, Adjustment: adj, Applied: true}
}

// proposed computes the bounded next difficulty. Success above target means
// questions are too easy: difficulty moves up, and vice versa.
func (t *Tracker) proposed(s State, deviation, confidence float64, m Multipliers) float64 {
	magnitude := math.Abs(deviation) * 5 * confidence

	// Low stability damps the step to break oscillation.
	damping := 0.5 + 0.5*s.StabilityScore/MaxStability
	magnitude *= damping

	magnitude *= clampMultiplier(m.LearningStyle) * clampMultiplier(m.TopicAffinity)

	if magnitude > t.cfg.MaxAdjustmentMagnitude {
		magnitude = t.cfg.MaxAdjustmentMagnitude
	}

	if deviation > 0 {
		return clampDifficulty(s.CurrentDifficulty + magnitude)
	}
	return clampDifficulty(s.CurrentDifficulty - magnitude)
}

// confidence grows with sample size and caps at 1.
func (t *Tracker) confidence(n int) float64 {
	if t.cfg.WindowSize <= 0 {
		return 1
	}
	c := float64(n) / float64(t.cfg.WindowSize)
	if c > 1 {
		c = 1
	}
	return c
}

// confidenceInterval narrows from the widest bound toward the narrowest as
// confidence grows.
func (t *Tracker) confidenceInterval(confidence float64) float64 {
	return MaxConfidenceInterval - confidence*(MaxConfidenceInterval-MinConfidenceInterval)
}

func (t *Tracker) record(s State, newDifficulty float64, reason Reason, rate, confidence float64, applied bool, now time.Time) *Adjustment {
	return &Adjustment{
		ID:                 uuid.NewString(),
		UserID:             s.UserID,
		Topic:              s.Topic,
		PreviousDifficulty: s.CurrentDifficulty,
		NewDifficulty:      newDifficulty,
		Reason:             reason,
		SuccessRate:        rate,
		Confidence:         confidence,
		Applied:            applied,
		CreatedAt:          now,
	}
}

func successRate(window []bool) float64 {
	if len(window) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range window {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(window))
}

// clampMultiplier keeps external signals from blowing past the magnitude
// bound on their own.
func clampMultiplier(v float64) float64 {
	if v <= 0 {
		return 1
	}
	if v < 0.25 {
		return 0.25
	}
	if v > 2 {
		return 2
	}
	return v
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
