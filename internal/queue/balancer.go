package queue

import "github.com/avelar/adapt/internal/config"

// Recommendation is the load balancer's advisory signal. Acting on it is the
// session layer's decision; the balancer never alters a queue itself.
type Recommendation string

const (
	RecommendContinue         Recommendation = "continue"
	RecommendBreak            Recommendation = "suggest-break"
	RecommendReduceDifficulty Recommendation = "reduce-difficulty"
)

// Balancer tracks within-session fatigue: long runs of difficult items and
// accuracy decline across the session.
type Balancer struct {
	cfg config.LoadConfig

	consecutiveDifficult int
	outcomes             []bool
}

// NewBalancer creates a balancer for one session.
func NewBalancer(cfg config.LoadConfig) *Balancer {
	return &Balancer{cfg: cfg}
}

// Observe records one answered item. difficult marks items at or above the
// learner's current target difficulty.
func (b *Balancer) Observe(correct, difficult bool) {
	b.outcomes = append(b.outcomes, correct)
	if difficult {
		b.consecutiveDifficult++
	} else {
		b.consecutiveDifficult = 0
	}
}

// Recommendation evaluates the session so far.
func (b *Balancer) Recommendation() Recommendation {
	if b.consecutiveDifficult >= b.cfg.MaxConsecutiveDifficult {
		return RecommendBreak
	}
	if b.accuracyDecline() > b.cfg.AccuracyDeclineThreshold {
		return RecommendReduceDifficulty
	}
	return RecommendContinue
}

// accuracyDecline compares first-half and second-half accuracy. Too small a
// sample reads as no decline.
func (b *Balancer) accuracyDecline() float64 {
	n := len(b.outcomes)
	if n < b.cfg.MinSampleForDecline {
		return 0
	}
	half := n / 2
	first := accuracy(b.outcomes[:half])
	second := accuracy(b.outcomes[half:])
	if decline := first - second; decline > 0 {
		return decline
	}
	return 0
}

func accuracy(outcomes []bool) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range outcomes {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(outcomes))
}
