package srs

import (
	"math"
	"time"

	"github.com/avelar/adapt/internal/config"
)

// secondIntervalDays is the classic SM-2 interval for the second successful
// repetition; afterwards the interval grows by the ease factor.
const secondIntervalDays = 6

// SM2 implements the SuperMemo-2 family update.
//
// The interval value follows the classic ladder (1 day, 6 days, then
// interval*ease), while the due timestamp walks the minutes-scale
// learning-step ladder until the card graduates. A lapse resets repetitions,
// shrinks the interval by the lapse multiplier, and puts the card back on the
// step ladder.
type SM2 struct {
	cfg config.SRSConfig
}

// NewSM2 creates an SM-2 updater with the given tuning.
func NewSM2(cfg config.SRSConfig) *SM2 {
	return &SM2{cfg: cfg}
}

func (sm *SM2) Name() string { return "sm2" }

// Update applies one review outcome per the SM-2 contract.
func (sm *SM2) Update(s Scheduling, r Response, now time.Time) (Scheduling, error) {
	if err := validate(r); err != nil {
		return s, err
	}

	if r.Quality.Pass() {
		sm.pass(&s, r.Quality)
	} else {
		sm.lapse(&s)
	}

	s.LastReviewed = now
	s.Due = sm.due(&s, now)
	s.Version++
	return s, nil
}

func (sm *SM2) pass(s *Scheduling, q Quality) {
	// ease' = ease + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), clamped.
	gap := float64(QualityPerfect - q)
	s.Ease = clampEase(s.Ease + (0.1 - gap*(0.08+gap*0.02)))

	switch s.Repetitions {
	case 0:
		s.IntervalDays = sm.cfg.MinIntervalDays
	case 1:
		s.IntervalDays = secondIntervalDays
	default:
		s.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.Ease))
	}
	s.IntervalDays = clampInterval(s.IntervalDays, sm.cfg.MinIntervalDays, sm.cfg.MaxIntervalDays)

	s.Repetitions++
	s.ConsecutiveLapses = 0
	if !s.Graduated(len(sm.cfg.LearningStepsMinutes)) {
		s.Step++
	}
}

func (sm *SM2) lapse(s *Scheduling) {
	s.Repetitions = 0
	s.Lapses++
	s.ConsecutiveLapses++
	s.IntervalDays = clampInterval(
		int(math.Round(float64(s.IntervalDays)*sm.cfg.LapseMultiplier)),
		sm.cfg.MinIntervalDays, sm.cfg.MaxIntervalDays)
	s.Ease = clampEase(s.Ease - sm.cfg.LapseEasePenalty)
	// Back onto the relearning ladder.
	s.Step = 0
}

// due schedules the next review: minutes-scale while the card is on the step
// ladder, interval days once graduated.
func (sm *SM2) due(s *Scheduling, now time.Time) time.Time {
	steps := sm.cfg.LearningStepsMinutes
	if !s.Graduated(len(steps)) {
		idx := s.Step
		if idx >= len(steps) {
			idx = len(steps) - 1
		}
		return now.Add(time.Duration(steps[idx]) * time.Minute)
	}
	return now.AddDate(0, 0, s.IntervalDays)
}
