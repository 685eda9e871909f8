package srs

import (
	"math"
	"time"

	"github.com/avelar/adapt/internal/config"
)

// fsrsWeights are the FSRS v4 defaults. Per-user optimization is out of
// scope; the weights are fixed at construction.
var fsrsWeights = [19]float64{
	0.4072, 1.1829, 3.1262, 15.4722, 7.2102, 0.5316, 1.0651, 0.0234,
	1.616, 0.1544, 1.0824, 1.9813, 0.0953, 0.2975, 2.2042, 0.2407,
	2.9466, 0.5034, 0.6567,
}

const (
	fsrsDecay  = -0.5
	fsrsFactor = 19.0 / 81.0
)

// fsrsRating is the 4-point FSRS grade derived from the 0-5 quality scale.
type fsrsRating int

const (
	ratingAgain fsrsRating = 1
	ratingHard  fsrsRating = 2
	ratingGood  fsrsRating = 3
	ratingEasy  fsrsRating = 4
)

func toRating(q Quality) fsrsRating {
	switch {
	case q <= QualityFamiliar:
		return ratingAgain
	case q == QualityDifficult:
		return ratingHard
	case q == QualityHesitation:
		return ratingGood
	default:
		return ratingEasy
	}
}

// FSRS implements the free-spaced-repetition-scheduler family update. Memory
// state lives in Scheduling.Stability and Scheduling.Difficulty; the ease
// factor is carried through untouched so the scheduling invariants hold
// across algorithm switches.
type FSRS struct {
	cfg config.SRSConfig
	w   [19]float64
}

// NewFSRS creates an FSRS updater with default weights.
func NewFSRS(cfg config.SRSConfig) *FSRS {
	return &FSRS{cfg: cfg, w: fsrsWeights}
}

func (f *FSRS) Name() string { return "fsrs" }

// Update applies one review outcome per the FSRS power curve.
func (f *FSRS) Update(s Scheduling, r Response, now time.Time) (Scheduling, error) {
	if err := validate(r); err != nil {
		return s, err
	}

	rating := toRating(r.Quality)

	if s.Repetitions == 0 && s.Lapses == 0 {
		s.Stability = f.initStability(rating)
		s.Difficulty = f.initDifficulty(rating)
	} else {
		elapsedDays := 0.0
		if !s.LastReviewed.IsZero() {
			elapsedDays = now.Sub(s.LastReviewed).Hours() / 24.0
		}
		retr := f.retrievability(elapsedDays, s.Stability)
		s.Difficulty = f.nextDifficulty(s.Difficulty, rating)
		if rating == ratingAgain {
			s.Stability = f.forgetStability(s.Difficulty, s.Stability, retr)
		} else {
			s.Stability = f.recallStability(s.Difficulty, s.Stability, retr, rating)
		}
	}

	if r.Quality.Pass() {
		s.Repetitions++
		s.ConsecutiveLapses = 0
		if !s.Graduated(len(f.cfg.LearningStepsMinutes)) {
			s.Step++
		}
		s.IntervalDays = f.nextInterval(s.Stability)
	} else {
		s.Repetitions = 0
		s.Lapses++
		s.ConsecutiveLapses++
		s.Step = 0
		s.IntervalDays = clampInterval(
			int(math.Round(float64(s.IntervalDays)*f.cfg.LapseMultiplier)),
			f.cfg.MinIntervalDays, f.cfg.MaxIntervalDays)
	}

	s.LastReviewed = now
	if !s.Graduated(len(f.cfg.LearningStepsMinutes)) {
		steps := f.cfg.LearningStepsMinutes
		idx := s.Step
		if idx >= len(steps) {
			idx = len(steps) - 1
		}
		s.Due = now.Add(time.Duration(steps[idx]) * time.Minute)
	} else {
		s.Due = now.AddDate(0, 0, s.IntervalDays)
	}
	s.Version++
	return s, nil
}

// retrievability computes R(t, S) = (1 + FACTOR*t/S)^DECAY.
func (f *FSRS) retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+fsrsFactor*elapsedDays/stability, fsrsDecay)
}

func (f *FSRS) initStability(r fsrsRating) float64 {
	return math.Max(f.w[r-1], 0.1)
}

func (f *FSRS) initDifficulty(r fsrsRating) float64 {
	return clampDifficulty(f.w[4] - math.Exp(f.w[5]*float64(r-1)) + 1)
}

// nextInterval solves the power curve for the configured desired retention.
func (f *FSRS) nextInterval(stability float64) int {
	ivl := stability / fsrsFactor * (math.Pow(f.cfg.DesiredRetention, 1.0/fsrsDecay) - 1)
	return clampInterval(int(math.Round(ivl)), f.cfg.MinIntervalDays, f.cfg.MaxIntervalDays)
}

// nextDifficulty applies linear damping plus mean reversion toward the
// initial easy difficulty.
func (f *FSRS) nextDifficulty(d float64, r fsrsRating) float64 {
	deltaD := -f.w[6] * (float64(r) - 3)
	dPrime := d + (10-d)*deltaD/9
	d0Easy := f.w[4] - math.Exp(f.w[5]*float64(ratingEasy-1)) + 1
	return clampDifficulty(f.w[7]*d0Easy + (1-f.w[7])*dPrime)
}

func (f *FSRS) recallStability(d, s, retr float64, r fsrsRating) float64 {
	hardPenalty := 1.0
	if r == ratingHard {
		hardPenalty = f.w[15]
	}
	easyBonus := 1.0
	if r == ratingEasy {
		easyBonus = f.w[16]
	}
	return s * (1 + math.Exp(f.w[8])*
		(11-d)*
		math.Pow(s, -f.w[9])*
		(math.Exp((1-retr)*f.w[10])-1)*
		hardPenalty*easyBonus)
}

func (f *FSRS) forgetStability(d, s, retr float64) float64 {
	next := f.w[11] *
		math.Pow(d, -f.w[12]) *
		(math.Pow(s+1, f.w[13]) - 1) *
		math.Exp((1-retr)*f.w[14])
	return math.Min(next, s)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
