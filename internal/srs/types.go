package srs

import (
	"fmt"
	"time"

	"github.com/avelar/adapt/internal/mastery"
)

// Quality is the 0-5 response quality signal. 0-2 count as failed recall,
// 3 as correct with effort, 4-5 as easy correct.
type Quality int

const (
	QualityBlackout   Quality = 0
	QualityIncorrect  Quality = 1
	QualityFamiliar   Quality = 2
	QualityDifficult  Quality = 3
	QualityHesitation Quality = 4
	QualityPerfect    Quality = 5
)

// Pass reports whether the quality counts as a successful recall.
func (q Quality) Pass() bool { return q >= QualityDifficult }

// Valid reports whether the quality is on the 0-5 scale.
func (q Quality) Valid() bool { return q >= QualityBlackout && q <= QualityPerfect }

// Response is one review event as seen by the update algorithm.
type Response struct {
	Quality        Quality
	ResponseTimeMs int
	HintsUsed      bool
}

// Ease factor bounds from the SM-2 contract.
const (
	MinEase = 1.3
	MaxEase = 2.5
)

// Scheduling is the per-(user, item) scheduling record. It is created on
// first exposure and mutated only by an Updater; every other component reads
// it. Version supports optimistic concurrency at the store boundary.
type Scheduling struct {
	UserID string
	ItemID string

	Level        mastery.Level
	IntervalDays int
	Ease         float64
	Repetitions  int
	Lapses       int
	// ConsecutiveLapses counts lapses since the last successful recall,
	// used for repeated-lapse level regression.
	ConsecutiveLapses int
	// Step is the position in the learning-step ladder. A card is on the
	// minutes-scale ladder until Step reaches the configured step count.
	Step int

	Due          time.Time
	LastReviewed time.Time

	// FSRS memory state. Unused by the SM-2 updater.
	Stability  float64
	Difficulty float64

	Version int64
}

// NewScheduling returns the initial scheduling record for a first exposure.
func NewScheduling(userID, itemID string, now time.Time) Scheduling {
	return Scheduling{
		UserID:       userID,
		ItemID:       itemID,
		Level:        mastery.LevelLearning,
		IntervalDays: 1,
		Ease:         MaxEase,
		Stability:    1.0,
		Difficulty:   5.0,
		Due:          now,
	}
}

// Graduated reports whether the card has cleared the learning-step ladder
// for the given step count.
func (s Scheduling) Graduated(steps int) bool { return s.Step >= steps }

// Overdue returns how many days past due the card is, or 0 if not yet due.
func (s Scheduling) Overdue(now time.Time) float64 {
	if now.Before(s.Due) {
		return 0
	}
	return now.Sub(s.Due).Hours() / 24.0
}

// Statistics is the per-(user, item) cumulative record, updated append-only
// on every review.
type Statistics struct {
	UserID        string
	ItemID        string
	TotalReviews  int
	CorrectCount  int
	Streak        int
	MaxStreak     int
	AvgResponseMs float64
	RetentionRate float64
}

// Record folds one review outcome into the statistics.
func (st *Statistics) Record(correct bool, responseTimeMs int) {
	st.TotalReviews++
	if correct {
		st.CorrectCount++
		st.Streak++
		if st.Streak > st.MaxStreak {
			st.MaxStreak = st.Streak
		}
	} else {
		st.Streak = 0
	}
	// Incremental rolling average keeps the record append-only.
	st.AvgResponseMs += (float64(responseTimeMs) - st.AvgResponseMs) / float64(st.TotalReviews)
	st.RetentionRate = float64(st.CorrectCount) / float64(st.TotalReviews)
}

// Accuracy returns the lifetime accuracy ratio.
func (st *Statistics) Accuracy() float64 {
	if st.TotalReviews == 0 {
		return 0
	}
	return float64(st.CorrectCount) / float64(st.TotalReviews)
}

// ValidationError rejects malformed review input before any state mutation.
type ValidationError struct {
	Field string
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Msg)
}
