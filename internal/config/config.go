package config

// Config holds every tunable threshold for the scheduling engine.
// It is an immutable value: build one (DefaultConfig or Load), then thread it
// into component constructors. Components never reach for globals.
type Config struct {
	SRS        SRSConfig        `json:"srs"`
	Forgetting ForgettingConfig `json:"forgetting"`
	Mastery    MasteryConfig    `json:"mastery"`
	Difficulty DifficultyConfig `json:"difficulty"`
	Queue      QueueConfig      `json:"queue"`
	Load       LoadConfig       `json:"load"`
}

// SRSConfig controls the interval/ease update algorithm.
type SRSConfig struct {
	// Algorithm selects the update family: "sm2" or "fsrs".
	Algorithm string `json:"algorithm"`
	// LearningStepsMinutes is the intra-day step ladder before graduation.
	LearningStepsMinutes []int `json:"learning_steps_minutes"`
	// MinIntervalDays is the floor for any computed interval.
	MinIntervalDays int `json:"min_interval_days"`
	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int `json:"max_interval_days"`
	// LapseMultiplier shrinks the interval after a failed recall.
	LapseMultiplier float64 `json:"lapse_multiplier"`
	// LapseEasePenalty is subtracted from the ease factor on a lapse.
	LapseEasePenalty float64 `json:"lapse_ease_penalty"`
	// DesiredRetention is the FSRS target recall probability.
	DesiredRetention float64 `json:"desired_retention"`
}

// ForgettingConfig controls the forgetting-curve model.
type ForgettingConfig struct {
	// HistoryCap bounds the retained RetentionDataPoint history per curve.
	HistoryCap int `json:"history_cap"`
	// SmoothingFactor is the recency weight for incremental refits (0..1).
	SmoothingFactor float64 `json:"smoothing_factor"`
	// RetrievabilityThreshold marks an item overdue once its estimated
	// retention drops below it.
	RetrievabilityThreshold float64 `json:"retrievability_threshold"`
}

// LevelGate is the set of conditions required to advance one mastery level.
// All conditions must hold simultaneously; interval arithmetic alone never
// promotes a card.
type LevelGate struct {
	MinReviews      int     `json:"min_reviews"`
	MinAccuracy     float64 `json:"min_accuracy"`
	MinStreak       int     `json:"min_streak"`
	MinIntervalDays int     `json:"min_interval_days"`
}

// MasteryConfig holds the gate for each forward transition.
type MasteryConfig struct {
	ToYoung  LevelGate `json:"to_young"`
	ToMature LevelGate `json:"to_mature"`
	ToMaster LevelGate `json:"to_master"`
}

// DifficultyConfig controls the per-topic difficulty tracker.
type DifficultyConfig struct {
	// TargetSuccessRate is the default target for new topics (0.5..0.9).
	TargetSuccessRate float64 `json:"target_success_rate"`
	// AdjustmentThreshold is the minimum |current-target| deviation that
	// triggers an adjustment.
	AdjustmentThreshold float64 `json:"adjustment_threshold"`
	// MaxAdjustmentMagnitude bounds any single adjustment.
	MaxAdjustmentMagnitude float64 `json:"max_adjustment_magnitude"`
	// MinConfidence is the algorithm confidence floor below which no
	// adjustment is applied.
	MinConfidence float64 `json:"min_confidence"`
	// MinAttempts is the sample-size floor; below it the tracker reports
	// insufficient data and leaves state untouched.
	MinAttempts int `json:"min_attempts"`
	// WindowSize is the number of recent outcomes considered.
	WindowSize int `json:"window_size"`
}

// QueueConfig controls priority ranking and queue assembly.
type QueueConfig struct {
	// Weights for the priority score components. Must sum to 1.
	OverdueWeight        float64 `json:"overdue_weight"`
	RetrievabilityWeight float64 `json:"retrievability_weight"`
	WeaknessWeight       float64 `json:"weakness_weight"`
	// OverdueSaturationDays is where the overdue component saturates at 1.
	OverdueSaturationDays float64 `json:"overdue_saturation_days"`
	// SoftPrereqDiscount is the multiplicative priority penalty applied to
	// items with unmet soft prerequisites.
	SoftPrereqDiscount float64 `json:"soft_prereq_discount"`
	// DefaultItemSeconds estimates time for items with no response history.
	DefaultItemSeconds int `json:"default_item_seconds"`
}

// LoadConfig controls fatigue detection.
type LoadConfig struct {
	// MaxConsecutiveDifficult is the run of difficult items that triggers a
	// suggest-break recommendation.
	MaxConsecutiveDifficult int `json:"max_consecutive_difficult"`
	// AccuracyDeclineThreshold is the within-session accuracy drop (first
	// half vs second half) that triggers reduce-difficulty.
	AccuracyDeclineThreshold float64 `json:"accuracy_decline_threshold"`
	// MinSampleForDecline is the minimum outcomes before decline is measured.
	MinSampleForDecline int `json:"min_sample_for_decline"`
}

// DefaultConfig returns the engine defaults. Every bound matches the
// documented algorithm contract (ease in [1.3, 2.5], difficulty in [1, 10]).
func DefaultConfig() Config {
	return Config{
		SRS: SRSConfig{
			Algorithm:            "sm2",
			LearningStepsMinutes: []int{1, 10},
			MinIntervalDays:      1,
			MaxIntervalDays:      365,
			LapseMultiplier:      0.5,
			LapseEasePenalty:     0.2,
			DesiredRetention:     0.9,
		},
		Forgetting: ForgettingConfig{
			HistoryCap:              50,
			SmoothingFactor:         0.3,
			RetrievabilityThreshold: 0.9,
		},
		Mastery: MasteryConfig{
			ToYoung:  LevelGate{MinReviews: 3, MinAccuracy: 0.6, MinStreak: 2, MinIntervalDays: 1},
			ToMature: LevelGate{MinReviews: 8, MinAccuracy: 0.75, MinStreak: 3, MinIntervalDays: 21},
			ToMaster: LevelGate{MinReviews: 15, MinAccuracy: 0.85, MinStreak: 5, MinIntervalDays: 90},
		},
		Difficulty: DifficultyConfig{
			TargetSuccessRate:      0.75,
			AdjustmentThreshold:    0.10,
			MaxAdjustmentMagnitude: 1.0,
			MinConfidence:          0.5,
			MinAttempts:            5,
			WindowSize:             20,
		},
		Queue: QueueConfig{
			OverdueWeight:         0.4,
			RetrievabilityWeight:  0.35,
			WeaknessWeight:        0.25,
			OverdueSaturationDays: 14,
			SoftPrereqDiscount:    0.5,
			DefaultItemSeconds:    30,
		},
		Load: LoadConfig{
			MaxConsecutiveDifficult:  5,
			AccuracyDeclineThreshold: 0.25,
			MinSampleForDecline:      6,
		},
	}
}
