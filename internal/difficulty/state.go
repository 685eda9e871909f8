package difficulty

import "time"

// Difficulty bounds shared across the tracker.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0

	MinStability = 0.0
	MaxStability = 100.0

	MinConfidenceInterval = 0.5
	MaxConfidenceInterval = 5.0
)

// State is the per-(user, topic) difficulty record, created lazily on the
// first session in a topic.
type State struct {
	UserID string
	Topic  string

	CurrentDifficulty  float64
	StabilityScore     float64
	ConfidenceInterval float64
	TargetSuccessRate  float64
	CurrentSuccessRate float64

	// lastDirection remembers the sign of the previous applied adjustment
	// so reversals can be detected: -1, 0, +1.
	LastDirection int

	ManualOverrideEnabled bool
	ManualOverrideValue   float64

	UpdatedAt time.Time
	Version   int64
}

// NewState returns the initial record for a topic the user has not practiced.
func NewState(userID, topic string, targetSuccessRate float64) State {
	return State{
		UserID:             userID,
		Topic:              topic,
		CurrentDifficulty:  5.0,
		StabilityScore:     50.0,
		ConfidenceInterval: MaxConfidenceInterval,
		TargetSuccessRate:  targetSuccessRate,
	}
}

// EffectiveDifficulty is the difficulty callers should serve: the manual
// override verbatim when enabled, the tracked value otherwise.
func (s State) EffectiveDifficulty() float64 {
	if s.ManualOverrideEnabled {
		return clampDifficulty(s.ManualOverrideValue)
	}
	return s.CurrentDifficulty
}

// Adjustment is the immutable audit record of one difficulty decision.
// Shadow records (Applied == false) capture what the automatic algorithm
// would have done while a manual override was active.
type Adjustment struct {
	ID                 string
	UserID             string
	Topic              string
	PreviousDifficulty float64
	NewDifficulty      float64
	Reason             Reason
	SuccessRate        float64
	Confidence         float64
	Applied            bool
	CreatedAt          time.Time
}

// Reason classifies why an adjustment record exists.
type Reason string

const (
	ReasonPerformance      Reason = "performance_based"
	ReasonManualOverride   Reason = "manual_override"
	ReasonInsufficientData Reason = "insufficient_data"
	ReasonStable           Reason = "stable"
)

func clampDifficulty(d float64) float64 {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

func clampStability(v float64) float64 {
	if v < MinStability {
		return MinStability
	}
	if v > MaxStability {
		return MaxStability
	}
	return v
}
