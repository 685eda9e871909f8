package forgetting

import (
	"math"
	"time"

	"github.com/avelar/adapt/internal/config"
)

// Model is the curve family used for retention estimates.
type Model string

const (
	// ModelExponential is R(t) = exp(-decay * t / stability).
	ModelExponential Model = "exponential"
	// ModelPower is R(t) = (1 + factor * t / stability)^(-decay), the
	// FSRS-style long-tail curve.
	ModelPower Model = "power"
)

const powerFactor = 19.0 / 81.0

// RetentionDataPoint is one observed recall outcome used for refitting.
type RetentionDataPoint struct {
	ElapsedHours   float64   `json:"elapsed_hours"`
	Retention      float64   `json:"retention"` // observed 0/1 correctness proxy
	ResponseTimeMs int       `json:"response_time_ms"`
	Confidence     float64   `json:"confidence"` // observation weight (0..1]
	ObservedAt     time.Time `json:"observed_at"`
}

// Curve estimates recall probability for one (user, item) pair as a function
// of elapsed time. Parameters are refit incrementally from a bounded history
// of observations; the estimate is monotonically non-increasing in elapsed
// time for any reachable parameter state.
type Curve struct {
	Model           Model                `json:"model"`
	DecayRate       float64              `json:"decay_rate"`
	StabilityHours  float64              `json:"stability_hours"`
	History         []RetentionDataPoint `json:"history"`
}

// NewCurve returns a curve with neutral starting parameters: a fresh item is
// assumed to hold for roughly a day.
func NewCurve(model Model) *Curve {
	return &Curve{
		Model:          model,
		DecayRate:      1.0,
		StabilityHours: 24.0,
	}
}

// Retrievability estimates current retention after the given elapsed time.
func (c *Curve) Retrievability(elapsed time.Duration) float64 {
	t := elapsed.Hours()
	if t <= 0 {
		return 1.0
	}
	switch c.Model {
	case ModelPower:
		return math.Pow(1+powerFactor*c.DecayRate*t/c.StabilityHours, -0.5)
	default:
		return math.Exp(-c.DecayRate * t / c.StabilityHours)
	}
}

// Overdue reports whether estimated retention has fallen below the
// configured retrievability threshold.
func (c *Curve) Overdue(elapsed time.Duration, threshold float64) bool {
	return c.Retrievability(elapsed) < threshold
}

// Observe appends a data point and refits the curve parameters with a
// recency-weighted exponential-smoothing step. The history is capped; old
// points fall off the front.
func (c *Curve) Observe(p RetentionDataPoint, cfg config.ForgettingConfig) {
	c.History = append(c.History, p)
	if n := cfg.HistoryCap; n > 0 && len(c.History) > n {
		c.History = c.History[len(c.History)-n:]
	}
	c.refit(p, cfg.SmoothingFactor)
}

// refit nudges stability toward the value that would have predicted the
// observation, weighted by smoothing factor and observation confidence.
// Recall far past the predicted horizon raises stability; a miss before the
// horizon lowers it.
func (c *Curve) refit(p RetentionDataPoint, alpha float64) {
	if alpha <= 0 {
		alpha = 0.3
	}
	weight := alpha * clamp01(p.Confidence)
	if weight == 0 {
		weight = alpha
	}

	predicted := c.Retrievability(time.Duration(p.ElapsedHours * float64(time.Hour)))
	residual := p.Retention - predicted

	// Multiplicative update keeps stability positive; the exponent bounds a
	// single observation's influence.
	c.StabilityHours *= math.Exp(weight * residual)
	c.StabilityHours = math.Max(c.StabilityHours, 1.0)

	// Decay drifts the opposite way, slower, so the two parameters do not
	// chase each other.
	c.DecayRate *= math.Exp(-weight * residual * 0.25)
	c.DecayRate = math.Min(math.Max(c.DecayRate, 0.1), 10)
}

// ExpectedHalfLife returns the elapsed time at which retention is predicted
// to reach 0.5. Used for reporting, not scheduling.
func (c *Curve) ExpectedHalfLife() time.Duration {
	var hours float64
	switch c.Model {
	case ModelPower:
		// Solve (1 + f*d*t/S)^-0.5 = 0.5 for t.
		hours = (math.Pow(0.5, -2) - 1) * c.StabilityHours / (powerFactor * c.DecayRate)
	default:
		hours = c.StabilityHours * math.Ln2 / c.DecayRate
	}
	return time.Duration(hours * float64(time.Hour))
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
