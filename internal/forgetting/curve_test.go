package forgetting

import (
	"testing"
	"time"

	"github.com/avelar/adapt/internal/config"
)

func TestRetrievability_MonotonicNonIncreasing(t *testing.T) {
	for _, model := range []Model{ModelExponential, ModelPower} {
		t.Run(string(model), func(t *testing.T) {
			c := NewCurve(model)
			prev := 1.0
			for h := 0; h <= 24*30; h += 6 {
				r := c.Retrievability(time.Duration(h) * time.Hour)
				if r > prev {
					t.Fatalf("retention rose from %.4f to %.4f at %dh", prev, r, h)
				}
				if r < 0 || r > 1 {
					t.Fatalf("retention %.4f out of [0,1] at %dh", r, h)
				}
				prev = r
			}
		})
	}
}

func TestRetrievability_FullAtZeroElapsed(t *testing.T) {
	c := NewCurve(ModelExponential)
	if r := c.Retrievability(0); r != 1.0 {
		t.Errorf("retention at t=0 = %.4f, want 1.0", r)
	}
}

func TestObserve_SuccessfulLateRecallRaisesStability(t *testing.T) {
	cfg := config.DefaultConfig().Forgetting
	c := NewCurve(ModelExponential)
	before := c.StabilityHours

	// Recalled three days out, well past the predicted horizon.
	c.Observe(RetentionDataPoint{
		ElapsedHours: 72,
		Retention:    1,
		Confidence:   1,
		ObservedAt:   time.Now(),
	}, cfg)

	if c.StabilityHours <= before {
		t.Errorf("stability = %.2f, want > %.2f after late successful recall", c.StabilityHours, before)
	}
}

func TestObserve_EarlyMissLowersStability(t *testing.T) {
	cfg := config.DefaultConfig().Forgetting
	c := NewCurve(ModelExponential)
	before := c.StabilityHours

	// Forgot after two hours.
	c.Observe(RetentionDataPoint{
		ElapsedHours: 2,
		Retention:    0,
		Confidence:   1,
		ObservedAt:   time.Now(),
	}, cfg)

	if c.StabilityHours >= before {
		t.Errorf("stability = %.2f, want < %.2f after early miss", c.StabilityHours, before)
	}
}

func TestObserve_HistoryBounded(t *testing.T) {
	cfg := config.DefaultConfig().Forgetting
	cfg.HistoryCap = 10
	c := NewCurve(ModelExponential)

	for i := 0; i < 50; i++ {
		c.Observe(RetentionDataPoint{ElapsedHours: float64(i), Retention: 1, Confidence: 1}, cfg)
	}
	if len(c.History) != 10 {
		t.Errorf("history length = %d, want capped at 10", len(c.History))
	}
	// The newest observation must survive the cap.
	if c.History[len(c.History)-1].ElapsedHours != 49 {
		t.Errorf("newest point elapsed = %.0f, want 49", c.History[len(c.History)-1].ElapsedHours)
	}
}

func TestOverdue_ThresholdCrossing(t *testing.T) {
	cfg := config.DefaultConfig().Forgetting
	c := NewCurve(ModelExponential)

	if c.Overdue(time.Hour, cfg.RetrievabilityThreshold) {
		t.Error("fresh item should not be overdue after one hour")
	}
	if !c.Overdue(30*24*time.Hour, cfg.RetrievabilityThreshold) {
		t.Error("item should be overdue after a month with default parameters")
	}
}

func TestExpectedHalfLife_Positive(t *testing.T) {
	for _, model := range []Model{ModelExponential, ModelPower} {
		c := NewCurve(model)
		if hl := c.ExpectedHalfLife(); hl <= 0 {
			t.Errorf("%s: half-life = %v, want > 0", model, hl)
		}
	}
}

func TestObserve_RepeatedObservationsKeepParametersBounded(t *testing.T) {
	cfg := config.DefaultConfig().Forgetting
	c := NewCurve(ModelExponential)

	for i := 0; i < 200; i++ {
		retention := 0.0
		if i%3 != 0 {
			retention = 1.0
		}
		c.Observe(RetentionDataPoint{ElapsedHours: 24, Retention: retention, Confidence: 0.8}, cfg)
	}
	if c.StabilityHours < 1 {
		t.Errorf("stability = %.3f, want >= 1", c.StabilityHours)
	}
	if c.DecayRate < 0.1 || c.DecayRate > 10 {
		t.Errorf("decay = %.3f, want within [0.1, 10]", c.DecayRate)
	}
}
