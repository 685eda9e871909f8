package difficulty

import (
	"testing"
	"time"

	"github.com/avelar/adapt/internal/config"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTrackerForTest() *Tracker {
	return NewTracker(config.DefaultConfig().Difficulty)
}

func window(correct, total int) []bool {
	w := make([]bool, total)
	for i := 0; i < correct; i++ {
		w[i] = true
	}
	return w
}

func TestEvaluate_InsufficientDataIsANoOp(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	ev := tr.Evaluate(s, window(1, 2), Neutral(), now)
	if ev.Applied {
		t.Error("adjustment applied below the sample-size floor")
	}
	if ev.State.CurrentDifficulty != s.CurrentDifficulty {
		t.Errorf("difficulty changed to %.2f on insufficient data", ev.State.CurrentDifficulty)
	}
	if ev.Adjustment == nil || ev.Adjustment.Reason != ReasonInsufficientData {
		t.Fatalf("adjustment = %+v, want insufficient_data record", ev.Adjustment)
	}
}

func TestEvaluate_LowSuccessRateLowersDifficulty(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	// 10 attempts at 50% with target 0.75: deviation well past threshold.
	ev := tr.Evaluate(s, window(5, 10), Neutral(), now)
	if !ev.Applied {
		t.Fatal("expected an applied adjustment")
	}
	if ev.State.CurrentDifficulty >= s.CurrentDifficulty {
		t.Errorf("difficulty = %.2f, want decrease from %.2f", ev.State.CurrentDifficulty, s.CurrentDifficulty)
	}
	drop := s.CurrentDifficulty - ev.State.CurrentDifficulty
	if drop > tr.cfg.MaxAdjustmentMagnitude+1e-9 {
		t.Errorf("adjustment magnitude %.3f exceeds bound %.3f", drop, tr.cfg.MaxAdjustmentMagnitude)
	}
	if ev.Adjustment.Reason != ReasonPerformance {
		t.Errorf("reason = %q, want performance_based", ev.Adjustment.Reason)
	}
	if !ev.Adjustment.Applied {
		t.Error("audit record should be marked applied")
	}
}

func TestEvaluate_HighSuccessRateRaisesDifficulty(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	ev := tr.Evaluate(s, window(20, 20), Neutral(), now)
	if !ev.Applied || ev.State.CurrentDifficulty <= s.CurrentDifficulty {
		t.Errorf("difficulty = %.2f, want increase from %.2f", ev.State.CurrentDifficulty, s.CurrentDifficulty)
	}
}

func TestEvaluate_WithinThresholdLeavesDifficultyAlone(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	// 15/20 = exactly on target.
	ev := tr.Evaluate(s, window(15, 20), Neutral(), now)
	if ev.Applied {
		t.Error("adjustment applied inside the dead zone")
	}
	if ev.Adjustment.Reason != ReasonStable {
		t.Errorf("reason = %q, want stable", ev.Adjustment.Reason)
	}
}

func TestEvaluate_DifficultyStaysInBounds(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	// Drive difficulty down hard.
	for i := 0; i < 50; i++ {
		ev := tr.Evaluate(s, window(0, 20), Neutral(), now)
		s = ev.State
		if s.CurrentDifficulty < MinDifficulty || s.CurrentDifficulty > MaxDifficulty {
			t.Fatalf("iteration %d: difficulty %.2f out of [1, 10]", i, s.CurrentDifficulty)
		}
	}
	if s.CurrentDifficulty != MinDifficulty {
		t.Errorf("difficulty = %.2f, want floor %.1f after sustained failure", s.CurrentDifficulty, MinDifficulty)
	}
}

func TestEvaluate_ManualOverrideShadowsButNeverApplies(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)
	s.ManualOverrideEnabled = true
	s.ManualOverrideValue = 9

	ev := tr.Evaluate(s, window(5, 10), Neutral(), now)
	if ev.Applied {
		t.Error("automatic adjustment applied during manual override")
	}
	if ev.State.CurrentDifficulty != s.CurrentDifficulty {
		t.Errorf("tracked difficulty changed to %.2f under override", ev.State.CurrentDifficulty)
	}
	if ev.Adjustment == nil || ev.Adjustment.Reason != ReasonManualOverride {
		t.Fatalf("adjustment = %+v, want manual_override shadow record", ev.Adjustment)
	}
	if ev.Adjustment.Applied {
		t.Error("shadow record must not be marked applied")
	}
	// The shadow still says what the algorithm wanted.
	if ev.Adjustment.NewDifficulty >= s.CurrentDifficulty {
		t.Errorf("shadow recommendation = %.2f, want below %.2f", ev.Adjustment.NewDifficulty, s.CurrentDifficulty)
	}
	if got := ev.State.EffectiveDifficulty(); got != 9 {
		t.Errorf("effective difficulty = %.1f, want override value 9", got)
	}
}

func TestEvaluate_ReversalDropsStabilityAndDampsSteps(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	// Push up, then push down: a reversal.
	ev := tr.Evaluate(s, window(20, 20), Neutral(), now)
	s = ev.State
	stabilityAfterUp := s.StabilityScore

	ev = tr.Evaluate(s, window(5, 20), Neutral(), now)
	s = ev.State
	if s.StabilityScore >= stabilityAfterUp {
		t.Errorf("stability = %.1f, want drop below %.1f after reversal", s.StabilityScore, stabilityAfterUp)
	}
}

func TestEvaluate_MultipliersScaleButRespectBound(t *testing.T) {
	tr := newTrackerForTest()
	s := NewState("u1", "algebra", 0.75)

	boosted := tr.Evaluate(s, window(0, 20), Multipliers{LearningStyle: 2, TopicAffinity: 2}, now)
	drop := s.CurrentDifficulty - boosted.State.CurrentDifficulty
	if drop > tr.cfg.MaxAdjustmentMagnitude+1e-9 {
		t.Errorf("boosted magnitude %.3f exceeds bound %.3f", drop, tr.cfg.MaxAdjustmentMagnitude)
	}

	damped := tr.Evaluate(s, window(0, 20), Multipliers{LearningStyle: 0.25, TopicAffinity: 1}, now)
	dampedDrop := s.CurrentDifficulty - damped.State.CurrentDifficulty
	if dampedDrop >= drop {
		t.Errorf("damped drop %.3f, want smaller than %.3f", dampedDrop, drop)
	}
}

func TestEvaluate_WindowTruncatedToConfiguredSize(t *testing.T) {
	cfg := config.DefaultConfig().Difficulty
	cfg.WindowSize = 10
	tr := NewTracker(cfg)
	s := NewState("u1", "algebra", 0.75)

	// 30 misses followed by 10 hits: only the last 10 count.
	w := append(window(0, 30), window(10, 10)...)
	ev := tr.Evaluate(s, w, Neutral(), now)
	if ev.State.CurrentSuccessRate != 1.0 {
		t.Errorf("success rate = %.2f, want 1.0 over the trailing window", ev.State.CurrentSuccessRate)
	}
}

func TestConfidenceInterval_NarrowsWithConfidence(t *testing.T) {
	tr := newTrackerForTest()
	wide := tr.confidenceInterval(0)
	narrow := tr.confidenceInterval(1)
	if wide != MaxConfidenceInterval || narrow != MinConfidenceInterval {
		t.Errorf("interval bounds = %.2f..%.2f, want %.2f..%.2f", narrow, wide, MinConfidenceInterval, MaxConfidenceInterval)
	}
}
