package srs

import (
	"errors"
	"testing"

	"github.com/avelar/adapt/internal/config"
)

func newFSRSForTest() *FSRS {
	cfg := config.DefaultConfig().SRS
	cfg.Algorithm = "fsrs"
	return NewFSRS(cfg)
}

func TestFSRS_FirstReviewInitializesMemoryState(t *testing.T) {
	f := newFSRSForTest()
	s := NewScheduling("u1", "item-x", testNow)

	out, err := f.Update(s, Response{Quality: QualityHesitation}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if out.Stability <= 0 {
		t.Errorf("stability = %.3f, want > 0", out.Stability)
	}
	if out.Difficulty < 1 || out.Difficulty > 10 {
		t.Errorf("difficulty = %.3f, want within [1, 10]", out.Difficulty)
	}
	if out.Repetitions != 1 {
		t.Errorf("repetitions = %d, want 1", out.Repetitions)
	}
}

func TestFSRS_StabilityGrowsAcrossSuccessfulReviews(t *testing.T) {
	f := newFSRSForTest()
	s := NewScheduling("u1", "item-x", testNow)

	now := testNow
	prevStability := 0.0
	for i := 0; i < 10; i++ {
		var err error
		s, err = f.Update(s, Response{Quality: QualityHesitation}, now)
		if err != nil {
			t.Fatal(err)
		}
		if s.Stability < prevStability {
			t.Fatalf("review %d: stability shrank %.3f -> %.3f on success", i+1, prevStability, s.Stability)
		}
		if s.Difficulty < 1 || s.Difficulty > 10 {
			t.Fatalf("review %d: difficulty %.3f out of bounds", i+1, s.Difficulty)
		}
		prevStability = s.Stability
		now = s.Due
	}
	if s.IntervalDays < 1 {
		t.Errorf("interval = %d, want >= 1", s.IntervalDays)
	}
}

func TestFSRS_LapseReducesStabilityAndResets(t *testing.T) {
	f := newFSRSForTest()
	s := NewScheduling("u1", "item-x", testNow)

	now := testNow
	var err error
	for i := 0; i < 5; i++ {
		s, err = f.Update(s, Response{Quality: QualityPerfect}, now)
		if err != nil {
			t.Fatal(err)
		}
		now = s.Due
	}

	before := s
	s, err = f.Update(s, Response{Quality: QualityBlackout}, now)
	if err != nil {
		t.Fatal(err)
	}
	if s.Stability >= before.Stability {
		t.Errorf("stability = %.3f, want < %.3f after forgetting", s.Stability, before.Stability)
	}
	if s.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0", s.Repetitions)
	}
	maxAllowed := int(float64(before.IntervalDays)*f.cfg.LapseMultiplier) + 1
	if s.IntervalDays > maxAllowed {
		t.Errorf("interval = %d, want <= %d", s.IntervalDays, maxAllowed)
	}
}

func TestFSRS_RetrievabilityMonotonicInElapsedTime(t *testing.T) {
	f := newFSRSForTest()
	prev := 1.0
	for days := 0.0; days <= 120; days += 5 {
		r := f.retrievability(days, 10)
		if r > prev {
			t.Fatalf("retrievability rose from %.4f to %.4f at %0.f days", prev, r, days)
		}
		prev = r
	}
}

func TestFSRS_HigherRetentionMeansShorterIntervals(t *testing.T) {
	strict := config.DefaultConfig().SRS
	strict.Algorithm = "fsrs"
	strict.DesiredRetention = 0.95
	relaxed := strict
	relaxed.DesiredRetention = 0.8

	if NewFSRS(strict).nextInterval(20) >= NewFSRS(relaxed).nextInterval(20) {
		t.Error("expected stricter retention target to shorten the interval")
	}
}

func TestFSRS_InvalidQualityRejected(t *testing.T) {
	f := newFSRSForTest()
	s := NewScheduling("u1", "item-x", testNow)

	_, err := f.Update(s, Response{Quality: Quality(-1)}, testNow)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestNewUpdater_SelectsFamily(t *testing.T) {
	cfg := config.DefaultConfig().SRS
	u, err := NewUpdater(cfg)
	if err != nil || u.Name() != "sm2" {
		t.Fatalf("NewUpdater(sm2) = %v, %v", u, err)
	}

	cfg.Algorithm = "fsrs"
	u, err = NewUpdater(cfg)
	if err != nil || u.Name() != "fsrs" {
		t.Fatalf("NewUpdater(fsrs) = %v, %v", u, err)
	}

	cfg.Algorithm = "anki"
	if _, err := NewUpdater(cfg); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestStatistics_Record(t *testing.T) {
	var st Statistics
	st.Record(true, 4000)
	st.Record(true, 2000)
	st.Record(false, 6000)

	if st.TotalReviews != 3 || st.CorrectCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", st.TotalReviews, st.CorrectCount)
	}
	if st.Streak != 0 {
		t.Errorf("streak = %d, want 0 after a miss", st.Streak)
	}
	if st.MaxStreak != 2 {
		t.Errorf("max streak = %d, want 2", st.MaxStreak)
	}
	if absf(st.AvgResponseMs-4000) > 1e-9 {
		t.Errorf("avg response = %.1f, want 4000", st.AvgResponseMs)
	}
	if absf(st.RetentionRate-2.0/3.0) > 1e-9 {
		t.Errorf("retention = %.3f, want %.3f", st.RetentionRate, 2.0/3.0)
	}
}
