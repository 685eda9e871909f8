package queue

import (
	"testing"
	"time"

	"github.com/avelar/adapt/internal/config"
	"github.com/avelar/adapt/internal/depgraph"
	"github.com/avelar/adapt/internal/srs"
	"github.com/avelar/adapt/internal/store"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func eligible() depgraph.Eligibility { return depgraph.Eligibility{Eligible: true} }

// reviewCandidate returns a candidate with review history, overdue by the
// given days, fully retrievable and on a strong topic unless changed.
func reviewCandidate(id string, overdueDays float64) Candidate {
	return Candidate{
		Item: store.Item{ID: id, Topic: "addition"},
		Scheduling: srs.Scheduling{
			UserID:      "alice",
			ItemID:      id,
			Repetitions: 3,
			Due:         testNow.Add(-time.Duration(overdueDays * 24 * float64(time.Hour))),
		},
		Retrievability: 1,
		TopicAccuracy:  1,
		Eligibility:    eligible(),
	}
}

func newCandidate(id string) Candidate {
	c := reviewCandidate(id, 0)
	c.Scheduling.Repetitions = 0
	c.Scheduling.Lapses = 0
	return c
}

func TestScore_WeightedComponentsAndBounds(t *testing.T) {
	cfg := config.DefaultConfig().Queue
	r := NewRanker(cfg)

	// Nothing pulling on the card: score is zero.
	fresh := reviewCandidate("a", 0)
	if score, _ := r.Score(fresh, testNow); score != 0 {
		t.Errorf("fresh score = %v, want 0", score)
	}

	// Everything maxed: weights sum to 1, so the score saturates at 1.
	worst := reviewCandidate("b", cfg.OverdueSaturationDays*2)
	worst.Retrievability = 0
	worst.TopicAccuracy = 0
	score, b := r.Score(worst, testNow)
	if score != 1 {
		t.Errorf("worst score = %v, want 1", score)
	}
	if b.Overdue != 1 || b.Retrievability != 1 || b.Weakness != 1 {
		t.Errorf("breakdown = %+v, want all components at 1", b)
	}

	// Half-saturated overdue contributes proportionally.
	half := reviewCandidate("c", cfg.OverdueSaturationDays/2)
	score, b = r.Score(half, testNow)
	if want := cfg.OverdueWeight * 0.5; absf(score-want) > 1e-9 {
		t.Errorf("half-overdue score = %v, want %v", score, want)
	}
	if absf(b.Overdue-0.5) > 1e-9 {
		t.Errorf("overdue component = %v, want 0.5", b.Overdue)
	}
}

func TestScore_SoftPrereqDiscount(t *testing.T) {
	cfg := config.DefaultConfig().Queue
	r := NewRanker(cfg)

	c := reviewCandidate("a", cfg.OverdueSaturationDays)
	base, _ := r.Score(c, testNow)

	c.Eligibility.SoftUnmet = 1
	discounted, b := r.Score(c, testNow)

	if want := base * (1 - cfg.SoftPrereqDiscount); absf(discounted-want) > 1e-9 {
		t.Errorf("discounted score = %v, want %v", discounted, want)
	}
	if b.SoftDiscount != cfg.SoftPrereqDiscount {
		t.Errorf("breakdown discount = %v, want %v", b.SoftDiscount, cfg.SoftPrereqDiscount)
	}
}

func TestBuild_ExcludesHardBlocked(t *testing.T) {
	b := NewBuilder(config.DefaultConfig().Queue)

	blocked := reviewCandidate("blocked", 10)
	blocked.Eligibility = depgraph.Eligibility{Eligible: false, BlockedBy: []string{"counting"}}

	out := b.Build(Request{
		UserID: "alice", SessionBudgetMinutes: 30,
		MaxNewCards: 10, MaxReviewCards: 10, NewReviewRatio: 0.25,
	}, []Candidate{blocked, reviewCandidate("open", 5)}, testNow)

	if len(out) != 1 || out[0].ItemID != "open" {
		t.Fatalf("queue = %v, want only the unblocked item", out)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	b := NewBuilder(config.DefaultConfig().Queue)
	req := Request{
		UserID: "alice", SessionBudgetMinutes: 30,
		MaxNewCards: 5, MaxReviewCards: 10, NewReviewRatio: 0.25,
	}

	// Equal-priority candidates force the ID tie-break.
	candidates := []Candidate{
		reviewCandidate("c", 5), reviewCandidate("a", 5), reviewCandidate("b", 5),
		newCandidate("n2"), newCandidate("n1"),
	}

	first := b.Build(req, candidates, testNow)
	second := b.Build(req, candidates, testNow)

	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("builds differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ItemID != second[i].ItemID {
			t.Fatalf("builds differ at %d: %s vs %s", i, first[i].ItemID, second[i].ItemID)
		}
	}

	// Within the review run, ties resolve by ID.
	var reviews []string
	for _, card := range first {
		if card.ReviewType != TypeNew {
			reviews = append(reviews, card.ItemID)
		}
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if reviews[i] != want[i] {
			t.Fatalf("review order = %v, want %v", reviews, want)
		}
	}
}

func TestBuild_InterleavesAtRatio(t *testing.T) {
	b := NewBuilder(config.DefaultConfig().Queue)

	var candidates []Candidate
	for _, id := range []string{"n1", "n2", "n3", "n4", "n5"} {
		candidates = append(candidates, newCandidate(id))
	}
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8"} {
		candidates = append(candidates, reviewCandidate(id, 3))
	}

	out := b.Build(Request{
		UserID: "alice", SessionBudgetMinutes: 60,
		MaxNewCards: 3, MaxReviewCards: 8, NewReviewRatio: 0.25,
	}, candidates, testNow)

	if len(out) != 11 {
		t.Fatalf("queue length = %d, want 11", len(out))
	}

	newSoFar := 0
	for i, card := range out {
		if card.ReviewType == TypeNew {
			newSoFar++
		}
		// Never run further ahead of the ratio than one card.
		if float64(newSoFar) > 0.25*float64(i+1)+1 {
			t.Fatalf("new cards ahead of ratio at position %d: %d", i, newSoFar)
		}
	}
	if newSoFar != 3 {
		t.Errorf("new cards = %d, want 3 at the cap", newSoFar)
	}
}

func TestBuild_RespectsCapsAndBudget(t *testing.T) {
	cfg := config.DefaultConfig().Queue
	b := NewBuilder(cfg)

	var candidates []Candidate
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5", "r6"} {
		candidates = append(candidates, reviewCandidate(id, 3))
	}
	candidates = append(candidates, newCandidate("n1"), newCandidate("n2"))

	// Caps bind before the budget.
	out := b.Build(Request{
		UserID: "alice", SessionBudgetMinutes: 60,
		MaxNewCards: 1, MaxReviewCards: 2, NewReviewRatio: 0.5,
	}, candidates, testNow)
	if len(out) != 3 {
		t.Fatalf("capped queue length = %d, want 3", len(out))
	}

	// Budget binds: 2 minutes at the default 30s estimate fits 4 cards.
	out = b.Build(Request{
		UserID: "alice", SessionBudgetMinutes: 2,
		MaxNewCards: 10, MaxReviewCards: 10, NewReviewRatio: 0.25,
	}, candidates, testNow)
	if len(out) != 4 {
		t.Fatalf("budget queue length = %d, want 4", len(out))
	}
	for _, card := range out {
		if card.EstimatedSeconds != cfg.DefaultItemSeconds {
			t.Errorf("estimate = %d, want default %d", card.EstimatedSeconds, cfg.DefaultItemSeconds)
		}
	}
}

func TestCandidateType(t *testing.T) {
	c := newCandidate("a")
	if c.Type() != TypeNew {
		t.Errorf("type = %s, want new", c.Type())
	}

	c.Scheduling.Repetitions = 2
	if c.Type() != TypeReview {
		t.Errorf("type = %s, want review", c.Type())
	}

	c.Scheduling.ConsecutiveLapses = 1
	if c.Type() != TypeRelearn {
		t.Errorf("type = %s, want relearn", c.Type())
	}
}

func TestBalancer_BreakAfterConsecutiveDifficult(t *testing.T) {
	cfg := config.DefaultConfig().Load
	b := NewBalancer(cfg)

	for i := 0; i < cfg.MaxConsecutiveDifficult-1; i++ {
		b.Observe(true, true)
	}
	if got := b.Recommendation(); got != RecommendContinue {
		t.Fatalf("below threshold = %s, want continue", got)
	}

	b.Observe(true, true)
	if got := b.Recommendation(); got != RecommendBreak {
		t.Fatalf("at threshold = %s, want suggest-break", got)
	}

	// An easy item resets the run.
	b.Observe(true, false)
	if got := b.Recommendation(); got != RecommendContinue {
		t.Fatalf("after easy item = %s, want continue", got)
	}
}

func TestBalancer_ReduceDifficultyOnAccuracyDecline(t *testing.T) {
	b := NewBalancer(config.DefaultConfig().Load)

	// Strong first half, collapsing second half.
	for _, correct := range []bool{true, true, true, true, false, false, false, true} {
		b.Observe(correct, false)
	}
	if got := b.Recommendation(); got != RecommendReduceDifficulty {
		t.Fatalf("declining session = %s, want reduce-difficulty", got)
	}
}

func TestBalancer_SmallSampleNeverDeclines(t *testing.T) {
	b := NewBalancer(config.DefaultConfig().Load)

	// Too few outcomes to call a decline, however sharp.
	for _, correct := range []bool{true, true, false, false} {
		b.Observe(correct, false)
	}
	if got := b.Recommendation(); got != RecommendContinue {
		t.Fatalf("small sample = %s, want continue", got)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
