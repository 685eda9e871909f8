package depgraph

import (
	"errors"
	"testing"

	"github.com/avelar/adapt/internal/mastery"
)

func edge(prereq, dependent string, mode Mode) Edge {
	return Edge{Prereq: prereq, Dependent: dependent, MinLevel: mastery.LevelYoung, Mode: mode}
}

func TestAddEdge_RejectsCycle(t *testing.T) {
	g, err := New([]Edge{
		edge("counting", "addition", ModeHard),
		edge("addition", "multiplication", ModeHard),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = g.AddEdge(edge("multiplication", "counting", ModeHard))
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want CycleError", err)
	}
	if len(cerr.Path) < 3 {
		t.Errorf("cycle path = %v, want the full chain", cerr.Path)
	}

	// The rejected edge must not have been inserted.
	if len(g.Edges()) != 2 {
		t.Errorf("edges = %d, want 2 after rejection", len(g.Edges()))
	}
}

func TestAddEdge_RejectsSelfLoopAndDuplicate(t *testing.T) {
	g, _ := New(nil)

	var cerr *CycleError
	if err := g.AddEdge(edge("algebra", "algebra", ModeHard)); !errors.As(err, &cerr) {
		t.Errorf("self-loop err = %v, want CycleError", err)
	}

	if err := g.AddEdge(edge("a", "b", ModeHard)); err != nil {
		t.Fatal(err)
	}
	var derr *DuplicateEdgeError
	if err := g.AddEdge(edge("a", "b", ModeSoft)); !errors.As(err, &derr) {
		t.Errorf("duplicate err = %v, want DuplicateEdgeError", err)
	}
}

func TestCheck_HardBlockAndSoftDiscount(t *testing.T) {
	g, err := New([]Edge{
		edge("counting", "addition", ModeHard),
		edge("subtraction", "addition", ModeSoft),
	})
	if err != nil {
		t.Fatal(err)
	}
	snap := g.Snapshot()

	tests := []struct {
		name      string
		levels    map[string]mastery.Level
		eligible  bool
		softUnmet int
	}{
		{
			"both prerequisites met",
			map[string]mastery.Level{"counting": mastery.LevelMature, "subtraction": mastery.LevelYoung},
			true, 0,
		},
		{
			"hard prerequisite unmet",
			map[string]mastery.Level{"counting": mastery.LevelLearning, "subtraction": mastery.LevelMature},
			false, 0,
		},
		{
			"soft prerequisite unmet",
			map[string]mastery.Level{"counting": mastery.LevelYoung},
			true, 1,
		},
		{
			"unknown topics default to learning",
			nil,
			false, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snap.Check("addition", tt.levels)
			if got.Eligible != tt.eligible || got.SoftUnmet != tt.softUnmet {
				t.Errorf("Check = {eligible: %v, softUnmet: %d}, want {%v, %d}",
					got.Eligible, got.SoftUnmet, tt.eligible, tt.softUnmet)
			}
		})
	}
}

func TestCheck_SuspendedNeverSatisfiesThreshold(t *testing.T) {
	g, _ := New([]Edge{edge("counting", "addition", ModeHard)})
	got := g.Snapshot().Check("addition", map[string]mastery.Level{"counting": mastery.LevelSuspended})
	if got.Eligible {
		t.Error("suspended prerequisite satisfied a hard threshold")
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	g, err := New([]Edge{
		edge("a", "c", ModeHard),
		edge("b", "c", ModeHard),
		edge("c", "d", ModeHard),
	})
	if err != nil {
		t.Fatal(err)
	}

	first := g.Snapshot().TopologicalOrder()
	second := g.Snapshot().TopologicalOrder()

	if len(first) != 4 {
		t.Fatalf("topo length = %d, want 4", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("order differs between calls: %v vs %v", first, second)
		}
	}

	pos := make(map[string]int)
	for i, n := range first {
		pos[n] = i
	}
	if pos["a"] > pos["c"] || pos["b"] > pos["c"] || pos["c"] > pos["d"] {
		t.Errorf("topological order violated: %v", first)
	}
}

func TestRemoveEdge_RestoresEligibilityAndSnapshotIsolation(t *testing.T) {
	g, _ := New([]Edge{edge("counting", "addition", ModeHard)})

	before := g.Snapshot()
	g.RemoveEdge("counting", "addition")
	after := g.Snapshot()

	// Old snapshot still sees the edge; new one does not.
	if got := before.Check("addition", nil); got.Eligible {
		t.Error("stale snapshot lost its edge")
	}
	if got := after.Check("addition", nil); !got.Eligible {
		t.Error("edge still blocking after removal")
	}
}
