package depgraph

import (
	"fmt"
	"strings"

	"github.com/avelar/adapt/internal/mastery"
)

// Snapshot is an immutable read view of the graph. It is safe for concurrent
// use without locking; the owning Graph replaces it wholesale on edit.
type Snapshot struct {
	prereqsOf    map[string][]Edge
	dependentsOf map[string][]string
	nodes        map[string]bool
	topo         []string
}

// Eligibility is the outcome of a prerequisite check for one topic.
type Eligibility struct {
	Eligible bool
	// BlockedBy names the hard prerequisites below their required level.
	BlockedBy []string
	// SoftUnmet counts soft prerequisites below their required level;
	// these deprioritize the topic in ranking rather than exclude it.
	SoftUnmet int
}

// Reason renders a human-readable blocking explanation.
func (e Eligibility) Reason() string {
	if e.Eligible {
		if e.SoftUnmet > 0 {
			return fmt.Sprintf("eligible with %d unmet soft prerequisite(s)", e.SoftUnmet)
		}
		return "eligible"
	}
	return "blocked by unmet hard prerequisite(s): " + strings.Join(e.BlockedBy, ", ")
}

// Check evaluates the prerequisites of a topic against the learner's
// per-topic mastery levels. Topics absent from levels count as learning.
func (s *Snapshot) Check(topic string, levels map[string]mastery.Level) Eligibility {
	var out Eligibility
	out.Eligible = true

	for _, e := range s.prereqsOf[topic] {
		level, ok := levels[e.Prereq]
		if !ok {
			level = mastery.LevelLearning
		}
		if meetsThreshold(level, e.MinLevel) {
			continue
		}
		switch e.Mode {
		case ModeHard:
			out.Eligible = false
			out.BlockedBy = append(out.BlockedBy, e.Prereq)
		default:
			out.SoftUnmet++
		}
	}
	return out
}

// Prereqs returns the prerequisite edges of a topic.
func (s *Snapshot) Prereqs(topic string) []Edge {
	return s.prereqsOf[topic]
}

// Dependents returns topics that directly depend on the given topic.
func (s *Snapshot) Dependents(topic string) []string {
	return s.dependentsOf[topic]
}

// TopologicalOrder returns every known topic in dependency order,
// deterministic across calls.
func (s *Snapshot) TopologicalOrder() []string {
	out := make([]string, len(s.topo))
	copy(out, s.topo)
	return out
}

// Contains reports whether the topic appears in any edge.
func (s *Snapshot) Contains(topic string) bool {
	return s.nodes[topic]
}

// meetsThreshold compares levels on the promotion order. Suspended never
// satisfies a threshold.
func meetsThreshold(have, want mastery.Level) bool {
	order := map[mastery.Level]int{
		mastery.LevelLearning: 0,
		mastery.LevelYoung:    1,
		mastery.LevelMature:   2,
		mastery.LevelMaster:   3,
	}
	h, hok := order[have]
	w, wok := order[want]
	if !hok || !wok {
		return false
	}
	return h >= w
}
