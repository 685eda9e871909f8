package mastery

import "github.com/avelar/adapt/internal/config"

// Machine gates level transitions. Interval arithmetic never promotes a card
// by itself: each forward step requires the minimum-review, accuracy, streak,
// and interval conditions to hold at the same time, and a card advances at
// most one level per evaluation.
type Machine struct {
	cfg config.MasteryConfig
}

// NewMachine creates a Machine with the given gate configuration.
func NewMachine(cfg config.MasteryConfig) *Machine {
	return &Machine{cfg: cfg}
}

// Progress is the evidence the machine evaluates gates against.
type Progress struct {
	TotalReviews int
	Accuracy     float64
	Streak       int
	IntervalDays int
}

// gateFor returns the gate guarding promotion INTO the given level.
func (m *Machine) gateFor(target Level) (config.LevelGate, bool) {
	switch target {
	case LevelYoung:
		return m.cfg.ToYoung, true
	case LevelMature:
		return m.cfg.ToMature, true
	case LevelMaster:
		return m.cfg.ToMaster, true
	}
	return config.LevelGate{}, false
}

func gateMet(g config.LevelGate, p Progress) bool {
	return p.TotalReviews >= g.MinReviews &&
		p.Accuracy >= g.MinAccuracy &&
		p.Streak >= g.MinStreak &&
		p.IntervalDays >= g.MinIntervalDays
}

// Advance returns the promoted level if the gate into the next level is met.
// Suspended cards never advance. The bool reports whether a change occurred.
func (m *Machine) Advance(current Level, p Progress) (Level, bool) {
	next, ok := Next(current)
	if !ok {
		return current, false
	}
	gate, ok := m.gateFor(next)
	if !ok {
		return current, false
	}
	if !gateMet(gate, p) {
		return current, false
	}
	return next, true
}

// RegressOnLapse applies the lapse regression rule: a single lapse steps a
// card down only when it sits above young; young regresses to learning only
// after repeated lapses.
func (m *Machine) RegressOnLapse(current Level, consecutiveLapses int) (Level, bool) {
	switch {
	case rank(current) > rank(LevelYoung):
		prev, _ := Previous(current)
		return prev, true
	case current == LevelYoung && consecutiveLapses >= 2:
		return LevelLearning, true
	}
	return current, false
}

// Suspend moves any level to suspended. Suspending a suspended card is a
// no-op.
func Suspend(current Level) (Level, bool) {
	if current == LevelSuspended {
		return current, false
	}
	return LevelSuspended, true
}

// Resume returns a suspended card to learning; progress is re-proven through
// the gates rather than restored.
func Resume(current Level) (Level, bool) {
	if current != LevelSuspended {
		return current, false
	}
	return LevelLearning, true
}
