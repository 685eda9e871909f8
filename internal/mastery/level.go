package mastery

// Level is a card's position in the mastery lifecycle.
type Level string

const (
	LevelLearning  Level = "learning"
	LevelYoung     Level = "young"
	LevelMature    Level = "mature"
	LevelMaster    Level = "master"
	LevelSuspended Level = "suspended"
)

// forward is the promotion order. Suspended sits outside it.
var forward = []Level{LevelLearning, LevelYoung, LevelMature, LevelMaster}

// rank returns the position of a level in the promotion order, or -1 for
// suspended/unknown levels.
func rank(l Level) int {
	for i, v := range forward {
		if v == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is a defined level.
func (l Level) Valid() bool {
	return l == LevelSuspended || rank(l) >= 0
}

// Next returns the level one step up, and false if l has no successor
// (master, suspended, unknown).
func Next(l Level) (Level, bool) {
	r := rank(l)
	if r < 0 || r == len(forward)-1 {
		return l, false
	}
	return forward[r+1], true
}

// Previous returns the level one step down, and false if l has no
// predecessor.
func Previous(l Level) (Level, bool) {
	r := rank(l)
	if r <= 0 {
		return l, false
	}
	return forward[r-1], true
}

// Transition records a level change for event logging.
type Transition struct {
	UserID  string
	ItemID  string
	From    Level
	To      Level
	Trigger string // "gate-met", "lapse", "repeated-lapse", "suspend", "resume"
}
