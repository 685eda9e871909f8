package srs

import (
	"fmt"
	"time"

	"github.com/avelar/adapt/internal/config"
)

// Updater is the interval/ease update algorithm behind one review event.
// Implementations must be pure: the input scheduling is returned updated, and
// an error leaves it untouched (no partial mutation).
type Updater interface {
	// Name identifies the algorithm family ("sm2", "fsrs").
	Name() string
	// Update applies one review outcome and returns the new scheduling.
	Update(s Scheduling, r Response, now time.Time) (Scheduling, error)
}

// NewUpdater selects the configured algorithm family. The choice is made
// once at construction; callers never branch on the family again.
func NewUpdater(cfg config.SRSConfig) (Updater, error) {
	switch cfg.Algorithm {
	case "sm2":
		return NewSM2(cfg), nil
	case "fsrs":
		return NewFSRS(cfg), nil
	}
	return nil, fmt.Errorf("unknown srs algorithm %q", cfg.Algorithm)
}

func validate(r Response) error {
	if !r.Quality.Valid() {
		return &ValidationError{Field: "quality", Value: int(r.Quality), Msg: "must be on the 0-5 scale"}
	}
	if r.ResponseTimeMs < 0 {
		return &ValidationError{Field: "responseTimeMs", Value: r.ResponseTimeMs, Msg: "must be non-negative"}
	}
	return nil
}

func clampEase(e float64) float64 {
	if e < MinEase {
		return MinEase
	}
	if e > MaxEase {
		return MaxEase
	}
	return e
}

func clampInterval(days, lo, hi int) int {
	if days < lo {
		return lo
	}
	if days > hi {
		return hi
	}
	return days
}
