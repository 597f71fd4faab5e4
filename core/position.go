package core

import (
	"errors"
	"math"
)

var (
	ErrBadPeriod       = errors.New("cycle period must be a positive finite number")
	ErrBadIncrement    = errors.New("step increment must be a positive finite number")
	ErrBadDirection    = errors.New("direction must be forward or backward")
	ErrPositionCorrupt = errors.New("cycle position is not finite")
)

// PositionTracker owns the current cyclic position within one electrical
// cycle. The position is continuous, not quantized: a step increment that
// does not evenly divide the period simply leaves the position at a
// fractional point, which the waveform strategies handle by interpolation.
//
// A tracker is owned by exactly one ticking caller; it is not safe for
// concurrent mutation.
type PositionTracker struct {
	period    float64
	increment float64
	position  float64
}

// NewPositionTracker creates a tracker for one electrical cycle of the given
// period (2π for angle-based waveforms, 360 for degree-based, N for an
// N-entry table). The increment is the magnitude of position change per tick.
func NewPositionTracker(period, increment float64) (*PositionTracker, error) {
	if math.IsNaN(period) || math.IsInf(period, 0) || period <= 0 {
		return nil, ErrBadPeriod
	}
	if math.IsNaN(increment) || math.IsInf(increment, 0) || increment <= 0 {
		return nil, ErrBadIncrement
	}
	return &PositionTracker{period: period, increment: increment}, nil
}

// Advance moves the position one step increment in the given direction and
// wraps it back into [0, period). It returns the new position.
func (t *PositionTracker) Advance(dir Direction) float64 {
	if dir == Backward {
		t.position -= t.increment
	} else {
		t.position += t.increment
	}
	t.position = Normalize(t.position, t.period)
	return t.position
}

// Position returns the current cyclic position, always in [0, period).
func (t *PositionTracker) Position() float64 {
	return t.position
}

// Period returns the length of one electrical cycle in position units.
func (t *PositionTracker) Period() float64 {
	return t.period
}

// Increment returns the configured per-tick step magnitude.
func (t *PositionTracker) Increment() float64 {
	return t.increment
}

// StepsPerCycle returns how many ticks cover one full electrical cycle.
// The result is fractional when the increment does not divide the period.
func (t *PositionTracker) StepsPerCycle() float64 {
	return t.period / t.increment
}

// Normalize wraps x into [0, period). For any finite x the result is
// congruent to x modulo the period.
func Normalize(x, period float64) float64 {
	r := math.Mod(x, period)
	if r < 0 {
		r += period
	}
	// A tiny negative remainder can round up to exactly one period.
	if r >= period {
		r = 0
	}
	return r
}
