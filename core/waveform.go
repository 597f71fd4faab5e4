package core

import (
	"errors"
	"math"
)

// phaseOffset separates the three drive waveforms by 120 degrees.
const phaseOffset = 2 * math.Pi / 3

var ErrBadUnitsPerCycle = errors.New("units per cycle must be a positive finite number")

// Waveform maps a cyclic position to the three phase drive values. Both
// strategies expose the same contract: position in [0, Period()) in, three
// values in [-1, 1] out. The direction only matters to the table strategy,
// which brackets its interpolation toward the next entry in the direction
// of travel.
type Waveform interface {
	// Period returns the length of one electrical cycle in the position
	// units this waveform expects.
	Period() float64

	// ValuesAt returns the phase A, B and C drive values at the given
	// position. Pure; no failure conditions.
	ValuesAt(position float64, dir Direction) (a, b, c float64)
}

// SineWaveform produces balanced three-phase excitation directly from the
// cosine function: three waves 120 degrees apart, each in [-1, 1]. It is
// stateless and total over all real positions.
type SineWaveform struct {
	unitsPerCycle float64
}

// NewSineWaveform returns a sine waveform addressed in radians
// (one electrical cycle per 2π).
func NewSineWaveform() *SineWaveform {
	return &SineWaveform{unitsPerCycle: 2 * math.Pi}
}

// NewDegreeSineWaveform returns a sine waveform addressed in degrees
// (one electrical cycle per 360).
func NewDegreeSineWaveform() *SineWaveform {
	return &SineWaveform{unitsPerCycle: 360}
}

// NewSineWaveformUnits returns a sine waveform with a caller-chosen number
// of position units per electrical cycle.
func NewSineWaveformUnits(unitsPerCycle float64) (*SineWaveform, error) {
	if math.IsNaN(unitsPerCycle) || math.IsInf(unitsPerCycle, 0) || unitsPerCycle <= 0 {
		return nil, ErrBadUnitsPerCycle
	}
	return &SineWaveform{unitsPerCycle: unitsPerCycle}, nil
}

func (w *SineWaveform) Period() float64 {
	return w.unitsPerCycle
}

func (w *SineWaveform) ValuesAt(position float64, _ Direction) (a, b, c float64) {
	theta := position * (2 * math.Pi / w.unitsPerCycle)
	a = math.Cos(theta)
	b = math.Cos(theta - phaseOffset)
	c = math.Cos(theta + phaseOffset)
	return a, b, c
}
