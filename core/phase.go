package core

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNilChannel     = errors.New("phase driver requires both duty channels")
	ErrBadDeadTime    = errors.New("dead time must be positive")
	ErrBadMaxDuty     = errors.New("duty resolution ceiling must be positive")
	ErrValueNotFinite = errors.New("phase value is not finite")
)

// PhaseDriver converts one signed phase value into complementary duty
// cycles on the high and low side of a half bridge. The two sides are never
// commanded on together: on every switch-over the previously active side is
// driven to zero and a full dead time elapses before the opposite side is
// energized.
type PhaseDriver struct {
	high     DutyChannel
	low      DutyChannel
	max      float64
	deadTime time.Duration
	sleeper  Sleeper
}

// NewPhaseDriver creates a driver for one phase. max is the output
// resolution ceiling the duty value is quantized to (for example 65535 for
// a 16-bit PWM). A nil sleeper falls back to WallSleeper.
func NewPhaseDriver(high, low DutyChannel, max uint32, deadTime time.Duration, sleeper Sleeper) (*PhaseDriver, error) {
	if high == nil || low == nil {
		return nil, ErrNilChannel
	}
	if max == 0 {
		return nil, ErrBadMaxDuty
	}
	if deadTime <= 0 {
		return nil, ErrBadDeadTime
	}
	if sleeper == nil {
		sleeper = WallSleeper{}
	}
	return &PhaseDriver{
		high:     high,
		low:      low,
		max:      float64(max),
		deadTime: deadTime,
		sleeper:  sleeper,
	}, nil
}

// Apply drives the phase at the given value in [-1, 1]. Positive values
// energize the high side, negative the low side. A failed channel write is
// returned immediately; no retry, since a fault during switch-over is
// safety-relevant and must reach the caller unmasked.
func (p *PhaseDriver) Apply(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrValueNotFinite
	}
	if value > 1 {
		value = 1
	} else if value < -1 {
		value = -1
	}

	if value >= 0 {
		if err := p.low.SetDuty(0); err != nil {
			return err
		}
		p.sleeper.Sleep(p.deadTime)
		return p.high.SetDuty(p.quantize(value))
	}

	if err := p.high.SetDuty(0); err != nil {
		return err
	}
	p.sleeper.Sleep(p.deadTime)
	return p.low.SetDuty(p.quantize(-value))
}

// Off drives both sides of the phase to zero. Both writes are attempted
// even if the first fails. No dead time is needed to turn outputs off.
func (p *PhaseDriver) Off() error {
	errHigh := p.high.SetDuty(0)
	errLow := p.low.SetDuty(0)
	if errHigh != nil {
		return errHigh
	}
	return errLow
}

// quantize rounds a magnitude in [0, 1] to the driver's output resolution,
// so the channel receives exactly the fraction an integer duty register
// would hold.
func (p *PhaseDriver) quantize(v float64) float64 {
	return math.Round(v*p.max) / p.max
}

// DeadTime returns the configured switch-over safety margin.
func (p *PhaseDriver) DeadTime() time.Duration {
	return p.deadTime
}
