package core

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrNilWaveform = errors.New("actuator requires a waveform")

// Config holds the construction-time parameters of an Actuator.
type Config struct {
	// StepIncrement is the position change per tick, in the waveform's
	// position units. Must be positive and finite.
	StepIncrement float64

	// DeadTime is the minimum off-interval between deactivating one side
	// of a half bridge and energizing the other. Must be positive.
	DeadTime time.Duration

	// Max is the duty resolution ceiling phase values are quantized to.
	Max uint32

	// Waveform is the active commutation strategy.
	Waveform Waveform

	// Direction is the initial travel direction. Zero means Forward.
	Direction Direction

	// Sleeper realizes the dead-time wait. Nil means WallSleeper.
	Sleeper Sleeper
}

// Actuator is the commutation controller: each tick it advances the cyclic
// position, evaluates the waveform there and applies the three phase values
// to the half bridges in fixed A, B, C order.
//
// An actuator is owned by a single ticking caller. Tick, Start, Stop and
// SetDirection must not be called concurrently; the demo drivers call
// SetDirection between ticks on the same goroutine.
type Actuator struct {
	tracker   *PositionTracker
	waveform  Waveform
	phases    [3]*PhaseDriver
	outputs   [6]DutyChannel
	direction Direction
	running   bool
}

// NewActuator validates the configuration, builds the three phase drivers
// and returns an actuator in the Stopped state with all outputs driven to
// zero. Channel handles are owned by the caller and injected here; the six
// of them must all be non-nil.
func NewActuator(cfg Config, channels PhaseChannels) (*Actuator, error) {
	if cfg.Waveform == nil {
		return nil, ErrNilWaveform
	}
	dir := cfg.Direction
	if dir == 0 {
		dir = Forward
	}
	if !dir.valid() {
		return nil, ErrBadDirection
	}

	tracker, err := NewPositionTracker(cfg.Waveform.Period(), cfg.StepIncrement)
	if err != nil {
		return nil, err
	}

	a := &Actuator{
		tracker:   tracker,
		waveform:  cfg.Waveform,
		outputs:   channels.outputs(),
		direction: dir,
	}

	pairs := [3][2]DutyChannel{
		{channels.AHigh, channels.ALow},
		{channels.BHigh, channels.BLow},
		{channels.CHigh, channels.CLow},
	}
	for i, pair := range pairs {
		driver, err := NewPhaseDriver(pair[0], pair[1], cfg.Max, cfg.DeadTime, cfg.Sleeper)
		if err != nil {
			return nil, fmt.Errorf("phase %c: %w", 'A'+i, err)
		}
		a.phases[i] = driver
	}

	if err := a.allOff(); err != nil {
		return nil, err
	}
	return a, nil
}

// Start moves the actuator from Stopped to Running. Ticks issued before
// Start only re-assert all outputs off.
func (a *Actuator) Start() {
	a.running = true
}

// Stop moves the actuator to Stopped and immediately drives all six outputs
// to zero. It is idempotent and always safe to call, including after an
// output fault; the stop takes effect at the next tick boundary, never
// mid-tick.
func (a *Actuator) Stop() error {
	a.running = false
	return a.allOff()
}

// Tick advances one control step: step the position in the current
// direction, evaluate the waveform there, and apply the resulting values to
// phases A, B and C in that order. While stopped, Tick re-asserts all
// outputs off instead. The first failing output write aborts the tick and
// is returned; the recommended caller response is Stop().
func (a *Actuator) Tick() error {
	if !a.running {
		return a.allOff()
	}

	pos := a.tracker.Advance(a.direction)
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return ErrPositionCorrupt
	}
	va, vb, vc := a.waveform.ValuesAt(pos, a.direction)

	for i, v := range [3]float64{va, vb, vc} {
		if err := a.phases[i].Apply(v); err != nil {
			return fmt.Errorf("phase %c: %w", 'A'+i, err)
		}
	}
	return nil
}

// SetDirection changes the travel direction, taking effect on the next
// tick.
func (a *Actuator) SetDirection(d Direction) error {
	if !d.valid() {
		return ErrBadDirection
	}
	a.direction = d
	return nil
}

// Direction returns the current travel direction.
func (a *Actuator) Direction() Direction {
	return a.direction
}

// Running reports whether the actuator is in the Running state.
func (a *Actuator) Running() bool {
	return a.running
}

// Position returns the current cyclic position in waveform units.
func (a *Actuator) Position() float64 {
	return a.tracker.Position()
}

// StepsPerCycle returns the number of ticks in one full electrical cycle,
// for callers that schedule direction reversal in cycle multiples.
func (a *Actuator) StepsPerCycle() float64 {
	return a.tracker.StepsPerCycle()
}

// allOff drives all six half-bridge outputs to zero, in the fixed order
// A high, A low, B high, B low, C high, C low. Every write is attempted
// even after a failure so no output is left energized behind a fault; the
// first error is returned.
func (a *Actuator) allOff() error {
	var first error
	for _, ch := range a.outputs {
		if ch == nil {
			if first == nil {
				first = ErrNilChannel
			}
			continue
		}
		if err := ch.SetDuty(0); err != nil && first == nil {
			first = err
		}
	}
	return first
}
