package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

type testRig struct {
	actuator *Actuator
	channels [6]*mockChannel
	log      *eventLog
}

// newTestRig builds an actuator over six mock channels with a
// no-op sleeper. The default waveform is sine over 2π with the original
// demo's 0.05 step increment.
func newTestRig(t *testing.T, cfg Config) *testRig {
	t.Helper()

	log := &eventLog{}
	names := []string{"AH", "AL", "BH", "BL", "CH", "CL"}
	var channels [6]*mockChannel
	for i, name := range names {
		channels[i] = &mockChannel{log: log, name: name}
	}

	if cfg.Waveform == nil {
		cfg.Waveform = NewSineWaveform()
	}
	if cfg.StepIncrement == 0 {
		cfg.StepIncrement = 0.05
	}
	if cfg.DeadTime == 0 {
		cfg.DeadTime = time.Microsecond
	}
	if cfg.Max == 0 {
		cfg.Max = 100
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = &mockSleeper{log: log}
	}

	actuator, err := NewActuator(cfg, PhaseChannels{
		AHigh: channels[0], ALow: channels[1],
		BHigh: channels[2], BLow: channels[3],
		CHigh: channels[4], CLow: channels[5],
	})
	if err != nil {
		t.Fatalf("NewActuator: %v", err)
	}
	// Discard construction-time all-off events.
	log.events = nil
	return &testRig{actuator: actuator, channels: channels, log: log}
}

func (r *testRig) assertAllOff(t *testing.T) {
	t.Helper()
	for _, ch := range r.channels {
		if ch.duty != 0 {
			t.Errorf("expected channel %s at zero duty, got %g", ch.name, ch.duty)
		}
	}
}

func TestNewActuatorValidation(t *testing.T) {
	ch := &mockChannel{}
	channels := PhaseChannels{AHigh: ch, ALow: ch, BHigh: ch, BLow: ch, CHigh: ch, CLow: ch}

	testCases := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			"nil waveform",
			Config{StepIncrement: 0.05, DeadTime: time.Microsecond, Max: 100},
			ErrNilWaveform,
		},
		{
			"zero step increment",
			Config{Waveform: NewSineWaveform(), DeadTime: time.Microsecond, Max: 100},
			ErrBadIncrement,
		},
		{
			"NaN step increment",
			Config{Waveform: NewSineWaveform(), StepIncrement: math.NaN(), DeadTime: time.Microsecond, Max: 100},
			ErrBadIncrement,
		},
		{
			"zero dead time",
			Config{Waveform: NewSineWaveform(), StepIncrement: 0.05, Max: 100},
			ErrBadDeadTime,
		},
		{
			"zero max",
			Config{Waveform: NewSineWaveform(), StepIncrement: 0.05, DeadTime: time.Microsecond},
			ErrBadMaxDuty,
		},
		{
			"invalid direction",
			Config{Waveform: NewSineWaveform(), StepIncrement: 0.05, DeadTime: time.Microsecond, Max: 100, Direction: 3},
			ErrBadDirection,
		},
	}

	for _, tc := range testCases {
		_, err := NewActuator(tc.cfg, channels)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}

	// A missing channel fails construction too.
	incomplete := channels
	incomplete.BLow = nil
	cfg := Config{Waveform: NewSineWaveform(), StepIncrement: 0.05, DeadTime: time.Microsecond, Max: 100}
	if _, err := NewActuator(cfg, incomplete); !errors.Is(err, ErrNilChannel) {
		t.Errorf("nil channel: expected ErrNilChannel, got %v", err)
	}
}

func TestConstructionLeavesOutputsOff(t *testing.T) {
	log := &eventLog{}
	var channels [6]*mockChannel
	names := []string{"AH", "AL", "BH", "BL", "CH", "CL"}
	for i, name := range names {
		channels[i] = &mockChannel{log: log, name: name, duty: 0.7}
	}

	cfg := Config{Waveform: NewSineWaveform(), StepIncrement: 0.05, DeadTime: time.Microsecond, Max: 100, Sleeper: &mockSleeper{}}
	actuator, err := NewActuator(cfg, PhaseChannels{
		AHigh: channels[0], ALow: channels[1],
		BHigh: channels[2], BLow: channels[3],
		CHigh: channels[4], CLow: channels[5],
	})
	if err != nil {
		t.Fatalf("NewActuator: %v", err)
	}
	if actuator.Running() {
		t.Error("expected initial state Stopped")
	}
	for _, ch := range channels {
		if ch.duty != 0 {
			t.Errorf("channel %s not zeroed at construction: %g", ch.name, ch.duty)
		}
	}
}

func TestTickWhileStoppedReassertsOff(t *testing.T) {
	rig := newTestRig(t, Config{})

	rig.channels[2].duty = 0.9 // disturb one output behind the engine's back
	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick while stopped: %v", err)
	}
	rig.assertAllOff(t)

	if got := rig.actuator.Position(); got != 0 {
		t.Errorf("stopped Tick must not advance position, got %g", got)
	}
}

func TestStopIdempotent(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.actuator.Start()
	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := rig.actuator.Stop(); err != nil {
			t.Fatalf("Stop %d: %v", i, err)
		}
		rig.assertAllOff(t)
	}
	if rig.actuator.Running() {
		t.Error("expected Stopped after Stop")
	}
}

func TestTickAppliesWaveform(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.actuator.Start()

	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if got := rig.actuator.Position(); math.Abs(got-0.05) > 1e-12 {
		t.Fatalf("expected position 0.05 after one tick, got %g", got)
	}

	a := math.Cos(0.05)
	b := math.Cos(0.05 - phaseOffset)
	c := math.Cos(0.05 + phaseOffset)

	// a > 0: high side carries it; b, c < 0: low sides carry them.
	quantized := func(v float64) float64 { return math.Round(v*100) / 100 }
	if got := rig.channels[0].duty; math.Abs(got-quantized(a)) > 1e-12 {
		t.Errorf("AH duty: expected %g, got %g", quantized(a), got)
	}
	if got := rig.channels[3].duty; math.Abs(got-quantized(-b)) > 1e-12 {
		t.Errorf("BL duty: expected %g, got %g", quantized(-b), got)
	}
	if got := rig.channels[5].duty; math.Abs(got-quantized(-c)) > 1e-12 {
		t.Errorf("CL duty: expected %g, got %g", quantized(-c), got)
	}
	if rig.channels[1].duty != 0 || rig.channels[2].duty != 0 || rig.channels[4].duty != 0 {
		t.Error("inactive sides must be at zero duty")
	}
}

func TestTickPhaseOrder(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.actuator.Start()

	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	// Within one tick the updates are observable in A, B, C order.
	var phases []byte
	for _, e := range rig.log.events {
		if e != "sleep" {
			phases = append(phases, e[0])
		}
	}
	want := "AABBCC"
	if string(phases) != want {
		t.Errorf("expected phase update order %q, got %q (events %v)", want, phases, rig.log.events)
	}
}

func TestFullDriveAtCycleBoundary(t *testing.T) {
	// With the step increment equal to one full cycle, every tick lands
	// on θ = 0: phase A at full high-side duty, B and C at half low-side
	// duty.
	rig := newTestRig(t, Config{StepIncrement: 2 * math.Pi})
	rig.actuator.Start()

	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if got := rig.channels[0].duty; got != 1 {
		t.Errorf("AH: expected full duty, got %g", got)
	}
	if got := rig.channels[1].duty; got != 0 {
		t.Errorf("AL: expected 0, got %g", got)
	}
	for _, i := range []int{3, 5} {
		if got := rig.channels[i].duty; got != 0.5 {
			t.Errorf("%s: expected half duty, got %g", rig.channels[i].name, got)
		}
	}
	for _, i := range []int{2, 4} {
		if got := rig.channels[i].duty; got != 0 {
			t.Errorf("%s: expected 0, got %g", rig.channels[i].name, got)
		}
	}
}

func TestSetDirection(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.actuator.Start()

	if err := rig.actuator.SetDirection(Backward); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	want := Normalize(-0.05, 2*math.Pi)
	if got := rig.actuator.Position(); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected position %g after backward tick, got %g", want, got)
	}

	if err := rig.actuator.SetDirection(0); err != ErrBadDirection {
		t.Errorf("SetDirection(0): expected ErrBadDirection, got %v", err)
	}
	if got := rig.actuator.Direction(); got != Backward {
		t.Errorf("rejected direction must not change state, got %v", got)
	}
}

func TestTickFaultPropagation(t *testing.T) {
	fault := errors.New("channel unavailable")
	rig := newTestRig(t, Config{})
	rig.actuator.Start()

	rig.channels[3].err = fault // phase B low side
	err := rig.actuator.Tick()
	if !errors.Is(err, fault) {
		t.Fatalf("expected fault to propagate from Tick, got %v", err)
	}
	if !strings.Contains(err.Error(), "phase B") {
		t.Errorf("expected fault to name the phase, got %q", err)
	}

	// Stop stays safe after a fault: the faulted channel still errors,
	// but every other output is forced off.
	stopErr := rig.actuator.Stop()
	if !errors.Is(stopErr, fault) {
		t.Errorf("expected Stop to surface the persisting fault, got %v", stopErr)
	}
	for i, ch := range rig.channels {
		if i == 3 {
			continue
		}
		if ch.duty != 0 {
			t.Errorf("channel %s not zeroed by Stop after fault: %g", ch.name, ch.duty)
		}
	}
	if rig.actuator.Running() {
		t.Error("expected Stopped after Stop")
	}
}

func TestTableDrivenActuator(t *testing.T) {
	table, err := NewTableWaveform(DefaultStepTable)
	if err != nil {
		t.Fatalf("NewTableWaveform: %v", err)
	}
	rig := newTestRig(t, Config{Waveform: table, StepIncrement: 0.1})
	rig.actuator.Start()

	// One tick lands at position 0.1: phase A interpolates rows 0→1 to
	// 27.5%, phase C to -72.5%.
	if err := rig.actuator.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := rig.channels[0].duty; math.Abs(got-0.28) > 1e-12 {
		t.Errorf("AH duty: expected 0.28 (27.5%% quantized to 1/100), got %g", got)
	}
	if got := rig.channels[5].duty; math.Abs(got-0.73) > 1e-12 {
		t.Errorf("CL duty: expected 0.73 (72.5%% quantized to 1/100), got %g", got)
	}

	if got := rig.actuator.StepsPerCycle(); math.Abs(got-240) > 1e-9 {
		t.Errorf("StepsPerCycle: expected 240, got %g", got)
	}
}
