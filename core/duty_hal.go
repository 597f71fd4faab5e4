package core

import "time"

// DutyChannel is the abstract PWM output interface that core code drives.
// Platform-specific implementations (RP2040 PWM slices, PCA9685 expander,
// serial duty bridge) handle actual hardware control.
type DutyChannel interface {
	// SetDuty sets the channel's on-time fraction, 0.0 (fully off) to
	// 1.0 (fully on). A failed hardware write is returned to the caller
	// and must not be retried here.
	SetDuty(fraction float64) error
}

// Sleeper realizes the dead-time wait between switching the two sides of a
// half bridge. The contract is only that the call does not return before the
// duration has elapsed; a cooperative runtime may suspend instead of
// blocking a thread.
type Sleeper interface {
	Sleep(d time.Duration)
}

// WallSleeper is the default Sleeper, backed by time.Sleep.
type WallSleeper struct{}

func (WallSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}

// PhaseChannels bundles the six half-bridge outputs of a three-phase
// actuator. The caller owns the channels and passes them in; core code
// never reaches for global pin state.
type PhaseChannels struct {
	AHigh, ALow DutyChannel
	BHigh, BLow DutyChannel
	CHigh, CLow DutyChannel
}

// outputs returns the channels in the fixed all-off ordering
// (A high, A low, B high, B low, C high, C low).
func (c PhaseChannels) outputs() [6]DutyChannel {
	return [6]DutyChannel{c.AHigh, c.ALow, c.BHigh, c.BLow, c.CHigh, c.CLow}
}
