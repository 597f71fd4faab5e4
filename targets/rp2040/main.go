//go:build rp2040 || rp2350

// On-device commutation demo: six half-bridge outputs on GP0-GP5 run a
// sine waveform, reversing direction after every full electrical cycle.
package main

import (
	"machine"
	"time"

	"phasedrive/core"
)

// Half-bridge wiring. Each phase uses one PWM slice so the high and low
// outputs share a counter: GP0/GP1 are slice 0 A/B, and so on.
var phasePins = [6]machine.Pin{
	machine.GP0, machine.GP1, // phase A high, low
	machine.GP2, machine.GP3, // phase B high, low
	machine.GP4, machine.GP5, // phase C high, low
}

const tickInterval = 10 * time.Millisecond

func main() {
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	channels, err := openPhaseChannels()
	if err != nil {
		blinkForever()
	}

	act, err := core.NewActuator(core.Config{
		StepIncrement: 0.05,
		DeadTime:      time.Microsecond,
		Max:           65535,
		Waveform:      core.NewSineWaveform(),
	}, channels)
	if err != nil {
		blinkForever()
	}

	reverseAfter := int(act.StepsPerCycle())
	act.Start()

	ticks := 0
	for {
		if err := act.Tick(); err != nil {
			act.Stop()
			blinkForever()
		}
		ticks++
		if ticks%reverseAfter == 0 {
			act.SetDirection(act.Direction().Reversed())
		}
		time.Sleep(tickInterval)
	}
}

func openPhaseChannels() (core.PhaseChannels, error) {
	var outputs [6]core.DutyChannel
	for i, pin := range phasePins {
		ch, err := NewSlicePWMChannel(pin)
		if err != nil {
			return core.PhaseChannels{}, err
		}
		outputs[i] = ch
	}
	return core.PhaseChannels{
		AHigh: outputs[0], ALow: outputs[1],
		BHigh: outputs[2], BLow: outputs[3],
		CHigh: outputs[4], CLow: outputs[5],
	}, nil
}

// blinkForever signals a fault on the onboard LED. The outputs are left
// off, so blinking is safe.
func blinkForever() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
