//go:build rp2040 || rp2350

package main

import (
	"machine"
	"math"

	"phasedrive/core"
)

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type so the
// channel wrapper can hold any of the eight slices.
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmPeriodNS is the PWM period in nanoseconds. 50us gives 20kHz, above
// audible range and well within the RP2040 slice counter width.
const pwmPeriodNS = 50000

// SlicePWMChannel drives one output of one RP2040 PWM slice as a
// core.DutyChannel.
type SlicePWMChannel struct {
	pwm     pwmPeripheral
	channel uint8
}

// NewSlicePWMChannel configures the pin for PWM and returns its channel.
// RP2040 maps GPIO pin N to slice (N>>1)&7; even pins are output A, odd
// pins output B.
func NewSlicePWMChannel(pin machine.Pin) (*SlicePWMChannel, error) {
	pwm := pwmPeripheralFor(uint8((uint32(pin) >> 1) & 0x7))
	if err := pwm.Configure(machine.PWMConfig{Period: pwmPeriodNS}); err != nil {
		return nil, err
	}
	channel, err := pwm.Channel(pin)
	if err != nil {
		return nil, err
	}
	ch := &SlicePWMChannel{pwm: pwm, channel: channel}
	ch.pwm.Set(channel, 0)
	return ch, nil
}

// SetDuty scales the fraction to the slice counter range.
func (c *SlicePWMChannel) SetDuty(fraction float64) error {
	if math.IsNaN(fraction) {
		return core.ErrValueNotFinite
	}
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	top := c.pwm.Top()
	c.pwm.Set(c.channel, uint32(math.Round(fraction*float64(top))))
	return nil
}

func pwmPeripheralFor(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return machine.PWM0
	}
}
