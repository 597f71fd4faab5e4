//go:build tinygo

// Package pca9685 drives the six half-bridge outputs through a PCA9685
// I2C PWM expander, for boards whose own PWM slices are spoken for.
package pca9685

import (
	"math"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pca9685"

	"phasedrive/core"
)

// DefaultAddress is the PCA9685 address with all address pins low.
const DefaultAddress = 0x40

// pwmPeriodNS keeps the expander near its 1.5kHz ceiling.
const pwmPeriodNS = 680000

// Board wraps one PCA9685 and hands out its outputs as duty channels.
type Board struct {
	dev pca9685.Device
}

// Open configures a PCA9685 on the given bus.
func Open(bus drivers.I2C, addr uint8) (*Board, error) {
	dev := pca9685.New(bus, addr)
	if err := dev.Configure(pca9685.PWMConfig{Period: pwmPeriodNS}); err != nil {
		return nil, err
	}
	dev.SetAll(0)
	return &Board{dev: dev}, nil
}

// Channel returns the DutyChannel for one expander output (0-15).
func (b *Board) Channel(index uint8) core.DutyChannel {
	return &expanderChannel{board: b, index: index}
}

// PhaseChannels returns outputs 0-5 in half-bridge order.
func (b *Board) PhaseChannels() core.PhaseChannels {
	return core.PhaseChannels{
		AHigh: b.Channel(0),
		ALow:  b.Channel(1),
		BHigh: b.Channel(2),
		BLow:  b.Channel(3),
		CHigh: b.Channel(4),
		CLow:  b.Channel(5),
	}
}

// AllOff zeroes every expander output with one bus transaction.
func (b *Board) AllOff() {
	b.dev.SetAll(0)
}

type expanderChannel struct {
	board *Board
	index uint8
}

func (c *expanderChannel) SetDuty(fraction float64) error {
	if math.IsNaN(fraction) {
		return core.ErrValueNotFinite
	}
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	top := c.board.dev.Top()
	c.board.dev.Set(c.index, uint32(math.Round(fraction*float64(top))))
	return nil
}
