// Package link carries duty commands between a host and an actuator
// board. The Bridge side turns local DutyChannel writes into wire frames;
// the Receiver side decodes frames and applies them to real outputs.
package link

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"phasedrive/core"
	"phasedrive/protocol"
)

var ErrNilWriter = errors.New("link: writer cannot be nil")

// Bridge encodes duty updates as frames on a serial link. It exposes one
// DutyChannel per remote output so a local Actuator can drive a remote
// board without knowing about the wire format.
type Bridge struct {
	mu  sync.Mutex
	w   io.Writer
	seq uint8
}

// NewBridge creates a Bridge writing frames to w.
func NewBridge(w io.Writer) (*Bridge, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	return &Bridge{w: w, seq: protocol.FirstSequence}, nil
}

// Channel returns the DutyChannel for one remote output index.
func (b *Bridge) Channel(index uint8) core.DutyChannel {
	return &remoteChannel{bridge: b, index: index}
}

// PhaseChannels returns the six remote outputs in half-bridge order.
func (b *Bridge) PhaseChannels() core.PhaseChannels {
	return core.PhaseChannels{
		AHigh: b.Channel(0),
		ALow:  b.Channel(1),
		BHigh: b.Channel(2),
		BLow:  b.Channel(3),
		CHigh: b.Channel(4),
		CLow:  b.Channel(5),
	}
}

// AllOff sends a single frame forcing every remote output to zero.
func (b *Bridge) AllOff() error {
	scratch := protocol.NewScratchOutput()
	protocol.AppendAllOff(scratch)
	return b.send(scratch.Result())
}

func (b *Bridge) send(payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	frame, err := protocol.EncodeFrame(b.seq, payload)
	if err != nil {
		return err
	}
	if _, err := b.w.Write(frame); err != nil {
		return fmt.Errorf("link write: %w", err)
	}
	b.seq = protocol.NextSequence(b.seq)
	return nil
}

type remoteChannel struct {
	bridge *Bridge
	index  uint8
}

// SetDuty scales the fraction to wire resolution and sends one set-duty
// frame. The fraction is clamped to [0, 1] so a rounding excursion on the
// caller's side cannot produce an invalid command.
func (c *remoteChannel) SetDuty(fraction float64) error {
	if math.IsNaN(fraction) {
		return fmt.Errorf("link channel %d: duty is NaN", c.index)
	}
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	duty := uint32(math.Round(fraction * float64(protocol.DutyScale)))

	scratch := protocol.NewScratchOutput()
	protocol.AppendSetDuty(scratch, c.index, duty)
	return c.bridge.send(scratch.Result())
}
