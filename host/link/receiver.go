package link

import (
	"errors"
	"fmt"

	"phasedrive/core"
	"phasedrive/protocol"
)

var ErrReceiverStalled = errors.New("link: receiver buffer full with no complete frame")

// Receiver is the board side of the duty bridge: it reassembles frames
// from raw reads and applies decoded commands to local outputs.
type Receiver struct {
	decoder  *protocol.Decoder
	channels [protocol.NumChannels]core.DutyChannel
}

// NewReceiver creates a Receiver driving the given outputs.
func NewReceiver(channels core.PhaseChannels) (*Receiver, error) {
	outputs := [protocol.NumChannels]core.DutyChannel{
		channels.AHigh, channels.ALow,
		channels.BHigh, channels.BLow,
		channels.CHigh, channels.CLow,
	}
	for i, ch := range outputs {
		if ch == nil {
			return nil, fmt.Errorf("link receiver channel %d: %w", i, core.ErrNilChannel)
		}
	}
	return &Receiver{
		decoder:  protocol.NewDecoder(),
		channels: outputs,
	}, nil
}

// Feed pushes raw serial bytes and dispatches every complete frame found.
// A read burst larger than the decoder's backlog is pushed in slices,
// draining frames between pushes, so no bytes are ever dropped. The first
// dispatch error stops processing and is returned.
func (r *Receiver) Feed(data []byte) error {
	stalled := false
	for len(data) > 0 {
		n := r.decoder.Push(data)
		data = data[n:]
		if err := r.drainFrames(); err != nil {
			return err
		}
		if n > 0 {
			stalled = false
			continue
		}
		// Nothing was accepted; the drain above is the only way space
		// can free up. A second zero-progress round means the backlog
		// holds no frame boundary the decoder can advance past.
		if stalled {
			return ErrReceiverStalled
		}
		stalled = true
	}
	return nil
}

func (r *Receiver) drainFrames() error {
	for {
		frame := r.decoder.Next()
		if frame == nil {
			return nil
		}
		if err := r.dispatch(frame.Payload); err != nil {
			return err
		}
	}
}

func (r *Receiver) dispatch(payload []byte) error {
	for len(payload) > 0 {
		cmd, err := protocol.DecodeCommand(&payload)
		if err != nil {
			return err
		}
		switch cmd.ID {
		case protocol.CmdSetDuty:
			fraction := float64(cmd.Duty) / float64(protocol.DutyScale)
			if err := r.channels[cmd.Channel].SetDuty(fraction); err != nil {
				return fmt.Errorf("channel %d: %w", cmd.Channel, err)
			}
		case protocol.CmdAllOff:
			for i, ch := range r.channels {
				if err := ch.SetDuty(0); err != nil {
					return fmt.Errorf("channel %d: %w", i, err)
				}
			}
		}
	}
	return nil
}
