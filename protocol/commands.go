package protocol

import "errors"

// Command identifiers carried as the first VLQ of every payload.
const (
	// CmdSetDuty sets one output channel: [id, channel, duty].
	CmdSetDuty uint32 = 1
	// CmdAllOff forces all outputs to zero: [id].
	CmdAllOff uint32 = 2
)

const (
	// DutyScale is full-scale duty on the wire. A duty of DutyScale means
	// fully on, 0 means off.
	DutyScale uint32 = 65535
	// NumChannels is the number of addressable outputs: high and low side
	// for each of three phases, in order AH, AL, BH, BL, CH, CL.
	NumChannels = 6
)

var (
	ErrUnknownCommand = errors.New("protocol: unknown command id")
	ErrBadChannel     = errors.New("protocol: channel out of range")
	ErrBadDuty        = errors.New("protocol: duty exceeds full scale")
)

// Command is one decoded payload command.
type Command struct {
	ID      uint32
	Channel uint8
	Duty    uint32
}

// AppendSetDuty encodes a set-duty command onto output.
func AppendSetDuty(output OutputBuffer, channel uint8, duty uint32) {
	EncodeVLQUint(output, CmdSetDuty)
	EncodeVLQUint(output, uint32(channel))
	EncodeVLQUint(output, duty)
}

// AppendAllOff encodes an all-off command onto output.
func AppendAllOff(output OutputBuffer) {
	EncodeVLQUint(output, CmdAllOff)
}

// DecodeCommand consumes one command from data, advancing the slice past
// the bytes it read.
func DecodeCommand(data *[]byte) (Command, error) {
	id, err := DecodeVLQUint(data)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{ID: id}
	switch id {
	case CmdSetDuty:
		ch, err := DecodeVLQUint(data)
		if err != nil {
			return Command{}, err
		}
		if ch >= NumChannels {
			return Command{}, ErrBadChannel
		}
		duty, err := DecodeVLQUint(data)
		if err != nil {
			return Command{}, err
		}
		if duty > DutyScale {
			return Command{}, ErrBadDuty
		}
		cmd.Channel = uint8(ch)
		cmd.Duty = duty
	case CmdAllOff:
	default:
		return Command{}, ErrUnknownCommand
	}
	return cmd, nil
}
