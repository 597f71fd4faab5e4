// Package protocol implements the framed serial protocol of the duty
// bridge: the link a host uses to drive the six half-bridge PWM outputs of
// a remote three-phase actuator board.
//
// Every frame has a two-byte header (length, sequence), a VLQ-encoded
// command payload, and a three-byte trailer (CRC16 over header+payload,
// then a sync byte). The sequence byte carries a 4-bit counter in its low
// nibble and a fixed destination marker in its high nibble.
package protocol

import "errors"

// Version identifies the duty bridge protocol revision.
const Version = "0.1.0"

// Frame layout constants.
const (
	MessageMax         = 64 // largest frame on the wire
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageSyncByte    = 0x7E
	MessageSeqMask     = 0x0F
	MessageDest        = 0x10
)

var (
	ErrFrameTooLarge = errors.New("frame exceeds maximum message size")
	ErrShortFrame    = errors.New("incomplete frame")
	ErrBadLength     = errors.New("frame length out of range")
	ErrBadSequence   = errors.New("frame sequence has wrong destination bits")
	ErrBadSync       = errors.New("frame missing trailing sync byte")
	ErrBadCRC        = errors.New("frame CRC mismatch")
)

// Frame is one parsed message block.
type Frame struct {
	Sequence uint8
	Payload  []byte
}

// FirstSequence is the sequence value of the first frame on a fresh link.
const FirstSequence = MessageDest

// NextSequence advances the 4-bit sequence counter, keeping the
// destination bits intact.
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}

// EncodeFrame wraps a command payload into a complete wire frame.
func EncodeFrame(seq uint8, payload []byte) ([]byte, error) {
	total := MessageHeaderSize + len(payload) + MessageTrailerSize
	if total > MessageMax {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, total)
	frame[MessagePositionLen] = byte(total)
	frame[MessagePositionSeq] = seq
	copy(frame[MessageHeaderSize:], payload)

	crc := CRC16(frame[:total-MessageTrailerSize])
	frame[total-3] = byte(crc >> 8)
	frame[total-2] = byte(crc)
	frame[total-1] = MessageSyncByte
	return frame, nil
}

// ParseFrame parses the first complete frame at the start of data. It
// returns the frame and the number of bytes consumed. Leading sync bytes
// are skipped. ErrShortFrame means more data is needed; any other error
// means the stream is corrupt at the reported offset and the caller should
// resynchronize on the next sync byte.
func ParseFrame(data []byte) (*Frame, int, error) {
	skipped := 0
	for skipped < len(data) && data[skipped] == MessageSyncByte {
		skipped++
	}
	data = data[skipped:]

	if len(data) < MessageLengthMin {
		return nil, skipped, ErrShortFrame
	}

	total := int(data[MessagePositionLen])
	if total < MessageLengthMin || total > MessageMax {
		return nil, skipped, ErrBadLength
	}

	seq := data[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return nil, skipped, ErrBadSequence
	}

	if len(data) < total {
		return nil, skipped, ErrShortFrame
	}

	if data[total-1] != MessageSyncByte {
		return nil, skipped, ErrBadSync
	}

	wireCRC := uint16(data[total-3])<<8 | uint16(data[total-2])
	if wireCRC != CRC16(data[:total-MessageTrailerSize]) {
		return nil, skipped, ErrBadCRC
	}

	payload := make([]byte, total-MessageHeaderSize-MessageTrailerSize)
	copy(payload, data[MessageHeaderSize:total-MessageTrailerSize])

	return &Frame{Sequence: seq, Payload: payload}, skipped + total, nil
}
