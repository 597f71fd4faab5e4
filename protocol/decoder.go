package protocol

// Decoder reassembles frames from a byte stream. Feed it raw reads with
// Push and drain complete frames with Next. Corrupt data between sync
// bytes is skipped rather than surfaced, matching how a firmware node
// treats line noise.
type Decoder struct {
	fifo *FifoBuffer
}

// NewDecoder creates a Decoder with room for several frames of backlog.
func NewDecoder() *Decoder {
	return &Decoder{fifo: NewFifoBuffer(4 * MessageMax)}
}

// Push buffers incoming bytes, returning how many were accepted.
func (d *Decoder) Push(data []byte) int {
	return d.fifo.Write(data)
}

// Next returns the next complete frame, or nil when more bytes are needed.
func (d *Decoder) Next() *Frame {
	for {
		data := d.fifo.Data()
		if len(data) == 0 {
			return nil
		}
		frame, consumed, err := ParseFrame(data)
		if err == nil {
			d.fifo.Pop(consumed)
			return frame
		}
		if err == ErrShortFrame {
			// Discard leading sync padding so it cannot pile up.
			d.fifo.Pop(consumed)
			return nil
		}
		// Bad length, sequence, sync or CRC. Every frame ends with a
		// sync byte, so skipping to the next one realigns the stream
		// at a frame boundary.
		next := consumed + 1
		for next < len(data) && data[next] != MessageSyncByte {
			next++
		}
		if next < len(data) {
			next++ // consume the sync itself
		}
		d.fifo.Pop(next)
	}
}
