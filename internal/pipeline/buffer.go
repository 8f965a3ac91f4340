package pipeline

import (
	"encoding/binary"
	"errors"
)

// ErrBufferOverflow is returned by Append when the bytes do not fit.
var ErrBufferOverflow = errors.New("transfer buffer overflow")

// TransferBuffer accumulates engine bursts until they are handed to the
// sinks. It never grows past its capacity.
type TransferBuffer struct {
	data    []byte
	samples []int16
	peak    int
}

// NewTransferBuffer returns an empty buffer holding up to capacity bytes.
func NewTransferBuffer(capacity int) *TransferBuffer {
	return &TransferBuffer{
		data:    make([]byte, 0, capacity),
		samples: make([]int16, 0, capacity/2),
	}
}

// Cap returns the capacity in bytes.
func (b *TransferBuffer) Cap() int { return cap(b.data) }

// Len returns the number of buffered bytes.
func (b *TransferBuffer) Len() int { return len(b.data) }

// Peak returns the highest fill level seen.
func (b *TransferBuffer) Peak() int { return b.peak }

// Fits reports whether n more bytes can be appended.
func (b *TransferBuffer) Fits(n int) bool {
	return len(b.data)+n <= cap(b.data)
}

// Append copies p into the buffer.
func (b *TransferBuffer) Append(p []byte) error {
	if !b.Fits(len(p)) {
		return ErrBufferOverflow
	}
	b.data = append(b.data, p...)
	if len(b.data) > b.peak {
		b.peak = len(b.data)
	}
	return nil
}

// Samples decodes the buffered bytes as little-endian 16-bit samples. The
// slice is reused by the next call.
func (b *TransferBuffer) Samples() []int16 {
	b.samples = b.samples[:0]
	for i := 0; i+1 < len(b.data); i += 2 {
		b.samples = append(b.samples, int16(binary.LittleEndian.Uint16(b.data[i:])))
	}
	return b.samples
}

// Reset empties the buffer.
func (b *TransferBuffer) Reset() {
	b.data = b.data[:0]
}
