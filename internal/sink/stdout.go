package sink

import (
	"encoding/binary"
	"fmt"
	"io"
)

// StdoutSink writes samples as raw little-endian bytes, suitable for piping
// into tools like "play -t raw -r 16k -e signed -b 16 -c 1 -".
type StdoutSink struct {
	w       io.Writer
	scratch []byte
	written int64
}

// NewStdoutSink returns a sink writing to w.
func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

// Submit writes samples to the stream.
func (s *StdoutSink) Submit(samples []int16) error {
	s.scratch = encodePCM(s.scratch[:0], samples)
	n, err := s.w.Write(s.scratch)
	s.written += int64(n)
	if err != nil {
		return fmt.Errorf("unable to write pcm stream: %w", err)
	}
	return nil
}

// Written returns the number of bytes written so far.
func (s *StdoutSink) Written() int64 { return s.written }

// Close is a no-op; the stream belongs to the caller.
func (s *StdoutSink) Close() error { return nil }

func encodePCM(dst []byte, samples []int16) []byte {
	for _, v := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
	}
	return dst
}
