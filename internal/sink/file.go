package sink

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mitchellh/go-homedir"
)

const (
	bitDepth     = 16
	wavFormatPCM = 1
	monoChannels = 1
)

// FileSink streams samples into a RIFF/WAVE file. The header sizes are
// patched when the sink is closed.
type FileSink struct {
	path    string
	f       *os.File
	enc     *wav.Encoder
	buf     *audio.IntBuffer
	samples int64
	closed  bool
}

// NewFileSink creates (or truncates) the WAVE file at path.
func NewFileSink(path string, sampleRate int) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("no output file given")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("unable to expand %s: %w", path, err)
	}

	f, err := os.Create(expanded)
	if err != nil {
		return nil, fmt.Errorf("unable to create output file: %w", err)
	}

	return &FileSink{
		path: expanded,
		f:    f,
		enc:  wav.NewEncoder(f, sampleRate, bitDepth, monoChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: monoChannels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Path returns the expanded file path.
func (s *FileSink) Path() string { return s.path }

// Samples returns the number of samples written so far.
func (s *FileSink) Samples() int64 { return s.samples }

// Submit appends samples to the data chunk.
func (s *FileSink) Submit(samples []int16) error {
	if s.closed {
		return ErrClosed
	}

	data := s.buf.Data[:0]
	for _, v := range samples {
		data = append(data, int(v))
	}
	s.buf.Data = data

	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("unable to write %s: %w", s.path, err)
	}
	s.samples += int64(len(samples))
	return nil
}

// Close finalizes the header and closes the file.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// the encoder only writes its header on the first Write
	if s.samples == 0 {
		s.buf.Data = s.buf.Data[:0]
		if err := s.enc.Write(s.buf); err != nil {
			_ = s.f.Close()
			return fmt.Errorf("unable to write %s: %w", s.path, err)
		}
	}

	if err := s.enc.Close(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("unable to finalize %s: %w", s.path, err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("unable to close %s: %w", s.path, err)
	}
	return nil
}
