package sink

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Playback errors.
var (
	ErrPlaybackUnavailable = errors.New("audio playback not available in this build")
	ErrPlaybackFailed      = errors.New("audio device stopped")
)

// Device creates players that pull PCM from a reader.
type Device interface {
	NewPlayer(r io.Reader) Player
}

// Player plays what it reads until the reader returns EOF.
type Player interface {
	Play()
	IsPlaying() bool
	Err() error
	Close() error
}

// PlaybackSink feeds a device player through a pipe. Submit returns once the
// player has taken every byte, so a slow device slows the whole pipeline
// down instead of buffering without bound.
type PlaybackSink struct {
	player  Player
	pr      *io.PipeReader
	pw      *io.PipeWriter
	scratch []byte
	started bool
	closed  bool
	done    chan struct{}

	// DrainPoll is how often the player is checked for errors and, on
	// Close, whether playback has finished.
	DrainPoll time.Duration
}

// NewPlaybackSink returns a sink playing on dev.
func NewPlaybackSink(dev Device) *PlaybackSink {
	pr, pw := io.Pipe()
	return &PlaybackSink{
		player:    dev.NewPlayer(pr),
		pr:        pr,
		pw:        pw,
		done:      make(chan struct{}),
		DrainPoll: 10 * time.Millisecond,
	}
}

// Submit blocks until the player has read samples. If the player fails,
// Submit returns ErrPlaybackFailed instead of waiting for it forever.
func (s *PlaybackSink) Submit(samples []int16) error {
	if s.closed {
		return ErrClosed
	}
	if !s.started {
		s.player.Play()
		s.started = true
		go s.watch()
	}

	s.scratch = encodePCM(s.scratch[:0], samples)
	if _, err := s.pw.Write(s.scratch); err != nil {
		return fmt.Errorf("unable to feed audio device: %w", err)
	}
	return nil
}

// Close signals end of stream and waits for the device to finish playing.
func (s *PlaybackSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)

	_ = s.pw.Close()
	if s.started {
		for s.player.IsPlaying() {
			time.Sleep(s.DrainPoll)
		}
	}
	err := s.player.Close()
	_ = s.pr.Close()
	if err != nil {
		return fmt.Errorf("unable to close audio player: %w", err)
	}
	return nil
}

// watch breaks the pipe once the player reports an error, which releases a
// Submit blocked on a device that stopped reading.
func (s *PlaybackSink) watch() {
	t := time.NewTicker(s.DrainPoll)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			if err := s.player.Err(); err != nil {
				_ = s.pr.CloseWithError(fmt.Errorf("%w: %w", ErrPlaybackFailed, err))
				return
			}
		}
	}
}
