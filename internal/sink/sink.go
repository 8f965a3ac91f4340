// Package sink delivers synthesized PCM to files, stdout and the audio
// device. Every flushed buffer goes to every active sink, in a fixed order.
package sink

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Sink consumes 16-bit mono samples. Submit may block but must not drop
// audio, and must not retain samples after it returns.
type Sink interface {
	Submit(samples []int16) error
	Close() error
}

// Sink errors.
var (
	ErrNoOutput = errors.New("no output selected")
	ErrClosed   = errors.New("sink is closed")
)

// Mode is a set of output destinations.
type Mode uint8

const (
	ModeFile Mode = 1 << iota
	ModeStdout
	ModePlayback
)

// Has reports whether m includes o.
func (m Mode) Has(o Mode) bool { return m&o != 0 }

func (m Mode) String() string {
	var parts []string
	if m.Has(ModeFile) {
		parts = append(parts, "file")
	}
	if m.Has(ModeStdout) {
		parts = append(parts, "stdout")
	}
	if m.Has(ModePlayback) {
		parts = append(parts, "playback")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Member is one sink within a Composite. A failing member is logged and
// skipped while the others keep receiving audio. Close reports the first
// write failure of a required member, so a damaged file still fails the run.
type Member struct {
	Name     string
	Sink     Sink
	Required bool

	failures int
	firstErr error
}

// Composite fans every submission out to its members in order.
type Composite struct {
	members []*Member
	logger  *log.Logger
	closed  bool
}

// NewComposite returns a Composite over members. A nil logger uses the
// default logger.
func NewComposite(logger *log.Logger, members ...*Member) *Composite {
	if logger == nil {
		logger = log.Default()
	}
	return &Composite{members: members, logger: logger}
}

// Len returns the number of members.
func (c *Composite) Len() int { return len(c.members) }

// Submit hands samples to every member. Member failures are logged, never
// returned: one broken output does not silence the others.
func (c *Composite) Submit(samples []int16) error {
	if c.closed {
		return ErrClosed
	}

	for _, m := range c.members {
		err := m.Sink.Submit(samples)
		if err == nil {
			continue
		}
		m.failures++
		if m.failures == 1 {
			m.firstErr = err
			c.logger.Warn("Output failed, continuing with the others", "sink", m.Name, "err", err)
		} else {
			c.logger.Debug("Output failed again", "sink", m.Name, "failures", m.failures, "err", err)
		}
	}
	return nil
}

// Close closes every member, in order, and joins their errors with the
// write failures of required members.
func (c *Composite) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for _, m := range c.members {
		if m.Required && m.firstErr != nil {
			errs = append(errs, fmt.Errorf("%s: %d writes failed: %w", m.Name, m.failures, m.firstErr))
		}
		if err := m.Sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Failures returns the failure count per member name.
func (c *Composite) Failures() map[string]int {
	out := make(map[string]int, len(c.members))
	for _, m := range c.members {
		out[m.Name] = m.failures
	}
	return out
}

// DeviceOpener opens the playback device at a sample rate.
type DeviceOpener func(sampleRate int) (Device, error)

// Options selects and configures the sinks for one run.
type Options struct {
	Modes      Mode
	SampleRate int

	// FilePath is the WAVE file written for ModeFile.
	FilePath string

	// Stdout receives the raw stream for ModeStdout.
	Stdout io.Writer

	// OpenDevice opens the playback device; nil uses the system device.
	OpenDevice DeviceOpener

	Logger *log.Logger
}

// Open opens the selected sinks in the order file, stdout, playback. If one
// fails to open, the ones already open are closed again.
func Open(opts Options) (*Composite, error) {
	if opts.Modes&(ModeFile|ModeStdout|ModePlayback) == 0 {
		return nil, ErrNoOutput
	}

	var members []*Member
	abort := func(err error) (*Composite, error) {
		for _, m := range members {
			_ = m.Sink.Close()
		}
		return nil, err
	}

	if opts.Modes.Has(ModeFile) {
		f, err := NewFileSink(opts.FilePath, opts.SampleRate)
		if err != nil {
			return abort(err)
		}
		members = append(members, &Member{Name: "file", Sink: f, Required: true})
	}

	if opts.Modes.Has(ModeStdout) {
		if opts.Stdout == nil {
			return abort(errors.New("stdout sink has no writer"))
		}
		members = append(members, &Member{Name: "stdout", Sink: NewStdoutSink(opts.Stdout)})
	}

	if opts.Modes.Has(ModePlayback) {
		openDevice := opts.OpenDevice
		if openDevice == nil {
			openDevice = OpenSystemDevice
		}
		dev, err := openDevice(opts.SampleRate)
		if err != nil {
			return abort(fmt.Errorf("unable to open audio device: %w", err))
		}
		members = append(members, &Member{Name: "playback", Sink: NewPlaybackSink(dev)})
	}

	return NewComposite(opts.Logger, members...), nil
}
