// Package exec drives an external synthesis command as an engine backend.
//
// The command reads one utterance of UTF-8 text on stdin and writes raw
// signed 16-bit little-endian mono PCM on stdout, for example
// "piper --model en_GB-alan-low.onnx --output-raw". Text is buffered until a
// NUL terminator arrives; each terminated utterance runs the command once.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-shellwords"

	"github.com/nanotts/nanotts/internal/engine"
)

// DefaultTimeout bounds a single utterance.
const DefaultTimeout = 5 * time.Minute

// ErrEmptyCommand is returned when no command is configured.
var ErrEmptyCommand = errors.New("synthesis command is empty")

var markup = regexp.MustCompile(`<[^<>]*>`)

// Config configures the exec backend.
type Config struct {
	Command    string
	SampleRate int
	Timeout    time.Duration
	Logger     *log.Logger
}

// Engine runs Config.Command once per terminated utterance.
type Engine struct {
	argv       []string
	sampleRate int
	timeout    time.Duration
	logger     *log.Logger

	partial bytes.Buffer
	queue   []string
	stream  *process
	carry   []byte
	closed  bool
}

// New parses the command line and checks that the binary exists.
func New(cfg Config) (*Engine, error) {
	argv, err := shellwords.NewParser().Parse(cfg.Command)
	if err != nil {
		return nil, engine.Wrap("parse command", err)
	}
	if len(argv) == 0 {
		return nil, engine.Wrap("parse command", ErrEmptyCommand)
	}
	if err := checkBinary(argv[0]); err != nil {
		return nil, engine.Wrap("lookup command", err)
	}

	e := &Engine{
		argv:       argv,
		sampleRate: cfg.SampleRate,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
	}
	if e.sampleRate <= 0 {
		e.sampleRate = engine.DefaultSampleRate
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e, nil
}

// PushText accepts all of text. Markup is dropped since external commands
// have no notion of it.
func (e *Engine) PushText(text []byte) (int, error) {
	if e.closed {
		return 0, engine.ErrClosed
	}
	if len(text) > engine.MaxPushBytes {
		return 0, engine.ErrPushTooLarge
	}

	rest := text
	for {
		i := bytes.IndexByte(rest, 0)
		if i < 0 {
			e.partial.Write(rest)
			break
		}
		e.partial.Write(rest[:i])
		e.enqueue()
		rest = rest[i+1:]
	}
	return len(text), nil
}

func (e *Engine) enqueue() {
	raw := e.partial.Bytes()
	stripped := markup.ReplaceAll(raw, nil)
	if len(stripped) != len(raw) {
		e.logger.Debug("Dropped markup for external command", "bytes", len(raw)-len(stripped))
	}
	if text := string(bytes.TrimSpace(stripped)); text != "" {
		e.queue = append(e.queue, text)
	}
	e.partial.Reset()
}

// PullAudio streams the output of the current utterance, starting the next
// queued one when needed.
func (e *Engine) PullAudio(buf []byte) (int, engine.Status, error) {
	if e.closed {
		return 0, engine.StatusIdle, engine.ErrClosed
	}
	if len(buf) < 2 {
		return 0, engine.StatusIdle, fmt.Errorf("pull buffer too small: %d bytes", len(buf))
	}

	if e.stream == nil {
		if len(e.queue) == 0 {
			return 0, engine.StatusIdle, nil
		}
		text := e.queue[0]
		e.queue = e.queue[1:]

		e.logger.Debug("Starting synthesis command", "cmd", e.argv[0], "chars", len(text))
		p, err := startProcess(context.Background(), e.timeout, text, e.argv)
		if err != nil {
			return 0, engine.StatusIdle, engine.Wrap("start command", err)
		}
		e.stream = p
	}

	n := copy(buf, e.carry)
	e.carry = e.carry[:0]
	m, err := e.stream.Read(buf[n:])
	n += m
	if n%2 == 1 {
		e.carry = append(e.carry, buf[n-1])
		n--
	}

	switch {
	case err == nil:
		return n, engine.StatusBusy, nil
	case errors.Is(err, io.EOF):
		closeErr := e.stream.Close()
		e.stream = nil
		e.carry = e.carry[:0]
		if closeErr != nil {
			return 0, engine.StatusIdle, engine.Wrap("run command", closeErr)
		}
		if len(e.queue) > 0 {
			return n, engine.StatusBusy, nil
		}
		return n, engine.StatusIdle, nil
	default:
		_ = e.stream.Close()
		e.stream = nil
		return 0, engine.StatusIdle, engine.Wrap("read command output", err)
	}
}

// SampleRate returns the configured output rate of the command.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Close stops any running command. Unterminated text is discarded.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.stream != nil {
		err := e.stream.Close()
		e.stream = nil
		return err
	}
	return nil
}
