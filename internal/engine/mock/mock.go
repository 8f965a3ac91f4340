// Package mock provides a deterministic in-memory engine for tests and for
// checking output plumbing without lingware installed.
package mock

import (
	"encoding/binary"

	"github.com/nanotts/nanotts/internal/engine"
)

// Engine produces a ramp of 16-bit samples for every byte of text it
// consumes. Sample values count up from zero across the whole session so
// that any dropped or reordered audio is visible to tests.
type Engine struct {
	sampleRate     int
	samplesPerByte int
	consumeLimit   int // bytes accepted per push, negative means unlimited
	burstLimit     int // bytes returned per pull, zero means len(buf)

	pending  []byte
	next     uint16
	produced int

	pushes [][]byte
	pulls  int

	failure     error
	failPushAt  int
	failPushErr error
	failPullAt  int
	failPullErr error
	closed      bool
	closeCount  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithSampleRate sets the reported sample rate.
func WithSampleRate(rate int) Option {
	return func(e *Engine) { e.sampleRate = rate }
}

// WithSamplesPerByte sets how many samples each consumed text byte yields.
func WithSamplesPerByte(n int) Option {
	return func(e *Engine) { e.samplesPerByte = n }
}

// WithConsumeLimit caps the bytes accepted by a single push. A limit of zero
// makes the engine refuse all text.
func WithConsumeLimit(n int) Option {
	return func(e *Engine) { e.consumeLimit = n }
}

// WithBurstLimit caps the bytes returned by a single pull. Odd limits produce
// misaligned bursts.
func WithBurstLimit(n int) Option {
	return func(e *Engine) { e.burstLimit = n }
}

// FailPushAfter makes the push following the first n pushes fail with err.
func FailPushAfter(n int, err error) Option {
	return func(e *Engine) {
		e.failPushAt = n + 1
		e.failPushErr = err
	}
}

// FailPullAfter makes the pull following the first n pulls fail with err.
func FailPullAfter(n int, err error) Option {
	return func(e *Engine) {
		e.failPullAt = n + 1
		e.failPullErr = err
	}
}

// New returns a mock engine at the Pico sample rate.
func New(opts ...Option) *Engine {
	e := &Engine{
		sampleRate:     engine.DefaultSampleRate,
		samplesPerByte: 8,
		consumeLimit:   -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PushText consumes up to the configured limit and queues audio for it.
func (e *Engine) PushText(text []byte) (int, error) {
	if e.closed {
		return 0, engine.ErrClosed
	}
	if e.failure != nil {
		return 0, e.failure
	}
	e.pushes = append(e.pushes, append([]byte(nil), text...))
	if e.failPushAt > 0 && len(e.pushes) == e.failPushAt {
		return 0, e.failPushErr
	}
	if len(text) > engine.MaxPushBytes {
		return 0, engine.ErrPushTooLarge
	}

	n := len(text)
	if e.consumeLimit >= 0 && n > e.consumeLimit {
		n = e.consumeLimit
	}
	for i := 0; i < n*e.samplesPerByte; i++ {
		e.pending = binary.LittleEndian.AppendUint16(e.pending, e.next)
		e.next++
		e.produced++
	}
	return n, nil
}

// PullAudio hands out queued audio and reports Busy while more remains.
func (e *Engine) PullAudio(buf []byte) (int, engine.Status, error) {
	if e.closed {
		return 0, engine.StatusIdle, engine.ErrClosed
	}
	if e.failure != nil {
		return 0, engine.StatusIdle, e.failure
	}
	e.pulls++
	if e.failPullAt > 0 && e.pulls == e.failPullAt {
		return 0, engine.StatusIdle, e.failPullErr
	}

	n := len(buf)
	if e.burstLimit > 0 && n > e.burstLimit {
		n = e.burstLimit
	}
	n = copy(buf[:n], e.pending)
	e.pending = e.pending[n:]

	if len(e.pending) > 0 {
		return n, engine.StatusBusy, nil
	}
	return n, engine.StatusIdle, nil
}

// SampleRate returns the configured sample rate.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Close marks the engine closed. Further calls fail with engine.ErrClosed.
func (e *Engine) Close() error {
	e.closed = true
	e.closeCount++
	return nil
}

// SetFailure makes every following call fail with err.
func (e *Engine) SetFailure(err error) {
	e.failure = err
}

// ClearFailure undoes SetFailure.
func (e *Engine) ClearFailure() {
	e.failure = nil
}

// Pushes returns a copy of every text slice offered to PushText.
func (e *Engine) Pushes() [][]byte {
	out := make([][]byte, len(e.pushes))
	copy(out, e.pushes)
	return out
}

// Pulls returns the number of PullAudio calls.
func (e *Engine) Pulls() int {
	return e.pulls
}

// Produced returns the number of samples generated so far.
func (e *Engine) Produced() int {
	return e.produced
}

// Closed reports whether Close was called, and how often.
func (e *Engine) Closed() (bool, int) {
	return e.closed, e.closeCount
}
