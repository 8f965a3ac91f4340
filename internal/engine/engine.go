// Package engine defines the contract between the synthesis pipeline and a
// text-to-speech backend.
//
// A backend accepts UTF-8 text (optionally carrying prosody markup) in
// bounded pushes and hands back 16-bit little-endian mono PCM in small
// bursts. It reports Busy while more audio is pending for the text pushed so
// far and Idle once everything has been delivered.
package engine

import (
	"errors"
	"fmt"
)

const (
	// MaxPushBytes is the largest text slice accepted by one PushText call.
	MaxPushBytes = 32767

	// BurstBytes is the pull size used against the engine.
	BurstBytes = 128

	// DefaultSampleRate is the output rate of the Pico voices.
	DefaultSampleRate = 16000
)

// Status is the engine's report after a pull.
type Status int

const (
	// StatusIdle means no more audio is pending for the text pushed so far.
	StatusIdle Status = iota
	// StatusBusy means more audio is pending.
	StatusBusy
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusBusy:
		return "busy"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Engine is a synthesis session. It is used from a single goroutine.
type Engine interface {
	// PushText offers text to the engine and returns how many bytes it
	// consumed. len(text) must not exceed MaxPushBytes.
	PushText(text []byte) (int, error)

	// PullAudio copies at most len(buf) bytes of PCM into buf.
	PullAudio(buf []byte) (int, Status, error)

	// SampleRate is the rate of the PCM produced by PullAudio.
	SampleRate() int

	// Close releases the session and every resource acquired to create it.
	Close() error
}

// Engine errors.
var (
	ErrUnavailable   = errors.New("engine backend not available")
	ErrClosed        = errors.New("engine is closed")
	ErrPushTooLarge  = errors.New("text push exceeds engine limit")
	ErrUnknownEngine = errors.New("unknown engine backend")
)

// Error is a failure reported by the synthesizer itself. Op names the failing
// call, Code and Message are the engine's status code and its own text.
type Error struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns an Error for op with the engine's status code and message.
func NewError(op string, code int, message string) *Error {
	return &Error{Op: op, Code: code, Message: message}
}

// Wrap returns an Error for op caused by err.
func Wrap(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
