//go:build !pico

// Package pico binds the SVOX Pico synthesizer (libttspico) to the engine
// contract. This build carries no binding; rebuild with -tags pico.
package pico

import "github.com/nanotts/nanotts/internal/engine"

// Available reports whether this binary was built with Pico support.
const Available = false

// Config selects the lingware files for one voice.
type Config struct {
	TAPath string
	SGPath string
}

// Engine is never constructed in this build.
type Engine struct{}

// Open always fails with engine.ErrUnavailable.
func Open(Config) (*Engine, error) {
	return nil, engine.Wrap("pico_initialize", engine.ErrUnavailable)
}

func (*Engine) PushText([]byte) (int, error) { return 0, engine.ErrUnavailable }

func (*Engine) PullAudio([]byte) (int, engine.Status, error) {
	return 0, engine.StatusIdle, engine.ErrUnavailable
}

func (*Engine) SampleRate() int { return engine.DefaultSampleRate }

func (*Engine) Close() error { return nil }
