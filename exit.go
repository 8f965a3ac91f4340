package main

import (
	"errors"

	"github.com/nanotts/nanotts/internal/config"
	"github.com/nanotts/nanotts/internal/input"
	"github.com/nanotts/nanotts/internal/pipeline"
	"github.com/nanotts/nanotts/internal/sink"
	"github.com/nanotts/nanotts/internal/voice"
)

// Exit codes, following sysexits where one fits.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 64
	exitNoInput     = 66
	exitSoftware    = 70
	exitIOErr       = 74
	exitEngine      = 126
	exitNoSuchVoice = 127
)

var (
	errUsage      = errors.New("usage error")
	errEngineInit = errors.New("unable to start synthesis engine")
	errSinkOpen   = errors.New("unable to open output")
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pipeline.ErrSynthesis):
		return exitSoftware
	case errors.Is(err, pipeline.ErrSink):
		return exitIOErr
	case errors.Is(err, voice.ErrVoiceNotFound):
		return exitNoSuchVoice
	case errors.Is(err, voice.ErrLingwareNotFound), errors.Is(err, errEngineInit):
		return exitEngine
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, input.ErrMultipleInputs),
		errors.Is(err, sink.ErrNoOutput):
		return exitUsage
	case errors.Is(err, input.ErrNoInput), errors.Is(err, input.ErrUnreadable):
		return exitNoInput
	case errors.Is(err, errSinkOpen):
		return exitIOErr
	default:
		return exitFailure
	}
}
