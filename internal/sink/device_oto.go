//go:build !nocgo

package sink

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const readyTimeout = 5 * time.Second

// oto allows one context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

type otoDevice struct {
	ctx *oto.Context
}

func (d *otoDevice) NewPlayer(r io.Reader) Player {
	return d.ctx.NewPlayer(r)
}

// OpenSystemDevice opens the default audio output for mono 16-bit PCM.
func OpenSystemDevice(sampleRate int) (Device, error) {
	otoOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: monoChannels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferSize(),
		}
		log.Debug("Initializing audio context",
			"sample_rate", opts.SampleRate,
			"buffer_size", opts.BufferSize)

		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			otoErr = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		select {
		case <-ready:
		case <-time.After(readyTimeout):
			otoErr = fmt.Errorf("audio context initialization timeout after %v", readyTimeout)
			return
		}
		otoCtx = ctx
		otoRate = sampleRate
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz, need %d Hz", otoRate, sampleRate)
	}
	return &otoDevice{ctx: otoCtx}, nil
}

func bufferSize() time.Duration {
	switch runtime.GOOS {
	case "darwin":
		return 100 * time.Millisecond
	case "windows":
		return 80 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}
