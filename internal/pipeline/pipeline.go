// Package pipeline feeds text to a synthesis engine and fans the audio it
// produces out to the sinks.
//
// Text is pushed as an optional opener, the main text and an optional
// closer, each in windows no larger than the engine accepts at once. After
// every push the engine is drained in fixed bursts into a transfer buffer.
// The buffer is handed to the sinks whenever the next burst would overflow
// it and again whenever the engine goes idle.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/nanotts/nanotts/internal/engine"
	"github.com/nanotts/nanotts/internal/prosody"
	"github.com/nanotts/nanotts/internal/sink"
)

// Pipeline errors.
var (
	ErrSynthesis       = errors.New("synthesis failed")
	ErrSink            = errors.New("output failed")
	ErrEngineStalled   = errors.New("engine stopped accepting text")
	ErrMisalignedAudio = errors.New("engine returned a partial sample")
	ErrInvalidConfig   = errors.New("invalid pipeline configuration")
)

// maxEmptyPulls bounds consecutive busy reports that carry no audio.
const maxEmptyPulls = 1 << 20

// Config sizes the pipeline.
type Config struct {
	// BurstBytes is the size of a single pull from the engine.
	BurstBytes int `yaml:"burst_bytes" env:"BURST_BYTES" envDefault:"128"`

	// BufferBytes is the transfer buffer capacity.
	BufferBytes int `yaml:"buffer_bytes" env:"BUFFER_BYTES" envDefault:"256"`

	// MaxPushBytes caps a single text push.
	MaxPushBytes int `yaml:"max_push_bytes" env:"MAX_PUSH_BYTES" envDefault:"32767"`

	// MaxStalls is how many consecutive pushes may consume nothing while the
	// engine also produces nothing.
	MaxStalls int `yaml:"max_stalls" env:"MAX_STALLS" envDefault:"64"`
}

// DefaultConfig returns the sizes used with Pico.
func DefaultConfig() Config {
	return Config{
		BurstBytes:   engine.BurstBytes,
		BufferBytes:  2 * engine.BurstBytes,
		MaxPushBytes: engine.MaxPushBytes,
		MaxStalls:    64,
	}
}

// Validate checks that the sizes are usable together.
func (c Config) Validate() error {
	if c.BurstBytes < 2 || c.BurstBytes%2 != 0 {
		return fmt.Errorf("%w: burst size must be a positive even number, got %d", ErrInvalidConfig, c.BurstBytes)
	}
	if c.BufferBytes < c.BurstBytes || c.BufferBytes%2 != 0 {
		return fmt.Errorf("%w: buffer size must be even and at least the burst size (%d), got %d", ErrInvalidConfig, c.BurstBytes, c.BufferBytes)
	}
	if c.MaxPushBytes < 1 || c.MaxPushBytes > engine.MaxPushBytes {
		return fmt.Errorf("%w: push size must be between 1 and %d, got %d", ErrInvalidConfig, engine.MaxPushBytes, c.MaxPushBytes)
	}
	if c.MaxStalls < 1 {
		return fmt.Errorf("%w: max stalls must be positive, got %d", ErrInvalidConfig, c.MaxStalls)
	}
	return nil
}

// Stats summarises one run.
type Stats struct {
	Pushes       int
	TextBytes    int
	Pulls        int
	AudioBytes   int64
	Flushes      int
	PeakBuffered int
	Audio        time.Duration
	Elapsed      time.Duration
}

// Pipeline runs one synthesis job. It is not safe for concurrent use.
type Pipeline struct {
	eng    engine.Engine
	out    sink.Sink
	mods   *prosody.Modifier
	cfg    Config
	logger *log.Logger

	burst []byte
	buf   *TransferBuffer
	state State
	stats Stats
}

// New returns a pipeline feeding eng and writing to out. mods may be nil.
func New(eng engine.Engine, out sink.Sink, mods *prosody.Modifier, cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eng == nil || out == nil {
		return nil, fmt.Errorf("%w: engine and sink are required", ErrInvalidConfig)
	}
	if mods == nil {
		mods = prosody.New()
	}
	return &Pipeline{
		eng:    eng,
		out:    out,
		mods:   mods,
		cfg:    cfg,
		logger: log.Default(),
		burst:  make([]byte, cfg.BurstBytes),
		buf:    NewTransferBuffer(cfg.BufferBytes),
	}, nil
}

// SetLogger replaces the default logger.
func (p *Pipeline) SetLogger(l *log.Logger) {
	if l != nil {
		p.logger = l
	}
}

// State returns the state the pipeline is in, or ended in.
func (p *Pipeline) State() State { return p.state }

// Stats returns the counters collected so far.
func (p *Pipeline) Stats() Stats { return p.stats }

// Run synthesizes text, wrapped in the modifier markup when any modifier is
// set, and returns once the engine has gone idle after the last region. Any
// engine error or required sink error aborts the run.
func (p *Pipeline) Run(text []byte) (Stats, error) {
	start := time.Now()
	padded := p.mods.IsChanged()
	seg := newSegmenter([]byte(p.mods.Opener()), text, []byte(p.mods.Closer()), padded, p.cfg.MaxPushBytes)

	stalls := 0
	for {
		chunk := seg.Pending()
		p.state = seg.State()
		if chunk == nil {
			break
		}

		n, err := p.eng.PushText(chunk)
		if err != nil {
			return p.finish(start), fmt.Errorf("%w: %s push: %w", ErrSynthesis, p.state, err)
		}
		if n < 0 || n > len(chunk) {
			return p.finish(start), fmt.Errorf("%w: engine reported %d bytes consumed of %d", ErrSynthesis, n, len(chunk))
		}
		seg.Consume(n)
		p.stats.Pushes++
		p.stats.TextBytes += n

		produced, err := p.drain()
		if err != nil {
			return p.finish(start), err
		}

		if n == 0 && produced == 0 {
			stalls++
			if stalls >= p.cfg.MaxStalls {
				return p.finish(start), fmt.Errorf("%w: %w after %d attempts in %s", ErrSynthesis, ErrEngineStalled, stalls, p.state)
			}
			continue
		}
		stalls = 0
	}

	stats := p.finish(start)
	p.logger.Debug("Synthesis completed",
		"pushes", stats.Pushes,
		"text", humanize.Bytes(uint64(stats.TextBytes)),
		"audio", humanize.Bytes(uint64(stats.AudioBytes)),
		"duration", stats.Audio.Round(time.Millisecond),
		"flushes", stats.Flushes,
		"elapsed", stats.Elapsed.Round(time.Millisecond))
	return stats, nil
}

// drain pulls bursts until the engine reports idle, then flushes.
func (p *Pipeline) drain() (int, error) {
	produced := 0
	empty := 0
	for {
		n, status, err := p.eng.PullAudio(p.burst)
		p.stats.Pulls++
		if err != nil {
			return produced, fmt.Errorf("%w: %s pull: %w", ErrSynthesis, p.state, err)
		}
		if n < 0 || n > len(p.burst) {
			return produced, fmt.Errorf("%w: engine reported %d bytes for a %d byte burst", ErrSynthesis, n, len(p.burst))
		}
		if n%2 != 0 {
			return produced, fmt.Errorf("%w: %w (%d bytes)", ErrSynthesis, ErrMisalignedAudio, n)
		}

		if n > 0 {
			empty = 0
			if !p.buf.Fits(n) {
				if err := p.flush(); err != nil {
					return produced, err
				}
			}
			if err := p.buf.Append(p.burst[:n]); err != nil {
				return produced, err
			}
			produced += n
			p.stats.AudioBytes += int64(n)
		} else if status == engine.StatusBusy {
			empty++
			if empty >= maxEmptyPulls {
				return produced, fmt.Errorf("%w: %w, busy without audio", ErrSynthesis, ErrEngineStalled)
			}
		}

		if status != engine.StatusBusy {
			break
		}
	}
	return produced, p.flush()
}

// flush hands the buffered audio to the sink. Empty buffers are skipped.
func (p *Pipeline) flush() error {
	if p.buf.Len() == 0 {
		return nil
	}
	err := p.out.Submit(p.buf.Samples())
	p.buf.Reset()
	p.stats.Flushes++
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSink, err)
	}
	return nil
}

func (p *Pipeline) finish(start time.Time) Stats {
	p.stats.PeakBuffered = p.buf.Peak()
	p.stats.Elapsed = time.Since(start)
	if rate := p.eng.SampleRate(); rate > 0 {
		samples := p.stats.AudioBytes / 2
		p.stats.Audio = time.Duration(samples) * time.Second / time.Duration(rate)
	}
	return p.stats
}
