// Package config holds the nanotts configuration as read from the config
// file, the environment and the command line.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/nanotts/nanotts/internal/cache"
	"github.com/nanotts/nanotts/internal/pipeline"
	"github.com/nanotts/nanotts/internal/voice"
)

// Engine names.
const (
	EnginePico = "pico"
	EngineExec = "exec"
	EngineMock = "mock"
)

// EnvPrefix prefixes every environment variable nanotts reads.
const EnvPrefix = "NANOTTS_"

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config contains all nanotts options.
type Config struct {
	Voice  string `yaml:"voice" env:"VOICE" envDefault:"en-GB"`
	Engine string `yaml:"engine" env:"ENGINE" envDefault:"pico"`

	Lingware LingwareConfig  `yaml:"lingware" envPrefix:"LINGWARE_"`
	Prosody  ProsodyConfig   `yaml:"prosody" envPrefix:"PROSODY_"`
	Output   OutputConfig    `yaml:"output" envPrefix:"OUTPUT_"`
	Pipeline pipeline.Config `yaml:"pipeline" envPrefix:"PIPELINE_"`
	Exec     ExecConfig      `yaml:"exec" envPrefix:"EXEC_"`
	Cache    cache.Config    `yaml:"cache" envPrefix:"CACHE_"`
}

// LingwareConfig says where the pico voice data lives.
type LingwareConfig struct {
	// Dir is used as is when set; otherwise Paths are searched in order.
	Dir   string   `yaml:"dir" env:"DIR"`
	Paths []string `yaml:"paths" env:"PATHS" envSeparator:":" envDefault:"./lang:/usr/share/pico/lang"`
}

// ProsodyConfig holds optional prosody factors. Nil means unchanged.
type ProsodyConfig struct {
	Speed  *float64 `yaml:"speed" env:"SPEED"`
	Pitch  *float64 `yaml:"pitch" env:"PITCH"`
	Volume *float64 `yaml:"volume" env:"VOLUME"`
}

// OutputConfig controls auto-numbered files and default output modes.
type OutputConfig struct {
	Dir     string `yaml:"dir" env:"DIR" envDefault:"."`
	Prefix  string `yaml:"prefix" env:"PREFIX" envDefault:"nanotts-output-"`
	Suffix  string `yaml:"suffix" env:"SUFFIX" envDefault:".wav"`
	ZeroPad int    `yaml:"zero_pad" env:"ZERO_PAD" envDefault:"4"`
	Play    bool   `yaml:"play" env:"PLAY" envDefault:"false"`
	Stdout  bool   `yaml:"stdout" env:"STDOUT" envDefault:"false"`
}

// ExecConfig configures the external command backend.
type ExecConfig struct {
	Command    string        `yaml:"command" env:"COMMAND"`
	SampleRate int           `yaml:"sample_rate" env:"SAMPLE_RATE" envDefault:"22050"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT" envDefault:"5m"`
}

// Env holds settings only read from the environment.
type Env struct {
	Debug   bool   `env:"DEBUG"`
	LogFile string `env:"LOG_FILE"`
}

// ParseEnv reads NANOTTS_DEBUG and NANOTTS_LOG_FILE.
func ParseEnv() (Env, error) {
	e, err := env.ParseAsWithOptions[Env](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Env{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return e, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Voice:  voice.DefaultName,
		Engine: EnginePico,
		Lingware: LingwareConfig{
			Paths: append([]string(nil), voice.DefaultLingwarePaths...),
		},
		Output:   DefaultOutputConfig(),
		Pipeline: pipeline.DefaultConfig(),
		Exec: ExecConfig{
			SampleRate: 22050,
			Timeout:    5 * time.Minute,
		},
		Cache: cache.DefaultConfig(),
	}
}

// DefaultOutputConfig returns the default auto-numbering scheme.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:     ".",
		Prefix:  "nanotts-output-",
		Suffix:  ".wav",
		ZeroPad: 4,
	}
}

// Validate checks if the configuration is valid. Engine names are
// normalized to lower case.
func (c *Config) Validate() error {
	validEngines := []string{EnginePico, EngineExec, EngineMock}
	engineValid := false
	for _, e := range validEngines {
		if strings.EqualFold(c.Engine, e) {
			engineValid = true
			c.Engine = e
			break
		}
	}
	if !engineValid {
		return fmt.Errorf("%w: unknown engine %q: must be one of %v", ErrInvalid, c.Engine, validEngines)
	}

	if strings.TrimSpace(c.Voice) == "" {
		return fmt.Errorf("%w: voice cannot be empty", ErrInvalid)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalid, err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("%w: pipeline: %w", ErrInvalid, err)
	}

	if c.Engine == EngineExec {
		if err := c.Exec.Validate(); err != nil {
			return fmt.Errorf("%w: exec: %w", ErrInvalid, err)
		}
	}

	if c.Cache.Enabled {
		if err := validateCache(c.Cache); err != nil {
			return fmt.Errorf("%w: cache: %w", ErrInvalid, err)
		}
	}
	return nil
}

// Validate checks the output naming scheme.
func (c *OutputConfig) Validate() error {
	if c.ZeroPad < 0 || c.ZeroPad > 9 {
		return fmt.Errorf("zero_pad must be between 0 and 9, got %d", c.ZeroPad)
	}
	if strings.ContainsAny(c.Prefix+c.Suffix, `/\`) {
		return fmt.Errorf("prefix and suffix cannot contain path separators, use dir")
	}
	return nil
}

// Validate checks the exec backend settings.
func (c *ExecConfig) Validate() error {
	if strings.TrimSpace(c.Command) == "" {
		return errors.New("command cannot be empty")
	}
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000, got %d", c.SampleRate)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second, got %v", c.Timeout)
	}
	return nil
}

func validateCache(c cache.Config) error {
	if c.MaxSizeMB < 1 {
		return fmt.Errorf("max_size must be at least 1 MB, got %d", c.MaxSizeMB)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl cannot be negative, got %v", c.TTL)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression_level must be between 0 and 22, got %d", c.CompressionLevel)
	}
	return nil
}
