package config

import (
	"fmt"

	"github.com/nanotts/nanotts/internal/prosody"
	"github.com/spf13/viper"
)

// SetDefaults registers the default values with v so they show up in
// v.AllSettings and can be overridden by file, env or flags.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("voice", d.Voice)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("lingware.dir", d.Lingware.Dir)
	v.SetDefault("lingware.paths", d.Lingware.Paths)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.prefix", d.Output.Prefix)
	v.SetDefault("output.suffix", d.Output.Suffix)
	v.SetDefault("output.zero_pad", d.Output.ZeroPad)
	v.SetDefault("output.play", d.Output.Play)
	v.SetDefault("output.stdout", d.Output.Stdout)
	v.SetDefault("pipeline.burst_bytes", d.Pipeline.BurstBytes)
	v.SetDefault("pipeline.buffer_bytes", d.Pipeline.BufferBytes)
	v.SetDefault("pipeline.max_push_bytes", d.Pipeline.MaxPushBytes)
	v.SetDefault("pipeline.max_stalls", d.Pipeline.MaxStalls)
	v.SetDefault("exec.command", d.Exec.Command)
	v.SetDefault("exec.sample_rate", d.Exec.SampleRate)
	v.SetDefault("exec.timeout", d.Exec.Timeout)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.max_size", d.Cache.MaxSizeMB)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.compression_level", d.Cache.CompressionLevel)
}

// Load builds a Config from v on top of DefaultConfig and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.IsSet("voice") {
		cfg.Voice = v.GetString("voice")
	}
	if v.IsSet("engine") {
		cfg.Engine = v.GetString("engine")
	}

	if v.IsSet("lingware.dir") {
		cfg.Lingware.Dir = v.GetString("lingware.dir")
	}
	if v.IsSet("lingware.paths") {
		if paths := v.GetStringSlice("lingware.paths"); len(paths) > 0 {
			cfg.Lingware.Paths = paths
		}
	}

	// Prosody factors are only applied when present.
	if v.IsSet("prosody.speed") {
		cfg.Prosody.Speed = prosody.Value(v.GetFloat64("prosody.speed"))
	}
	if v.IsSet("prosody.pitch") {
		cfg.Prosody.Pitch = prosody.Value(v.GetFloat64("prosody.pitch"))
	}
	if v.IsSet("prosody.volume") {
		cfg.Prosody.Volume = prosody.Value(v.GetFloat64("prosody.volume"))
	}

	if v.IsSet("output.dir") {
		cfg.Output.Dir = v.GetString("output.dir")
	}
	if v.IsSet("output.prefix") {
		cfg.Output.Prefix = v.GetString("output.prefix")
	}
	if v.IsSet("output.suffix") {
		cfg.Output.Suffix = v.GetString("output.suffix")
	}
	if v.IsSet("output.zero_pad") {
		cfg.Output.ZeroPad = v.GetInt("output.zero_pad")
	}
	if v.IsSet("output.play") {
		cfg.Output.Play = v.GetBool("output.play")
	}
	if v.IsSet("output.stdout") {
		cfg.Output.Stdout = v.GetBool("output.stdout")
	}

	if v.IsSet("pipeline.burst_bytes") {
		cfg.Pipeline.BurstBytes = v.GetInt("pipeline.burst_bytes")
	}
	if v.IsSet("pipeline.buffer_bytes") {
		cfg.Pipeline.BufferBytes = v.GetInt("pipeline.buffer_bytes")
	}
	if v.IsSet("pipeline.max_push_bytes") {
		cfg.Pipeline.MaxPushBytes = v.GetInt("pipeline.max_push_bytes")
	}
	if v.IsSet("pipeline.max_stalls") {
		cfg.Pipeline.MaxStalls = v.GetInt("pipeline.max_stalls")
	}

	if v.IsSet("exec.command") {
		cfg.Exec.Command = v.GetString("exec.command")
	}
	if v.IsSet("exec.sample_rate") {
		cfg.Exec.SampleRate = v.GetInt("exec.sample_rate")
	}
	if v.IsSet("exec.timeout") {
		cfg.Exec.Timeout = v.GetDuration("exec.timeout")
	}

	if v.IsSet("cache.enabled") {
		cfg.Cache.Enabled = v.GetBool("cache.enabled")
	}
	if v.IsSet("cache.dir") {
		cfg.Cache.Dir = v.GetString("cache.dir")
	}
	if v.IsSet("cache.max_size") {
		cfg.Cache.MaxSizeMB = v.GetInt("cache.max_size")
	}
	if v.IsSet("cache.ttl") {
		cfg.Cache.TTL = v.GetDuration("cache.ttl")
	}
	if v.IsSet("cache.compression_level") {
		cfg.Cache.CompressionLevel = v.GetInt("cache.compression_level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid nanotts configuration: %w", err)
	}
	return cfg, nil
}

// Settings converts the configured factors for the prosody modifier.
func (p ProsodyConfig) Settings() prosody.Settings {
	return prosody.Settings{Speed: p.Speed, Pitch: p.Pitch, Volume: p.Volume}
}
