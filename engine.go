package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/nanotts/nanotts/internal/config"
	"github.com/nanotts/nanotts/internal/engine"
	execengine "github.com/nanotts/nanotts/internal/engine/exec"
	"github.com/nanotts/nanotts/internal/engine/mock"
	"github.com/nanotts/nanotts/internal/engine/pico"
	"github.com/nanotts/nanotts/internal/voice"
)

// openEngine starts the configured backend for entry.
func openEngine(cfg config.Config, entry voice.Entry) (engine.Engine, error) {
	switch cfg.Engine {
	case config.EnginePico:
		return openPico(cfg.Lingware, entry)

	case config.EngineExec:
		e, err := execengine.New(execengine.Config{
			Command:    cfg.Exec.Command,
			SampleRate: cfg.Exec.SampleRate,
			Timeout:    cfg.Exec.Timeout,
			Logger:     log.Default(),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errEngineInit, err)
		}
		log.Debug("Using external synthesis command", "command", cfg.Exec.Command, "sample_rate", e.SampleRate())
		return e, nil

	case config.EngineMock:
		log.Warn("Using the mock engine, output is a test signal")
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("%w: %w %q", errEngineInit, engine.ErrUnknownEngine, cfg.Engine)
	}
}

func openPico(lc config.LingwareConfig, entry voice.Entry) (engine.Engine, error) {
	if !pico.Available {
		return nil, fmt.Errorf("%w: %w, rebuild with -tags pico or use --engine exec",
			errEngineInit, engine.ErrUnavailable)
	}

	dir, err := lingwareDir(lc)
	if err != nil {
		return nil, err
	}
	if !voice.Available(dir, entry) {
		ta, sg := entry.ResourceNames()
		return nil, fmt.Errorf("%w: %s or %s missing in %s", voice.ErrLingwareNotFound, ta, sg, dir)
	}
	log.Debug("Using lingware", "dir", dir)

	ta, sg := voice.ResourcePaths(dir, entry)
	e, err := pico.Open(pico.Config{TAPath: ta, SGPath: sg})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errEngineInit, err)
	}
	return e, nil
}

// lingwareDir returns the configured directory as is, or the first default
// location holding lingware.
func lingwareDir(lc config.LingwareConfig) (string, error) {
	if lc.Dir == "" {
		return voice.LocateLingware(lc.Paths)
	}
	dir, err := homedir.Expand(lc.Dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", voice.ErrLingwareNotFound, err)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return "", fmt.Errorf("%w: %s", voice.ErrLingwareNotFound, lc.Dir)
	}
	return dir, nil
}
