package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/nanotts/nanotts/internal/config"
)

// logEnv is read once by setupLog and consulted again once flags are parsed.
var logEnv config.Env

// setupLog points the default logger at stderr, since stdout may carry the
// PCM stream, or at NANOTTS_LOG_FILE when set.
func setupLog() (func() error, error) {
	e, err := config.ParseEnv()
	if err != nil {
		return nil, err
	}
	logEnv = e

	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	if e.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if e.LogFile == "" {
		return func() error { return nil }, nil
	}

	path, err := homedir.Expand(e.LogFile)
	if err != nil {
		return nil, fmt.Errorf("unable to expand log file path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	return f.Close, nil
}

// applyQuiet raises the level to warn for -q unless debugging was requested.
func applyQuiet(quiet bool) {
	if quiet && !logEnv.Debug {
		log.SetLevel(log.WarnLevel)
	}
}
