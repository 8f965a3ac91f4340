package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nanotts/nanotts/internal/cache"
	"github.com/nanotts/nanotts/internal/config"
	"github.com/nanotts/nanotts/internal/input"
	"github.com/nanotts/nanotts/internal/pipeline"
	"github.com/nanotts/nanotts/internal/prosody"
	"github.com/nanotts/nanotts/internal/sink"
	"github.com/nanotts/nanotts/internal/voice"
)

func execute(cmd *cobra.Command, args []string) error {
	if err := readExplicitConfig(cmd); err != nil {
		return err
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	req := inputRequest(args, flags.Changed("input"))
	req.StdinPiped = input.StdinIsPiped(os.Stdin)

	// A bare invocation at a terminal gets the help text.
	if flags.NFlag() == 0 && len(args) == 0 && !req.StdinPiped {
		return cmd.Help()
	}

	src, err := input.Resolve(req)
	if err != nil {
		return err
	}

	modes, path, err := resolveOutputs(outputRequest{
		path:   outputPath,
		wav:    wavOut,
		prefix: flags.Changed("prefix"),
		stdout: cfg.Output.Stdout,
		play:   cfg.Output.Play,
		noPlay: noPlay,
	}, cfg.Output)
	if err != nil {
		return err
	}

	entry, err := voice.Resolve(cfg.Voice)
	if err != nil {
		return err
	}

	mods := prosody.FromSettings(cfg.Prosody.Settings())
	reportProsody(mods)

	text, err := src.Read(os.Stdin)
	if err != nil {
		return err
	}
	if len(text) == 0 {
		log.Warn("Input is empty, nothing to say", "source", src.Mode)
	}
	log.Info("Read input", "source", src.Mode, "size", humanize.Bytes(uint64(len(text))))
	log.Info("Using voice", "voice", entry.Name)

	return speak(cfg, entry, mods, text, modes, path, os.Stdout)
}

// speak runs one synthesis from text to the selected outputs. With the
// cache enabled, audio for text spoken before is replayed without starting
// the engine.
func speak(cfg config.Config, entry voice.Entry, mods *prosody.Modifier, text []byte,
	modes sink.Mode, path string, stdout io.Writer,
) error {
	var (
		dc  *cache.DiskCache
		key string
	)
	if cfg.Cache.Enabled && len(text) > 0 {
		var err error
		if dc, err = openCache(cfg.Cache); err != nil {
			log.Warn("Audio cache unavailable", "err", err)
		} else {
			defer func() { _ = dc.Close() }()
			key = cacheKey(cfg, entry, mods, text).String()
			e, err := dc.Get(key)
			switch {
			case err == nil:
				log.Info("Using cached audio", "samples", len(e.Samples), "sample_rate", e.SampleRate)
				return replay(cfg, e, modes, path, stdout)
			case !errors.Is(err, cache.ErrCacheMiss):
				log.Warn("Could not read cached audio", "err", err)
			}
		}
	}

	eng, err := openEngine(cfg, entry)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Warn("Could not shut down engine", "err", err)
		}
	}()

	out, err := openSinks(modes, eng.SampleRate(), path, stdout)
	if err != nil {
		return err
	}

	var (
		target sink.Sink = out
		rec    *cache.Recorder
	)
	if dc != nil {
		rec = cache.NewRecorder(out, int(cfg.Cache.Capacity()/2))
		target = rec
	}

	p, err := pipeline.New(eng, target, mods, cfg.Pipeline)
	if err != nil {
		_ = out.Close()
		return err
	}
	p.SetLogger(log.Default())

	stats, runErr := p.Run(text)
	if err := finish(modes, path, runErr, out.Close()); err != nil {
		return err
	}

	if rec != nil {
		store(dc, key, eng.SampleRate(), rec)
	}
	log.Debug("Done", "audio", stats.Audio, "outputs", modes)
	return nil
}

// replay sends cached audio to the selected outputs.
func replay(cfg config.Config, e cache.Entry, modes sink.Mode, path string, stdout io.Writer) error {
	out, err := openSinks(modes, e.SampleRate, path, stdout)
	if err != nil {
		return err
	}
	runErr := cache.Replay(e, out, cfg.Pipeline.BufferBytes/2)
	if runErr != nil {
		runErr = fmt.Errorf("%w: %w", pipeline.ErrSink, runErr)
	}
	return finish(modes, path, runErr, out.Close())
}

func openSinks(modes sink.Mode, rate int, path string, stdout io.Writer) (*sink.Composite, error) {
	out, err := sink.Open(sink.Options{
		Modes:      modes,
		SampleRate: rate,
		FilePath:   path,
		Stdout:     stdout,
		Logger:     log.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSinkOpen, err)
	}
	if modes.Has(sink.ModeStdout) {
		log.Info("Writing PCM stream to stdout", "sample_rate", rate, "format", "s16le")
	}
	return out, nil
}

// finish reports the output file and picks the error to exit with.
func finish(modes sink.Mode, path string, runErr, closeErr error) error {
	if modes.Has(sink.ModeFile) {
		reportFile(path, runErr != nil || closeErr != nil)
	}
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrSink, closeErr)
	}
	return nil
}

func store(dc *cache.DiskCache, key string, rate int, rec *cache.Recorder) {
	samples, ok := rec.Samples()
	if !ok {
		log.Debug("Audio too large to cache")
		return
	}
	if err := dc.Put(key, cache.Entry{SampleRate: rate, Samples: samples}); err != nil {
		log.Warn("Could not cache audio", "err", err)
		return
	}
	log.Debug("Cached audio", "key", key, "samples", len(samples))
}

// inputRequest splits the positional arguments into the "-" stdin marker
// and words to speak.
func inputRequest(args []string, textSet bool) input.Request {
	req := input.Request{
		Text:      inputText,
		TextSet:   textSet,
		File:      inputFile,
		Clipboard: clipboard,
		Markdown:  markdown,
	}
	for _, a := range args {
		if a == "-" {
			req.Stdin = true
			continue
		}
		req.Words = append(req.Words, a)
	}
	return req
}

// reportProsody logs the active factors and warns about those outside the
// range the engine documents. They are passed on unchanged.
func reportProsody(mods *prosody.Modifier) {
	if !mods.IsChanged() {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(mods.StatusMessage()), "\n") {
		log.Info(line)
	}

	settings := mods.Settings()
	for _, p := range []prosody.Param{prosody.Speed, prosody.Pitch, prosody.Volume} {
		v, ok := settings.Get(p)
		if !ok {
			continue
		}
		if r := prosody.Ranges[p]; !r.Contains(v) {
			log.Warn("Prosody factor out of range, passing it on anyway",
				"param", p, "value", v, "min", r.Min, "max", r.Max)
		}
	}
}

func reportFile(path string, truncated bool) {
	var size string
	if st, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(st.Size())) //nolint:gosec
	} else if errors.Is(err, os.ErrNotExist) {
		log.Warn("Output file was not written", "path", path)
		return
	}

	if truncated {
		log.Warn("Output file is truncated", "path", path, "size", size)
		return
	}
	log.Info("Wrote file", "path", path, "size", size)
}
