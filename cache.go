package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nanotts/nanotts/internal/cache"
	"github.com/nanotts/nanotts/internal/config"
	"github.com/nanotts/nanotts/internal/prosody"
	"github.com/nanotts/nanotts/internal/voice"
)

// openCache opens the audio cache, falling back to the user cache
// directory when none is configured.
func openCache(cc cache.Config) (*cache.DiskCache, error) {
	if cc.Dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("no cache directory configured: %w", err)
		}
		cc.Dir = filepath.Join(base, "nanotts")
	}
	return cache.NewDiskCache(cc)
}

// cacheKey covers everything that shapes the synthesized audio.
func cacheKey(cfg config.Config, entry voice.Entry, mods *prosody.Modifier, text []byte) cache.Key {
	k := cache.Key{
		Engine: cfg.Engine,
		Voice:  entry.Name,
		Text:   text,
	}
	if cfg.Engine == config.EngineExec {
		k.Variant = fmt.Sprintf("%s@%d", cfg.Exec.Command, cfg.Exec.SampleRate)
	}
	if mods != nil && mods.IsChanged() {
		k.Opener = mods.Opener()
		k.Closer = mods.Closer()
	}
	return k
}
