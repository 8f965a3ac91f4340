// Package cache keeps synthesized audio on disk so that repeated requests
// for the same text, voice and prosody skip the engine.
package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Config holds the cache settings.
type Config struct {
	Enabled bool `yaml:"enabled" env:"ENABLED" envDefault:"false"`

	// Dir defaults to the user cache directory when empty.
	Dir string `yaml:"dir" env:"DIR"`

	// MaxSizeMB bounds the bytes stored on disk.
	MaxSizeMB int `yaml:"max_size" env:"MAX_SIZE" envDefault:"100"`

	// TTL removes entries not used for this long.
	TTL time.Duration `yaml:"ttl" env:"TTL" envDefault:"168h"`

	// CompressionLevel is the zstd level, 1 to 22. Zero stores raw PCM.
	CompressionLevel int `yaml:"compression_level" env:"COMPRESSION_LEVEL" envDefault:"3"`
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSizeMB:        100,
		TTL:              7 * 24 * time.Hour,
		CompressionLevel: 3,
	}
}

// Capacity returns MaxSizeMB in bytes.
func (c Config) Capacity() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

// Entry is one cached synthesis result.
type Entry struct {
	SampleRate int
	Samples    []int16
}

// Stats describes what is on disk.
type Stats struct {
	Dir     string
	Entries int
	Size    int64
	Oldest  time.Time
	Newest  time.Time
}
