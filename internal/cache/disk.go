package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/mitchellh/go-homedir"
)

const (
	fileSuffix = ".pcm"

	// header: magic, version, flags, two reserved bytes, sample rate
	headerSize     = 12
	headerVersion  = 1
	flagCompressed = 1 << 0

	// only compress if larger than this
	compressThreshold = 1024
)

var magic = [4]byte{'N', 'T', 'P', 'C'}

// DiskCache stores one file per entry in a directory. File modification
// times double as last-access times for eviction and expiry.
type DiskCache struct {
	basePath string
	capacity int64
	ttl      time.Duration

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu sync.Mutex
}

// NewDiskCache opens or creates a cache in cfg.Dir.
func NewDiskCache(cfg Config) (*DiskCache, error) {
	if cfg.Dir == "" {
		return nil, errors.New("cache directory not set")
	}
	basePath, err := homedir.Expand(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand cache directory: %w", err)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: cfg.Capacity(),
		ttl:      cfg.TTL,
	}

	if cfg.CompressionLevel > 0 {
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.CompressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// Entries written with compression stay readable after it is turned off.
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return dc, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string { return dc.basePath }

// Get returns the entry stored under key. Corrupted entries are removed and
// reported as ErrCacheCorrupted.
func (dc *DiskCache) Get(key string) (Entry, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	path := dc.filePath(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, ErrCacheMiss
	}
	if err != nil {
		return Entry{}, err
	}

	e, err := dc.decode(data)
	if err != nil {
		_ = os.Remove(path)
		return Entry{}, err
	}

	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return e, nil
}

// Put stores e under key and evicts the least recently used entries until
// the cache fits its capacity again.
func (dc *DiskCache) Put(key string, e Entry) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data := dc.encode(e)
	if int64(len(data)) > dc.capacity {
		return ErrItemTooLarge
	}

	path := dc.filePath(key)
	if err := dc.writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	_, err := dc.evict(path)
	return err
}

// Prune removes expired entries and shrinks the cache to its capacity. It
// returns the number of entries removed.
func (dc *DiskCache) Prune() (int, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	return dc.evict("")
}

// Clear removes every entry.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	files, err := dc.list()
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats reports the entries currently on disk.
func (dc *DiskCache) Stats() (Stats, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	files, err := dc.list()
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Dir: dc.basePath, Entries: len(files)}
	for i, f := range files {
		s.Size += f.size
		if i == 0 {
			s.Oldest = f.modTime
		}
		s.Newest = f.modTime
	}
	return s, nil
}

// Close releases the zstd coders.
func (dc *DiskCache) Close() error {
	if dc.encoder != nil {
		_ = dc.encoder.Close()
	}
	dc.decoder.Close()
	return nil
}

func (dc *DiskCache) encode(e Entry) []byte {
	pcm := make([]byte, 2*len(e.Samples))
	for i, s := range e.Samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}

	var flags byte
	payload := pcm
	if dc.encoder != nil && len(pcm) > compressThreshold {
		// Only use compression if it actually reduces size
		if compressed := dc.encoder.EncodeAll(pcm, nil); len(compressed) < len(pcm) {
			payload = compressed
			flags |= flagCompressed
		}
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, magic[:])
	out[4] = headerVersion
	out[5] = flags
	binary.LittleEndian.PutUint32(out[8:], uint32(e.SampleRate)) //nolint:gosec
	return append(out, payload...)
}

func (dc *DiskCache) decode(data []byte) (Entry, error) {
	if len(data) < headerSize || [4]byte(data[:4]) != magic || data[4] != headerVersion {
		return Entry{}, fmt.Errorf("%w: bad header", ErrCacheCorrupted)
	}
	flags := data[5]
	rate := int(binary.LittleEndian.Uint32(data[8:]))
	pcm := data[headerSize:]

	if flags&flagCompressed != 0 {
		var err error
		pcm, err = dc.decoder.DecodeAll(pcm, nil)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
		}
	}
	if len(pcm)%2 != 0 || rate <= 0 {
		return Entry{}, fmt.Errorf("%w: bad payload", ErrCacheCorrupted)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:])) //nolint:gosec
	}
	return Entry{SampleRate: rate, Samples: samples}, nil
}

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

// list returns the cache files, least recently used first.
func (dc *DiskCache) list() ([]cacheFile, error) {
	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	files := make([]cacheFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(dc.basePath, e.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, nil
}

// evict removes expired files, then the oldest files until the total fits
// the capacity. keep is never removed.
func (dc *DiskCache) evict(keep string) (int, error) {
	files, err := dc.list()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}

	removed := 0
	cutoff := time.Now().Add(-dc.ttl)
	for _, f := range files {
		if f.path == keep {
			continue
		}
		expired := dc.ttl > 0 && f.modTime.Before(cutoff)
		if !expired && total <= dc.capacity {
			continue
		}
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		total -= f.size
		removed++
	}
	return removed, nil
}

func (dc *DiskCache) filePath(key string) string {
	return filepath.Join(dc.basePath, key+fileSuffix)
}

func (dc *DiskCache) writeFile(path string, data []byte) error {
	// Write to temp file first, then rename (atomic on most systems)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		_ = os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, path)
}
