package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cvrp-optimizer/internal/domain"
	"cvrp-optimizer/internal/ports"
)

// schemaVersion is written into every cache file's header; bumping it
// invalidates every previously written file without touching their bytes.
const schemaVersion uint32 = 1

const headerProviderIDLen = 64

// FileCache persists matrix cache entries as one file per entry, named
// "{hex_hash}.bin", each holding a fixed header followed by two N×N int32
// arrays (meters, seconds) in row-major order. Writes are atomic: the
// payload is written to a temp file in the same directory, then renamed
// into place.
type FileCache struct {
	dir string
	ttl time.Duration
}

var _ ports.MatrixCache = (*FileCache)(nil)

// NewFileCache builds a FileCache rooted at dir, creating it if needed.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file cache: create directory %q: %w", dir, err)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

func (c *FileCache) path(key domain.MatrixCacheKey) string {
	return filepath.Join(c.dir, FileName(key))
}

// Get reads the entry for key, treating a corrupt or unreadable file as a
// cache miss per domain.ErrCacheCorrupt's recovery policy.
func (c *FileCache) Get(ctx context.Context, key domain.MatrixCacheKey) (*domain.MatrixCacheEntry, bool, error) {
	f, err := os.Open(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, nil
	}
	defer f.Close()

	entry, err := decodeEntry(f, key)
	if err != nil {
		return nil, false, nil
	}

	if entry.Stale(time.Now(), c.ttl) {
		return nil, false, nil
	}

	return entry, true, nil
}

// Put writes entry atomically: payload goes to a temp file in the same
// directory, then is renamed into place so concurrent readers never observe
// a partially written file.
func (c *FileCache) Put(ctx context.Context, entry domain.MatrixCacheEntry) error {
	finalPath := c.path(entry.Key)
	tmp, err := os.CreateTemp(c.dir, "matrix-*.tmp")
	if err != nil {
		return fmt.Errorf("file cache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if err := encodeEntry(tmp, entry); err != nil {
		return fmt.Errorf("file cache: encode entry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("file cache: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file cache: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("file cache: rename into place: %w", err)
	}
	return nil
}

func encodeEntry(w io.Writer, entry domain.MatrixCacheEntry) error {
	m := entry.Matrix

	var providerID [headerProviderIDLen]byte
	copy(providerID[:], entry.ProviderID)

	header := struct {
		Version    uint32
		ProviderID [headerProviderIDLen]byte
		TimestampU int64
		N          int32
	}{
		Version:    schemaVersion,
		ProviderID: providerID,
		TimestampU: entry.BuiltAt.Unix(),
		N:          int32(m.N),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	distances := make([]int32, len(m.DistanceM))
	for i, v := range m.DistanceM {
		distances[i] = int32(v)
	}
	if err := binary.Write(w, binary.LittleEndian, distances); err != nil {
		return err
	}

	durations := make([]int32, len(m.DurationS))
	for i, v := range m.DurationS {
		durations[i] = int32(v)
	}
	return binary.Write(w, binary.LittleEndian, durations)
}

func decodeEntry(r io.Reader, key domain.MatrixCacheKey) (*domain.MatrixCacheEntry, error) {
	var header struct {
		Version    uint32
		ProviderID [headerProviderIDLen]byte
		TimestampU int64
		N          int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrCacheCorrupt, err)
	}
	if header.Version != schemaVersion {
		return nil, fmt.Errorf("%w: schema version %d unsupported", domain.ErrCacheCorrupt, header.Version)
	}
	if header.N <= 0 {
		return nil, fmt.Errorf("%w: non-positive N %d", domain.ErrCacheCorrupt, header.N)
	}

	n := int(header.N)
	distances := make([]int32, n*n)
	if err := binary.Read(r, binary.LittleEndian, distances); err != nil {
		return nil, fmt.Errorf("%w: read distances: %v", domain.ErrCacheCorrupt, err)
	}
	durations := make([]int32, n*n)
	if err := binary.Read(r, binary.LittleEndian, durations); err != nil {
		return nil, fmt.Errorf("%w: read durations: %v", domain.ErrCacheCorrupt, err)
	}

	m := &domain.Matrix{
		N:         n,
		DistanceM: make([]int64, n*n),
		DurationS: make([]int64, n*n),
		Degraded:  make([]bool, n*n),
	}
	for i := range distances {
		m.DistanceM[i] = int64(distances[i])
		m.DurationS[i] = int64(durations[i])
	}

	providerID := trimNulls(header.ProviderID[:])

	return &domain.MatrixCacheEntry{
		Key:        key,
		Matrix:     m,
		BuiltAt:    time.Unix(header.TimestampU, 0),
		ProviderID: providerID,
	}, nil
}

func trimNulls(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}
