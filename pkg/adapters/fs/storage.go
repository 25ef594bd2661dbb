// Package fs implements core.Storage on a local directory: one file per key,
// replaced atomically on every write.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/notehub/pkg/core"
)

// DefaultExtension is appended to every key file name.
const DefaultExtension = ".json"

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path          string
	Logger        *slog.Logger
	Extension     string        // e.g. ".json"
	MaxValueBytes int           // Zero means unlimited. Exceeding it fails the write like a full localStorage.
	WatchDebounce time.Duration // Quiet period before a watched change is reported. Zero means 50ms.
	Clock         core.Clock
}

// Storage implements core.Storage using files under Config.Path.
type Storage struct {
	Path   string
	config Config

	mu            sync.RWMutex
	writes        int
	failures      int
	lastWrite     *time.Time
	watchersAlive int
}

// NewStorage creates a new filesystem-backed storage. Call Initialize before use.
func NewStorage(config Config) *Storage {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.WatchDebounce <= 0 {
		config.WatchDebounce = 50 * time.Millisecond
	}
	if config.Clock == nil {
		config.Clock = core.SystemClock()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Storage{
		Path:   config.Path,
		config: config,
	}
}

// Initialize creates the data directory and removes leftovers of interrupted writes.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.Path == "" {
		return fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	n, err := removeStaleTemps(s.Path)
	if err != nil {
		return fmt.Errorf("failed to scan data directory: %w", err)
	}
	if n > 0 {
		s.config.Logger.Warn("removed stale temp files", "count", n, "path", s.Path)
	}
	return nil
}

// Read implements core.Storage.
func (s *Storage) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Write implements core.Storage.
func (s *Storage) Write(ctx context.Context, key, value string) error {
	err := s.write(ctx, key, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if err != nil {
		s.failures++
		return err
	}
	now := time.Now()
	s.lastWrite = &now
	return nil
}

func (s *Storage) write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageFailure, err)
	}
	if key == "" {
		return fmt.Errorf("%w: empty key", core.ErrStorageFailure)
	}
	if s.config.MaxValueBytes > 0 && len(value) > s.config.MaxValueBytes {
		return fmt.Errorf("%w: value for %q exceeds quota (%d > %d bytes)", core.ErrStorageFailure, key, len(value), s.config.MaxValueBytes)
	}

	path := s.filename(key)
	s.config.Logger.Debug("writing key to disk", "key", key, "path", path, "bytes", len(value))
	if err := writeFileAtomic(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("%w: write %q: %w", core.ErrStorageFailure, key, err)
	}
	return nil
}

// Remove implements core.Storage.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.filename(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// Keys returns the stored keys matching pattern (doublestar glob syntax,
// "" matches everything), in ascending order.
func (s *Storage) Keys(pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q", pattern)
	}
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, ok := s.keyFor(e.Name())
		if !ok {
			continue
		}
		if pattern != "" {
			match, _ := doublestar.Match(pattern, key)
			if !match {
				continue
			}
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// filename maps a key to its file. Keys are path-escaped so any string is safe.
func (s *Storage) filename(key string) string {
	return filepath.Join(s.Path, url.PathEscape(key)+s.config.Extension)
}

// keyFor is the inverse of filename. It rejects temp files and foreign files.
func (s *Storage) keyFor(name string) (string, bool) {
	if strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, s.config.Extension) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, s.config.Extension))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

var _ core.Storage = (*Storage)(nil)
