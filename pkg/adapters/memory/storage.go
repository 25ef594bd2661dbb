// Package memory provides an in-process core.Storage, used by tests and the
// "memory" adapter.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/aretw0/notehub/pkg/core"
)

// Storage implements core.Storage on top of an expiration-free go-cache.
type Storage struct {
	items *cache.Cache

	mu            sync.Mutex
	writes        int
	maxValueBytes int
	fault         func(key, value string) error
}

// Option configures a Storage.
type Option func(*Storage)

// WithMaxValueBytes rejects writes whose value exceeds n bytes. Zero disables the quota.
func WithMaxValueBytes(n int) Option {
	return func(s *Storage) {
		s.maxValueBytes = n
	}
}

// WithWriteFault installs a hook consulted before every write.
// A non-nil error aborts the write.
func WithWriteFault(fn func(key, value string) error) Option {
	return func(s *Storage) {
		s.fault = fn
	}
}

// New creates an empty Storage.
func New(opts ...Option) *Storage {
	s := &Storage{
		items: cache.New(cache.NoExpiration, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read implements core.Storage.
func (s *Storage) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Write implements core.Storage.
func (s *Storage) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStorageFailure, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return fmt.Errorf("%w: value for %q exceeds quota (%d > %d bytes)", core.ErrStorageFailure, key, len(value), s.maxValueBytes)
	}
	if s.fault != nil {
		if err := s.fault(key, value); err != nil {
			return fmt.Errorf("%w: %w", core.ErrStorageFailure, err)
		}
	}

	s.items.Set(key, value, cache.NoExpiration)
	return nil
}

// Remove implements core.Storage.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.items.Delete(key)
	return nil
}

// SetWriteFault replaces the write fault hook. Pass nil to clear it.
func (s *Storage) SetWriteFault(fn func(key, value string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// Writes returns the number of write attempts, failed ones included.
func (s *Storage) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Keys returns the stored keys in ascending order.
func (s *Storage) Keys() []string {
	items := s.items.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ core.Storage = (*Storage)(nil)
