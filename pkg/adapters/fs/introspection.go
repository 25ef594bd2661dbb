package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Path           string     `json:"path"`
	Extension      string     `json:"extension"`
	MaxValueBytes  int        `json:"max_value_bytes,omitempty"`
	Writes         int        `json:"writes"`
	FailedWrites   int        `json:"failed_writes"`
	LastWrite      *time.Time `json:"last_write,omitempty"`
	ActiveWatchers int        `json:"active_watchers"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StorageState{
		Path:           s.Path,
		Extension:      s.config.Extension,
		MaxValueBytes:  s.config.MaxValueBytes,
		Writes:         s.writes,
		FailedWrites:   s.failures,
		LastWrite:      s.lastWrite,
		ActiveWatchers: s.watchersAlive,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "storage"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)

func (s *Storage) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		s.watchersAlive++
	} else if s.watchersAlive > 0 {
		s.watchersAlive--
	}
}
