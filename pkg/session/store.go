// Package session keeps track of the current user behind the username gate.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/notehub/pkg/core"
)

const (
	// Key is the well-known storage key of the session record.
	Key = "user"

	// DefaultReadyDelay is how long Restore waits for the storage backend on boot.
	DefaultReadyDelay = 50 * time.Millisecond

	userIDPrefix = "user_"
)

// Config holds the dependencies of a Store.
type Config struct {
	Storage    core.Storage
	Logger     *slog.Logger
	Clock      core.Clock
	ReadyDelay time.Duration // Negative disables the wait. Zero means DefaultReadyDelay.
}

// Store owns the current user. At most one user is current; Login always
// replaces the previous session.
type Store struct {
	storage    core.Storage
	logger     *slog.Logger
	clock      core.Clock
	readyDelay time.Duration

	mu      sync.RWMutex
	current *core.User
}

// NewStore creates a Store with no current user.
func NewStore(config Config) *Store {
	s := &Store{
		storage:    config.Storage,
		logger:     config.Logger,
		clock:      config.Clock,
		readyDelay: config.ReadyDelay,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.clock == nil {
		s.clock = core.SystemClock()
	}
	if s.readyDelay == 0 {
		s.readyDelay = DefaultReadyDelay
	}
	return s
}

// Restore reloads the persisted session record. A corrupt record is removed
// and reported as absent. It returns false if ctx ends during the ready delay.
func (s *Store) Restore(ctx context.Context) (core.User, bool) {
	if !s.waitReady(ctx) {
		return core.User{}, false
	}

	raw, ok, err := s.storage.Read(ctx, Key)
	if err != nil {
		s.logger.Warn("failed to read session record", "error", err)
		return core.User{}, false
	}
	if !ok {
		return core.User{}, false
	}

	user, err := decodeUser(raw)
	if err != nil {
		s.logger.Warn("discarding corrupt session record", "error", err)
		if rmErr := s.storage.Remove(ctx, Key); rmErr != nil {
			s.logger.Warn("failed to remove corrupt session record", "error", rmErr)
		}
		return core.User{}, false
	}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()

	s.logger.Debug("session restored", "user", user.ID)
	return user, true
}

func (s *Store) waitReady(ctx context.Context) bool {
	if s.readyDelay < 0 {
		return ctx.Err() == nil
	}
	ready := make(chan struct{})
	timer := s.clock.AfterFunc(s.readyDelay, func() { close(ready) })
	select {
	case <-ready:
		return true
	case <-ctx.Done():
		timer.Stop()
		return false
	}
}

// Login makes a brand new user current and persists it. When persisting
// fails the user is still current in memory and the error is returned.
func (s *Store) Login(ctx context.Context, username string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}

	id, err := uuid.NewV7()
	if err != nil {
		return core.User{}, fmt.Errorf("failed to generate user id: %w", err)
	}
	user := core.User{ID: userIDPrefix + id.String(), Username: username}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		return user, fmt.Errorf("%w: encode session: %w", core.ErrStorageFailure, err)
	}
	if err := s.storage.Write(ctx, Key, string(data)); err != nil {
		return user, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("logged in", "user", user.ID, "username", user.Username)
	return user, nil
}

// Logout clears the persisted record and the current user.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, Key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if prev != nil {
		s.logger.Info("logged out", "user", prev.ID)
	}
	return nil
}

// Current returns the current user, if any.
func (s *Store) Current() (core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return core.User{}, false
	}
	return *s.current, true
}

func decodeUser(raw string) (core.User, error) {
	var user core.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return core.User{}, err
	}
	if user.ID == "" {
		return core.User{}, fmt.Errorf("session record has no id")
	}
	return user, nil
}
