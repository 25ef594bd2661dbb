package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/notehub/pkg/core"
)

// options holds the internal configuration for a notehub App.
type options struct {
	storage       core.Storage
	logger        *slog.Logger
	clock         core.Clock
	adapter       string
	debounce      time.Duration
	readyDelay    time.Duration
	maxValueBytes int
	forceTemp     bool
	devSafety     bool
}

// Option defines a functional option for configuring notehub.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:   "fs",
		devSafety: true,
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a custom storage adapter (e.g. memory, a mock).
// If provided, the adapter selected by WithAdapter is skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default) or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithDebounce sets the quiet period before notes are written.
// Zero means the default (500ms).
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithReadyDelay sets how long Boot waits for storage before restoring the session.
// Negative disables the wait.
func WithReadyDelay(d time.Duration) Option {
	return func(o *options) {
		o.readyDelay = d
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c core.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMaxValueBytes caps the size of a single stored value, like a browser quota.
func WithMaxValueBytes(n int) Option {
	return func(o *options) {
		o.maxValueBytes = n
	}
}

// WithForceTemp redirects the data directory into the system temp dir.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the data directory is redirected to a temp location so a
// dev run never touches real notes.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}
