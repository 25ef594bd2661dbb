package notehub

import (
	"log/slog"
	"time"

	"github.com/aretw0/notehub/internal/platform"
	"github.com/aretw0/notehub/pkg/core"
	"github.com/aretw0/notehub/pkg/view"
)

// --- Types ---

// App is the wired application: storage, session and note repository.
type App = platform.App

// Note is a public alias for the core note.
type Note = core.Note

// Patch is a public alias for a partial note update.
type Patch = core.Patch

// User is a public alias for the session user.
type User = core.User

// Query is a public alias for the view predicates.
type Query = view.Query

// --- Configuration ---

// Option defines a functional option for configuring notehub.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage allows injecting a custom storage adapter.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithAdapter allows specifying the storage adapter to use by name ("fs" or "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithDebounce sets the quiet period before notes are written.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithReadyDelay sets how long Boot waits for storage before restoring the session.
func WithReadyDelay(d time.Duration) Option {
	return platform.WithReadyDelay(d)
}

// WithClock replaces the wall clock.
func WithClock(c core.Clock) Option {
	return platform.WithClock(c)
}

// WithMaxValueBytes caps the size of a single stored value.
func WithMaxValueBytes(n int) Option {
	return platform.WithMaxValueBytes(n)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety toggles the dev sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a notehub App storing its data under dir.
func New(dir string, opts ...Option) (*App, error) {
	return platform.New(dir, opts...)
}

// --- Views ---

// CompileFilter compiles an expression usable as Query.Where.
func CompileFilter(source string) (*view.Expr, error) {
	return view.Compile(source)
}

// --- Safety & Utils ---

// ResolveDataDir determines the actual data directory based on safety rules.
func ResolveDataDir(userPath string, sandbox bool) string {
	return platform.ResolveDataDir(userPath, sandbox)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindDataDir recursively looks upwards for a .notehub directory.
func FindDataDir(startDir string) (string, error) {
	return platform.FindDataDir(startDir)
}
