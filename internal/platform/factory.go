package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/notehub/pkg/adapters/fs"
	"github.com/aretw0/notehub/pkg/adapters/memory"
	"github.com/aretw0/notehub/pkg/core"
	"github.com/aretw0/notehub/pkg/notes"
	"github.com/aretw0/notehub/pkg/session"
)

// app, err := notehub.New("./data", notehub.WithDebounce(time.Second))
// The dir argument is only used by the "fs" adapter.
func New(dir string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.clock == nil {
		o.clock = core.SystemClock()
	}

	storage, dataDir, err := initStorage(dir, o)
	if err != nil {
		return nil, err
	}

	app := &App{
		Storage: storage,
		DataDir: dataDir,
		Session: session.NewStore(session.Config{
			Storage:    storage,
			Logger:     o.logger.With("component", "session"),
			Clock:      o.clock,
			ReadyDelay: o.readyDelay,
		}),
		Notes: notes.NewRepository(notes.Config{
			Storage:  storage,
			Logger:   o.logger.With("component", "notes"),
			Clock:    o.clock,
			Debounce: o.debounce,
		}),
		logger: o.logger,
	}
	return app, nil
}

func initStorage(dir string, o *options) (core.Storage, string, error) {
	if o.storage != nil {
		return o.storage, "", nil
	}

	switch o.adapter {
	case "memory":
		return memory.New(memory.WithMaxValueBytes(o.maxValueBytes)), "", nil
	case "fs":
		sandbox := o.forceTemp || (o.devSafety && IsDevRun())
		resolved := ResolveDataDir(dir, sandbox)
		if sandbox && resolved != dir {
			o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", dir, "resolved_path", resolved)
		}

		s := fs.NewStorage(fs.Config{
			Path:          resolved,
			Logger:        o.logger.With("component", "storage"),
			MaxValueBytes: o.maxValueBytes,
		})
		if err := s.Initialize(context.Background()); err != nil {
			return nil, "", err
		}
		return s, resolved, nil
	default:
		return nil, "", fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}
