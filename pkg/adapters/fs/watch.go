package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notehub/internal/debounce"
	"github.com/aretw0/notehub/pkg/core"
)

// Watch implements core.Watchable. Bursts of filesystem events on one key are
// coalesced into a single Change once the key has been quiet for WatchDebounce.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Change, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w := &watchWorker{
		storage:  s,
		pattern:  pattern,
		watcher:  watcher,
		debounce: debounce.NewGroup(s.config.Clock, s.config.WatchDebounce),
		out:      make(chan core.Change, 16),
		cancel:   cancel,
	}

	s.setWatcherActive(true)
	lifecycle.Go(runCtx, w.run, lifecycle.WithErrorHandler(func(err error) {
		s.config.Logger.Error("watcher panic", "error", err)
	}))

	return w.out, nil
}

type watchWorker struct {
	storage  *Storage
	pattern  string
	watcher  *fsnotify.Watcher
	debounce *debounce.Group
	cancel   context.CancelFunc

	mu     sync.Mutex
	out    chan core.Change
	closed bool
}

func (w *watchWorker) run(ctx context.Context) error {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.storage.config.Logger.Error("fsnotify error", "error", err)
		}
	}
}

// handle filters an fsnotify event down to a key and debounces it.
func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	key, ok := w.storage.keyFor(filepath.Base(event.Name))
	if !ok {
		return
	}
	if w.pattern != "" {
		if match, _ := doublestar.Match(w.pattern, key); !match {
			return
		}
	}

	path := event.Name
	w.debounce.Trigger(key, func() {
		// Atomic writes show up as create+rename; the final state is what counts.
		_, err := os.Stat(path)
		w.send(ctx, core.Change{
			Key:       key,
			Removed:   errors.Is(err, os.ErrNotExist),
			Timestamp: w.storage.config.Clock.Now(),
		})
	})
}

func (w *watchWorker) send(ctx context.Context, c core.Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	select {
	case w.out <- c:
	case <-ctx.Done():
	}
}

func (w *watchWorker) shutdown() {
	w.debounce.Stop()
	w.cancel()
	_ = w.watcher.Close()

	w.mu.Lock()
	w.closed = true
	close(w.out)
	w.mu.Unlock()

	w.storage.setWatcherActive(false)
}
