// Package lifecycle exposes storage change notifications as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notehub/pkg/core"
)

type changeSource struct {
	changes      <-chan core.Change
	out          chan lifecycle.Event
	skipRemovals bool
}

// Option configures a change source.
type Option func(*changeSource)

// SkipRemovals drops changes reporting a deleted key. A viewer that reloads on
// every event would otherwise render an empty collection whenever the record
// disappears, e.g. after the owner is switched away.
func SkipRemovals() Option {
	return func(s *changeSource) {
		s.skipRemovals = true
	}
}

// NewSource creates a lifecycle.Source that emits storage changes.
// core.Change satisfies lifecycle.Event through its String method.
func NewSource(changes <-chan core.Change, opts ...Option) lifecycle.Source {
	s := &changeSource{
		changes: changes,
		out:     make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards changes until ctx is done or the change channel closes,
// then closes Events.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-s.changes:
				if !ok {
					return nil
				}
				if c.Removed && s.skipRemovals {
					continue
				}
				select {
				case s.out <- c:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
