// Package debounce implements trailing-edge debouncing on top of core.Clock.
package debounce

import (
	"sync"
	"time"

	"github.com/aretw0/notehub/pkg/core"
)

// Debouncer runs the most recently triggered function once the delay has
// elapsed without a new trigger. At most one call is pending at a time.
type Debouncer struct {
	clock core.Clock
	delay time.Duration

	mu    sync.Mutex
	timer core.Timer
	gen   uint64
}

// New creates a Debouncer. A nil clock means the system clock.
func New(clock core.Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger cancels any pending call and schedules fn after the delay.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A real timer may fire after Stop lost the race; the generation tells.
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any, and reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Group debounces independently per key, e.g. one timer per watched file.
type Group struct {
	clock core.Clock
	delay time.Duration

	mu      sync.Mutex
	members map[string]*Debouncer
	stopped bool
}

// NewGroup creates an empty Group.
func NewGroup(clock core.Clock, delay time.Duration) *Group {
	return &Group{
		clock:   clock,
		delay:   delay,
		members: make(map[string]*Debouncer),
	}
}

// Trigger debounces fn under key. It is a no-op once the group is stopped.
func (g *Group) Trigger(key string, fn func()) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	d, ok := g.members[key]
	if !ok {
		d = New(g.clock, g.delay)
		g.members[key] = d
	}
	g.mu.Unlock()

	d.Trigger(fn)
}

// Stop cancels every pending call and refuses new triggers.
func (g *Group) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopped = true
	for _, d := range g.members {
		d.Cancel()
	}
}
