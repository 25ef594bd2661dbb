// Package notes owns the current user's note collection and its debounced
// persistence.
//
// Every mutation is applied to memory immediately and flips the save status
// to saving. The durable write happens once the collection has been quiet for
// the debounce delay; each new mutation restarts the wait. Storage failures
// only ever surface through Status.
package notes

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/notehub/internal/debounce"
	"github.com/aretw0/notehub/pkg/core"
)

// DefaultDebounce is the quiet period before a durable write.
const DefaultDebounce = 500 * time.Millisecond

const noteIDPrefix = "note_"

// Config holds the dependencies of a Repository.
type Config struct {
	Storage  core.Storage
	Logger   *slog.Logger
	Clock    core.Clock
	Debounce time.Duration // Zero means DefaultDebounce.
}

// Repository is the in-memory collection of one user plus its persistence
// schedule. Instances are independent; nothing is shared between them.
type Repository struct {
	storage  core.Storage
	logger   *slog.Logger
	clock    core.Clock
	debounce *debounce.Debouncer

	// writeMu serializes durable writes so a stale snapshot never lands last.
	writeMu sync.Mutex

	mu      sync.Mutex
	userID  string
	notes   []core.Note
	status  core.SaveStatus
	gen     uint64 // bumped on every mutation and on Load
	writes  int
	lastErr error
	closed  bool
}

// NewRepository creates a Repository with no user loaded.
func NewRepository(config Config) *Repository {
	r := &Repository{
		storage: config.Storage,
		logger:  config.Logger,
		clock:   config.Clock,
		status:  core.StatusSaved,
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.clock == nil {
		r.clock = core.SystemClock()
	}
	delay := config.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	r.debounce = debounce.New(r.clock, delay)
	return r
}

// Load replaces the collection with the one stored for userID. A pending save
// for the previous user is dropped. A missing or corrupt record yields an empty
// collection. An empty userID unloads the repository.
func (r *Repository) Load(ctx context.Context, userID string) {
	r.debounce.Cancel()

	var loaded []core.Note
	if userID != "" {
		loaded = r.read(ctx, userID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	r.userID = userID
	r.notes = loaded
	r.status = core.StatusSaved
	r.lastErr = nil
	r.closed = false
}

func (r *Repository) read(ctx context.Context, userID string) []core.Note {
	raw, ok, err := r.storage.Read(ctx, StorageKey(userID))
	if err != nil {
		r.logger.Error("failed to read stored notes", "user", userID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	loaded, skipped, err := decode(raw)
	if err != nil {
		r.logger.Error("failed to parse stored notes, starting empty", "user", userID, "error", err)
		return nil
	}
	if skipped > 0 {
		r.logger.Warn("dropped stored notes without an id", "user", userID, "count", skipped)
	}
	r.logger.Debug("notes loaded", "user", userID, "count", len(loaded))
	return loaded
}

// Add creates a note and puts it first. The category defaults to "general".
// It returns false when no user is loaded.
func (r *Repository) Add(title, content string, category ...string) (core.Note, bool) {
	cat := core.DefaultCategory
	if len(category) > 0 {
		cat = normalizeCategory(category[0])
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.userID == "" {
		return core.Note{}, false
	}

	now := r.now()
	n := core.Note{
		ID:        newNoteID(now),
		Title:     title,
		Content:   content,
		Color:     core.ColorYellow,
		Category:  cat,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.notes = append([]core.Note{n}, r.notes...)
	r.scheduleSave()
	return n, true
}

// Update merges the non-nil fields of p into the note id and refreshes
// UpdatedAt. It returns false if the note does not exist.
func (r *Repository) Update(id string, p core.Patch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(id, func(n *core.Note) { r.apply(n, p) })
}

// Delete removes the note id permanently.
func (r *Repository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.userID == "" {
		return false
	}
	i := r.indexOf(id)
	if i < 0 {
		return false
	}
	r.notes = slices.Delete(slices.Clone(r.notes), i, i+1)
	r.scheduleSave()
	return true
}

// TogglePin flips IsPinned of the note id.
func (r *Repository) TogglePin(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(id, func(n *core.Note) { n.IsPinned = !n.IsPinned })
}

// SetColor recolors the note id. Unknown colors are rejected as a no-op.
func (r *Repository) SetColor(id string, c core.Color) bool {
	if !c.Valid() {
		r.logger.Warn("ignoring unknown note color", "note", id, "color", string(c))
		return false
	}
	return r.Update(id, core.Patch{Color: &c})
}

// update runs fn on a copy of the note id, stores it and schedules a save.
// Callers hold r.mu.
func (r *Repository) update(id string, fn func(*core.Note)) bool {
	if r.userID == "" {
		return false
	}
	i := r.indexOf(id)
	if i < 0 {
		return false
	}

	n := r.notes[i]
	fn(&n)
	n.ID = r.notes[i].ID
	n.CreatedAt = r.notes[i].CreatedAt
	n.UpdatedAt = r.now()
	if n.UpdatedAt.Before(n.CreatedAt) {
		n.UpdatedAt = n.CreatedAt
	}

	updated := slices.Clone(r.notes)
	updated[i] = n
	r.notes = updated
	r.scheduleSave()
	return true
}

func (r *Repository) apply(n *core.Note, p core.Patch) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Color != nil {
		if p.Color.Valid() {
			n.Color = *p.Color
		} else {
			r.logger.Warn("ignoring unknown note color", "note", n.ID, "color", string(*p.Color))
		}
	}
	if p.Category != nil {
		n.Category = normalizeCategory(*p.Category)
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.PaperStyle != nil {
		n.PaperStyle = *p.PaperStyle
	}
	if p.PinStyle != nil {
		n.PinStyle = *p.PinStyle
	}
}

// Notes returns a copy of the collection in stored order (newest created first).
func (r *Repository) Notes() []core.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notes)
}

// Get returns the note id.
func (r *Repository) Get(id string) (core.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.notes[i], true
	}
	return core.Note{}, false
}

// Status reports whether the collection is durable.
func (r *Repository) Status() core.SaveStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// UserID returns the loaded user, or "" when none is.
func (r *Repository) UserID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userID
}

// Flush makes the collection durable before returning. A pending save is
// performed right away; a save already in flight is waited for and the
// collection written again, so Flush never returns ahead of the disk.
// It returns nil when everything is already saved.
func (r *Repository) Flush(ctx context.Context) error {
	r.debounce.Cancel()

	r.mu.Lock()
	dirty := r.status != core.StatusSaved && !r.closed && r.userID != ""
	r.mu.Unlock()
	if !dirty {
		return nil
	}
	return r.persist(ctx)
}

// Close cancels a pending save without writing it. Mutations after Close are
// still applied in memory but never persisted until the next Load.
func (r *Repository) Close() {
	r.debounce.Cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// scheduleSave restarts the debounce timer. Callers hold r.mu.
// After Close nothing is scheduled and the status is left alone.
func (r *Repository) scheduleSave() {
	r.gen++
	if r.closed {
		return
	}
	r.status = core.StatusSaving
	r.debounce.Trigger(func() {
		_ = r.persist(context.Background())
	})
}

// persist writes a snapshot of the collection. The outcome only lands in the
// status when no mutation happened while the write was in flight.
func (r *Repository) persist(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	if r.closed || r.userID == "" {
		r.mu.Unlock()
		return nil
	}
	gen := r.gen
	userID := r.userID
	snapshot := r.notes
	r.mu.Unlock()

	data, err := Encode(snapshot)
	if err == nil {
		err = r.storage.Write(ctx, StorageKey(userID), data)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes++
	r.lastErr = err
	if err != nil {
		r.logger.Error("failed to save notes", "user", userID, "error", err)
	} else {
		r.logger.Debug("notes saved", "user", userID, "count", len(snapshot))
	}

	if r.gen != gen || r.userID != userID {
		return err
	}
	if err != nil {
		r.status = core.StatusError
	} else {
		r.status = core.StatusSaved
	}
	return err
}

// normalizeCategory trims c; a blank category becomes the default one.
func normalizeCategory(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return core.DefaultCategory
	}
	return c
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.notes, func(n core.Note) bool { return n.ID == id })
}

// now is millisecond precision so that a stored note round-trips unchanged.
func (r *Repository) now() time.Time {
	return time.UnixMilli(r.clock.Now().UnixMilli())
}

func newNoteID(now time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		return noteIDPrefix + now.Format("20060102150405.000000000")
	}
	return noteIDPrefix + id.String()
}
