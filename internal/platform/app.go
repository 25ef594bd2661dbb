// Package platform is the composition root: it wires a storage adapter, the
// session store and the note repository into an App.
package platform

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notehub/pkg/core"
	"github.com/aretw0/notehub/pkg/notes"
	"github.com/aretw0/notehub/pkg/session"
	"github.com/aretw0/notehub/pkg/view"
)

// App keeps the note repository scoped to the session user.
type App struct {
	Storage core.Storage
	Session *session.Store
	Notes   *notes.Repository
	DataDir string // empty for non-file adapters

	logger *slog.Logger
}

// Boot restores the persisted session and loads that user's notes.
func (a *App) Boot(ctx context.Context) (core.User, bool) {
	user, ok := a.Session.Restore(ctx)
	if !ok {
		a.Notes.Load(ctx, "")
		return core.User{}, false
	}
	a.Notes.Load(ctx, user.ID)
	return user, true
}

// Login starts a new session and switches the repository to the new user.
// The repository is switched even if the session could not be persisted.
func (a *App) Login(ctx context.Context, username string) (core.User, error) {
	user, err := a.Session.Login(ctx, username)
	if errors.Is(err, core.ErrEmptyUsername) {
		return core.User{}, err
	}
	a.Notes.Load(ctx, user.ID)
	return user, err
}

// Logout ends the session and unloads the notes. A save still pending is
// dropped, exactly like a teardown.
func (a *App) Logout(ctx context.Context) error {
	a.Notes.Load(ctx, "")
	return a.Session.Logout(ctx)
}

// View derives the displayed notes for q.
func (a *App) View(q view.Query) []core.Note {
	return view.Apply(a.Notes.Notes(), q)
}

// Categories lists the categories of the loaded collection.
func (a *App) Categories() []string {
	return view.Categories(a.Notes.Notes())
}

// Watch reports external changes to the current user's notes when the
// storage supports it.
func (a *App) Watch(ctx context.Context) (<-chan core.Change, error) {
	userID := a.Notes.UserID()
	if userID == "" {
		return nil, core.ErrNoUser
	}
	w, ok := a.Storage.(core.Watchable)
	if !ok {
		return nil, errors.New("storage does not support watching")
	}
	return w.Watch(ctx, notes.StorageKey(userID))
}

// Reload re-reads the current user's notes from storage, discarding a
// pending save.
func (a *App) Reload(ctx context.Context) {
	a.Notes.Load(ctx, a.Notes.UserID())
}

// Close tears the app down. Pending saves are cancelled, not written.
func (a *App) Close() {
	a.Notes.Close()
}

// AppState exposes internal state for observability.
type AppState struct {
	DataDir string `json:"data_dir,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Notes   any    `json:"notes"`
	Storage any    `json:"storage,omitempty"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	state := AppState{
		DataDir: a.DataDir,
		Notes:   a.Notes.State(),
	}
	if u, ok := a.Session.Current(); ok {
		state.UserID = u.ID
	}
	if intro, ok := a.Storage.(introspection.Introspectable); ok {
		state.Storage = intro.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (a *App) ComponentType() string {
	return "app"
}

var _ introspection.Introspectable = (*App)(nil)
var _ introspection.Component = (*App)(nil)
