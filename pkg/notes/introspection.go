package notes

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	UserID      string `json:"user_id,omitempty"`
	NoteCount   int    `json:"note_count"`
	Status      string `json:"status"`
	SavePending bool   `json:"save_pending"`
	Writes      int    `json:"writes"`
	LastError   string `json:"last_error,omitempty"`
	DebounceMs  int64  `json:"debounce_ms"`
	Closed      bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	pending := r.debounce.Pending()

	r.mu.Lock()
	defer r.mu.Unlock()

	state := RepositoryState{
		UserID:      r.userID,
		NoteCount:   len(r.notes),
		Status:      r.status.String(),
		SavePending: pending,
		Writes:      r.writes,
		DebounceMs:  r.debounce.Delay().Milliseconds(),
		Closed:      r.closed,
	}
	if r.lastErr != nil {
		state.LastError = r.lastErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "notes"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
