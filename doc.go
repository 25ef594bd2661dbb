// Package notehub is the Composition Root for the notehub application.
//
// It connects the note core (Domain Layer) with the storage adapters
// (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// notehub is a single-device sticky-notes core. Notes live in memory and are
// written to a key-value store after a short quiet period, so a burst of edits
// costs a single durable write. Storage failures never block editing: they
// only show up as a save status.
//
// Features:
//
//   - **Debounced Persistence**: Trailing-edge writes, at most one pending per repository.
//   - **Self-Healing Loads**: Corrupt session or note records start fresh instead of failing.
//   - **Pure Views**: Filtering and pinned-first ordering are derived, never stored.
//   - **Pluggable Storage**: Files on disk (`fs`) or in-process (`memory`) via `core.Storage`.
//
// Usage:
//
//	app, err := notehub.New("./data",
//		notehub.WithLogger(logger),
//		notehub.WithDebounce(500*time.Millisecond),
//	)
//
//	user, err := app.Login(ctx, "ana")
//	note, _ := app.Notes.Add("Groceries", "milk, eggs")
//	app.Notes.TogglePin(note.ID)
//	visible := app.View(notehub.Query{Search: "milk"})
package notehub
