package core

import (
	"context"
	"time"
)

// Storage is the key-value persistence boundary.
// Implementations back it with an in-memory map, files on disk, etc.
// Storage never retries; failures propagate to the caller.
type Storage interface {
	// Read returns the value stored under key. ok is false when the key is absent.
	Read(ctx context.Context, key string) (value string, ok bool, err error)

	// Write stores value under key, replacing any previous value.
	// Failures wrap ErrStorageFailure.
	Write(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Change describes an update observed on a key of a Watchable storage.
type Change struct {
	Key       string
	Removed   bool
	Timestamp time.Time
}

func (c Change) String() string {
	if c.Removed {
		return "remove " + c.Key
	}
	return "write " + c.Key
}

// Watchable is implemented by storages that can report external changes.
type Watchable interface {
	// Watch emits a Change for every key matching pattern (glob syntax).
	// The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Change, error)
}
