package core

import "errors"

// Common errors.
var (
	// ErrStorageFailure wraps every write failure of a Storage (quota, IO, serialization).
	ErrStorageFailure = errors.New("storage failure")
	ErrInvalidColor   = errors.New("invalid note color")
	ErrNoUser         = errors.New("no current user")
	ErrEmptyUsername  = errors.New("username cannot be empty")
)
