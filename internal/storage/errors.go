package storage

import (
	"errors"
)

// Sentinel errors for the storage layer.
// HTTP handlers should use errors.Is() to map these to appropriate HTTP status codes.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the backing store could not be read or written
	// (quota exceeded, connection lost). In-memory state is left intact when
	// a mutation fails with this error.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrValidation indicates the input failed validation
	// (e.g., missing required fields).
	ErrValidation = errors.New("validation error")
)
