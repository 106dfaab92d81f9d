package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an attempt does not exist.
	ErrNotFound = errors.New("attempt not found")

	// ErrConflict is returned when a compare-and-set update finds the
	// attempt in a different state than expected.
	ErrConflict = errors.New("attempt was modified concurrently")

	// ErrAlreadyExists is returned when an attempt id is already taken,
	// including when a create is replayed after its first write landed.
	ErrAlreadyExists = errors.New("attempt already exists")
)

// PersistenceError wraps a transient I/O failure from a backend.
// Callers may retry the same write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable persistence failure.
func IsTransient(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func transient(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
