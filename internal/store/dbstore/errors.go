package dbstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned by every operation before a successful
	// Initialize or after Close.
	ErrNotInitialized = errors.New("database not initialized")

	// ErrAlreadyOpen is returned by Initialize when a different database is
	// already open. Callers may treat it as success.
	ErrAlreadyOpen = errors.New("database already open")
)

// InitError reports a failed open.
type InitError struct {
	Name string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize database %s: %v", e.Name, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ConstraintError reports a uniqueness or other constraint violation.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation: %v", e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// PersistenceError wraps any other database failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("database %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConstraint reports whether err is, or wraps, a ConstraintError.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// classify wraps a driver error. Both mattn/go-sqlite3 and modernc report
// violations as "... constraint failed: ...".
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "constraint failed") {
		return &ConstraintError{Err: err}
	}
	return &PersistenceError{Op: op, Err: err}
}
