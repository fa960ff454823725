package repository

import (
	"errors"
	"fmt"
)

// ErrConflict marks a transient concurrency failure (optimistic lock,
// busy database, serialization failure). Units of work failing with it are
// retried by the transaction runner.
var ErrConflict = errors.New("repository conflict")

// ErrNotFound marks a missing item, property or content stream.
var ErrNotFound = errors.New("not found")

// StorageError represents an error from a repository backend.
type StorageError struct {
	Backend   string // backend type ("memory", "sqlite", "postgres")
	Operation string // operation that failed ("search", "set_property", ...)
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("repository error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// NotFoundError records which reference could not be resolved.
type NotFoundError struct {
	Ref Ref
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s: %v", e.Ref, ErrNotFound)
}

// Unwrap ties the error to ErrNotFound for errors.Is checks.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(ref Ref) *NotFoundError {
	return &NotFoundError{Ref: ref}
}

// IsNotFound reports whether the error chain denotes a missing item.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the error chain denotes a transient conflict
// that a retry may resolve.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
