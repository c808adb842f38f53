package storage

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrEmptyID is returned when an operation is given an empty item ID.
	ErrEmptyID = errors.New("empty item id")

	// ErrNotFound is returned by path helpers when an item does not exist.
	// Plain getters return a zero value instead of this error.
	ErrNotFound = errors.New("item not found")

	// ErrInvalidVector is returned when an embedding has no components.
	ErrInvalidVector = errors.New("invalid embedding vector")

	// ErrInvalidModel is returned when an embedding carries no model tag.
	ErrInvalidModel = errors.New("invalid embedding model")

	// ErrReservedKey is returned when an extra key would collide with an
	// index file.
	ErrReservedKey = errors.New("reserved extra key")
)

// Error wraps errors with the operation and category they occurred in.
type Error struct {
	Op       string // Operation name
	Category string // Category name, empty for facade-level failures
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Category, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapErr wraps an error with operation context.
func wrapErr(op, category string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Category: category, Err: err}
}
