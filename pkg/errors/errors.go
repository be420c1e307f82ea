// Package errors provides the error taxonomy for the ipopulse system.
// Per-source and per-record failures are values that get aggregated
// and returned, never conditions that abort a reconciliation run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested offering was not found.
	ErrNotFound = errors.New("not found")

	// ErrNoSources indicates that zero sources succeeded in a run.
	// The run still returns its (empty) write-set and the full
	// failure list; this sentinel marks the fully-degraded case.
	ErrNoSources = errors.New("no sources succeeded")

	// ErrMalformedRecord indicates a record that cannot participate
	// in merging, e.g. a blank display name.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")
)

// SourceError represents the failure of a single feed during a run.
// One failing feed never aborts the run; its error is captured here
// and reported alongside the write-set.
type SourceError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s failed: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

// PersistError represents a failed upsert for a single offering.
// Upserts are independently atomic; one failure does not roll back
// other records written in the same run.
type PersistError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Name, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// NewPersistError creates a new PersistError.
func NewPersistError(name string, err error) *PersistError {
	return &PersistError{Name: name, Err: err}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "write", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
