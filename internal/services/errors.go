// Package services implements the write workflows behind the API:
// registration, status changes, material management, and announcements.
// This file centralizes the service-level error taxonomy so every workflow
// reports failures the same way and handlers can map them to HTTP results
// consistently.
//
// The taxonomy mirrors the pipeline stages: validation failures carry a
// field→messages map, conflicts and missing records use sentinel errors, and
// any record/blob store failure is wrapped in a StoreError that keeps the
// underlying reason available for logging without forcing it into responses.
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for predictable workflow outcomes.
var (
	// ErrAlreadyRegistered indicates a registration attempt for a Telegram
	// identity that already has a user record (conflict outcome).
	ErrAlreadyRegistered = errors.New("telegram account already registered")

	// ErrUserNotFound indicates the acting or targeted user has no record.
	ErrUserNotFound = errors.New("user not found")

	// ErrMaterialNotFound indicates the targeted material does not exist.
	ErrMaterialNotFound = errors.New("material not found")
)

// FieldErrors maps an input field name to the list of rule violations for
// that field. Every violated rule is reported, not just the first.
type FieldErrors map[string][]string

// Add appends a violation message for field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// ValidationError carries the full set of field violations for a request.
type ValidationError struct {
	Fields FieldErrors
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// AsValidation extracts a *ValidationError from err, if present.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// StoreError wraps a failure from the record or blob store. Op names the
// operation for logs ("upload receipt", "save registration", ...); the
// wrapped error is the raw store reason and must not reach untrusted callers
// unless the deployment explicitly opts in.
type StoreError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap exposes the underlying store failure.
func (e *StoreError) Unwrap() error { return e.Err }

// AsStore extracts a *StoreError from err, if present.
func AsStore(err error) (*StoreError, bool) {
	var se *StoreError
	ok := errors.As(err, &se)
	return se, ok
}
