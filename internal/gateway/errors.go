// Package gateway defines the shared error taxonomy for the data access
// layer. Every store and the remote procedure invoker classify failures into
// one of these shapes so that controllers can convert them into user-facing
// messages without inspecting backend-specific errors.
package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound is reported when the target record is absent at mutation or
// lookup time. Deleting an already-absent record is treated as success by
// the UI layer; stores still report it so callers can choose to ignore it.
var ErrNotFound = errors.New("record not found")

// Error wraps a transport or query failure from the backing store.
type Error struct {
	Op     string // operation, e.g. "list", "save", "delete"
	Entity string // entity name, e.g. "invoice"
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Wrap classifies err as a gateway failure for the given operation and
// entity. A nil err returns nil so call sites can wrap unconditionally.
func Wrap(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &Error{Op: op, Entity: entity, Err: err}
}

// ValidationError carries per-field messages for a record rejected either by
// client-side pre-submit checks or by backend constraints.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// ProcedureError is returned when a named remote procedure succeeded at the
// transport level but reported failure in its own payload. Transport-level
// success never implies business-level success.
type ProcedureError struct {
	Name    string // procedure name
	Message string // error message from the payload
}

// Error implements the error interface.
func (e *ProcedureError) Error() string {
	return fmt.Sprintf("procedure %s failed: %s", e.Name, e.Message)
}
