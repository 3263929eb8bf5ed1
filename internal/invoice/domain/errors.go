package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)

// Operation names one of the three invoice mutations.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

func (o Operation) title() string {
	switch o {
	case OperationCreate:
		return "Create"
	case OperationUpdate:
		return "Update"
	case OperationDelete:
		return "Delete"
	default:
		return "Save"
	}
}

// MissingFieldsMessage is the top-level message of a failed validation.
func MissingFieldsMessage(op Operation) string {
	return fmt.Sprintf("Missing Fields. Failed to %s Invoice.", op.title())
}

// DatabaseErrorMessage is the only text of a persistence failure shown to users.
func DatabaseErrorMessage(op Operation) string {
	return fmt.Sprintf("Database Error: Failed to %s Invoice.", op.title())
}

// FormError carries field-level validation failures back to the form.
type FormError struct {
	State FormState
}

func (e *FormError) Error() string {
	return e.State.Message
}

// PersistenceError hides the storage cause behind a generic message.
// Kind is a low-cardinality classification for logs and metrics.
type PersistenceError struct {
	Op      Operation
	Kind    string
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Redacted is the form safe to attach to traces.
func (e *PersistenceError) Redacted() string {
	return e.Message
}
