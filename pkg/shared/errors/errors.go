package errors

import (
	"errors"
	"fmt"
)

// The error types below form the handling policy for the whole pipeline:
// validation errors are rejected at ingestion and never enqueued, transient
// errors are retried with backoff, classifier errors degrade detection to
// pattern-only results, and not-found errors map to a missing outcome.

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: field %q %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransientError wraps an infrastructure failure that is safe to retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as retryable, tagged with the failing operation.
func NewTransientError(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// ClassifierError reports a failed or malformed model inference call. The
// detection engine treats it as non-fatal and returns pattern results only.
type ClassifierError struct {
	Reason string
	Err    error
}

func (e *ClassifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classifier: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("classifier: %s", e.Reason)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// NewClassifierError creates a ClassifierError with an optional cause.
func NewClassifierError(reason string, err error) error {
	return &ClassifierError{Reason: reason, Err: err}
}

// NotFoundError reports a missing record of some kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given kind and id.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTransient reports whether err is a TransientError.
func IsTransient(err error) bool {
	var target *TransientError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
