// Package apperr defines the error taxonomy shared by validation, the
// reconciler and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Reasons reported with validation, not-found and conflict errors.
const (
	ReasonMissingRequiredField   = "missing-required-field"
	ReasonInvalidDeadline        = "invalid-deadline"
	ReasonInvalidEmail           = "invalid-email"
	ReasonBadIDFormat            = "bad-id-format"
	ReasonDanglingReference      = "dangling-reference"
	ReasonNameMismatch           = "name-mismatch"
	ReasonCompletedTaskAssigned  = "completed-task-cannot-be-assigned"
	ReasonCompletedTaskInPending = "completed-task-in-pending-list"
	ReasonDuplicateEmail         = "duplicate-email"
	ReasonMalformedQuery         = "malformed-query"
	ReasonMalformedBody          = "malformed-body"
	ReasonNotFound               = "not-found"
)

type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(reason, message string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: message}
}

func NotFound(reason, message string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: message}
}

func Conflict(reason, message string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: message}
}

// Store wraps an underlying store failure. The message is safe to show to
// clients, err is not.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// As extracts an *Error from err. Errors outside the taxonomy are reported as
// store errors.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Store("internal error", err)
}

// Status maps err to an HTTP status code. Conflicts map to 400.
func Status(err error) int {
	switch As(err).Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HasReason reports whether err carries the given reason.
func HasReason(err error, reason string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Reason == reason
}
