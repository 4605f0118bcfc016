// Package apperr defines the error taxonomy shared by every component of
// the booking core.  Four kinds cover all caller-visible failures:
// NotFound for missing aggregates, Validation for malformed input or
// violated domain preconditions, Conflict for operations that are legal in
// shape but forbidden in the current aggregate state, and Internal for
// everything unexpected.  Handlers translate kinds into HTTP status codes
// via Status().
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error carries a kind, a human-readable message and a free-form context
// map used for debugging (seat codes, user IDs, current statuses).  The
// context map is serialized in HTTP responses, so values must be JSON
// encodable.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s %v", e.Kind, e.Message, e.Context)
}

// NotFound constructs a NotFound error.
func NotFound(msg string, ctx map[string]any) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Context: ctx}
}

// Validation constructs a Validation error.
func Validation(msg string, ctx map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: msg, Context: ctx}
}

// Conflict constructs a Conflict error.
func Conflict(msg string, ctx map[string]any) *Error {
	return &Error{Kind: KindConflict, Message: msg, Context: ctx}
}

// Internal wraps an unexpected failure.  The underlying error text is kept
// out of the message so it never leaks to clients; callers should log the
// cause separately.
func Internal(msg string, ctx map[string]any) *Error {
	return &Error{Kind: KindInternal, Message: msg, Context: ctx}
}

// Status maps an error to its HTTP status code equivalent.  Non-apperr
// errors map to 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an apperr Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
