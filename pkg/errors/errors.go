package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	// ErrNotFound reports a referenced student, team or school year that does
	// not exist. Lookups by id fail loudly instead of degrading to a no-op so
	// callers can decide whether to surface the miss.
	ErrNotFound = New("NOT_FOUND", http.StatusNotFound, "resource not found")

	// ErrValidation covers malformed payloads rejected before any mutation.
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")

	// ErrInvariant covers refusals such as deleting the last or the active
	// school year. The mutation is rejected before any state changes.
	ErrInvariant = New("INVARIANT_VIOLATION", http.StatusConflict, "operation violates an invariant")

	// ErrPersistence reports a rejected save/load. It is always propagated;
	// committed state remains authoritative.
	ErrPersistence = New("PERSISTENCE_FAILURE", http.StatusInternalServerError, "persistence operation failed")

	// ErrInternal is the catch-all for unexpected failures.
	ErrInternal = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrCacheMiss is an internal sentinel, never surfaced over HTTP.
	ErrCacheMiss = New("CACHE_MISS", http.StatusInternalServerError, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
