package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Core failure kinds. Callers match them with errors.Is; the underlying cause stays wrapped.
var (
	ErrNotFound            = errors.New("thread does not exist")
	ErrCollision           = errors.New("id already exists")
	ErrStoreUnavailable    = errors.New("record store unavailable")
	ErrAllocationIO        = errors.New("post id counter unavailable")
	ErrCorruptCounterState = errors.New("post id counter is corrupt")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Wrap tags cause with one of the failure kinds above.
// A cause that already carries a kind is returned unchanged.
func Wrap(kind error, cause error) error {
	if cause == nil {
		return nil
	}
	if HasKind(cause) {
		return cause
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// HasKind reports whether err already carries one of the core failure kinds.
func HasKind(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCollision) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrAllocationIO) ||
		errors.Is(err, ErrCorruptCounterState)
}

// StatusCode maps an error to the HTTP status the surface should answer with.
func StatusCode(err error) int {
	var withCode *ErrorWithStatusCode
	switch {
	case errors.As(err, &withCode):
		return withCode.StatusCode
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCollision):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text sent to clients. Server-side failures never leak their cause.
func PublicMessage(err error) string {
	var withCode *ErrorWithStatusCode
	switch {
	case errors.As(err, &withCode):
		return withCode.Message
	case errors.Is(err, ErrNotFound):
		return "Thread not found"
	case errors.Is(err, ErrCollision):
		return "Conflict, please retry"
	default:
		return "Internal error"
	}
}
