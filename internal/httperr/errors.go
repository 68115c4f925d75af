// Package httperr defines the failure taxonomy shared by the service and
// handler layers. Every failure a handler can surface is one of these kinds;
// anything untyped defaults to an internal error.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConfig     Kind = "CONFIG"
	KindRelay      Kind = "RELAY"
	KindStorage    Kind = "STORAGE"
)

// Error carries a failure kind, a client-safe message, and an optional cause.
// The cause is logged server-side but never serialized to the client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Config(msg string) *Error {
	return &Error{Kind: KindConfig, Message: msg}
}

func Relay(msg string, cause error) *Error {
	return &Error{Kind: KindRelay, Message: msg, Cause: cause}
}

func Storage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Cause: cause}
}

// StatusFor resolves the HTTP status for an arbitrary error: typed errors
// carry their own status, everything else is a 500.
func StatusFor(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// MessageFor returns the client-safe message for an error. Untyped errors
// collapse to a generic message so backend internals never leak.
func MessageFor(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
