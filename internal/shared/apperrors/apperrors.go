package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures so controllers can map them to HTTP responses
// without inspecting package-specific sentinels.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindUpstream
)

// Error carries a kind plus a user-displayable reason. The wrapped cause, if
// any, is for logs only and never leaks to the client.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind and user-facing reason.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func NotFound(reason string) *Error     { return New(KindNotFound, reason) }
func Conflict(reason string) *Error     { return New(KindConflict, reason) }
func Invalid(reason string) *Error      { return New(KindInvalid, reason) }
func Unauthorized(reason string) *Error { return New(KindUnauthorized, reason) }
func Forbidden(reason string) *Error    { return New(KindForbidden, reason) }

// Upstream marks a payment-provider or other collaborator failure.
func Upstream(reason string, err error) *Error {
	return Wrap(KindUpstream, reason, err)
}

// KindOf extracts the kind from an error chain, KindUnknown if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf extracts the user-facing reason from an error chain. Unknown
// errors get a generic message so internals never leak.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return "internal server error"
}

// HTTPStatus maps an error to the status code controllers should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
