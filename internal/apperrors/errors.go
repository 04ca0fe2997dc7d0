// Package apperrors defines the error kinds shared by services and handlers.
// Every error that crosses a service boundary carries one Kind, and handlers
// map the kind to an HTTP status instead of inspecting messages.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by how the caller must react to it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindSessionInvalid
	KindUnavailable
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindSessionInvalid:
		return "session_invalid"
	case KindUnavailable:
		return "unavailable"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// HTTPStatus returns the conventional status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindSessionInvalid:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainError is the concrete error carried between layers.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches on Kind and Code so sentinel DomainErrors work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Public reports whether Message may be shown to clients verbatim.
func (e *DomainError) Public() bool {
	return e.Kind != KindInternal && e.Kind != KindUpstream
}

func New(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code, message string, err error) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string) *DomainError {
	return New(KindValidation, "VALIDATION_FAILED", message)
}

func NotFound(message string) *DomainError {
	return New(KindNotFound, "NOT_FOUND", message)
}

func Forbidden(message string) *DomainError {
	return New(KindForbidden, "FORBIDDEN", message)
}

func Conflict(message string) *DomainError {
	return New(KindConflict, "CONFLICT", message)
}

func Unavailable(err error) *DomainError {
	return Wrap(KindUnavailable, "UPSTREAM_UNAVAILABLE", "Service temporarily unavailable", err)
}

func Upstream(message string, err error) *DomainError {
	return Wrap(KindUpstream, "UPSTREAM_ERROR", message, err)
}

func Internal(err error) *DomainError {
	return Wrap(KindInternal, "INTERNAL", "Internal server error", err)
}

// KindOf returns the kind of the first DomainError in err's chain.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// As extracts the DomainError from err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
