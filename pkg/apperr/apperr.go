package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the failure class. Every error that crosses a package
// boundary in this service is one of these.
type Kind int

const (
	KindUpstream Kind = iota + 1
	KindNotFound
	KindValidation
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error carries a failure class, a human-readable message and the HTTP
// status it maps to at the transport boundary.
type Error struct {
	Kind    Kind
	Message string
	Status  int
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

// Upstream reports a failed fetch against the source site. status is the
// remote status code when the remote answered, 0 for transport failures.
func Upstream(status int, message string, err error) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{Kind: KindUpstream, Message: message, Status: status, Err: err}
}

// NotFound reports that extraction yielded no usable data or that a
// targeted update matched nothing.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Status: http.StatusNotFound}
}

// Validation reports a malformed request body or parameter.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Status: http.StatusBadRequest}
}

// Persistence reports a failed store operation.
func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Status: http.StatusInternalServerError, Err: err}
}

// StatusOf resolves the HTTP status for any error, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// MessageOf resolves the client-facing message for any error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
