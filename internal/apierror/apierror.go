// Package apierror defines the error kinds surfaced by the HTTP API and the
// status codes they translate to.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for transport purposes.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingField
	KindInvalidArgument
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindConflict
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "MissingField"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindConflict:
		return "Conflict"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "InternalFailure"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindMissingField, KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, user-presentable failure. Err optionally carries the
// underlying cause for logs; it is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error that records cause for logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// MissingField reports an absent or blank required field.
func MissingField(field string) *Error {
	return New(KindMissingField, field+" is required")
}

// InvalidID reports a malformed identifier parameter.
func InvalidID(param string) *Error {
	return New(KindInvalidArgument, "invalid "+param)
}

// NotFound reports a missing resource.
func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

// Forbidden reports a mutation attempted by someone other than the owner.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthenticated reports a missing or unusable credential.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Internal reports a failure the client cannot fix.
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
