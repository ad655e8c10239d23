package httperr

import (
	"errors"
	"fmt"
)

// Kind classifies a handler error.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that carry no kind.
	KindUnknown Kind = iota
	KindBadRequest
	KindForbidden
	KindNotAuthorized
	KindNotFound
	KindInternalServerError
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindForbidden:
		return "forbidden"
	case KindNotAuthorized:
		return "not authorized"
	case KindNotFound:
		return "not found"
	case KindInternalServerError:
		return "internal server error"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code conventionally used for the kind.
// Unknown kinds map to 500.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return 400
	case KindForbidden:
		return 403
	case KindNotAuthorized:
		return 401
	case KindNotFound:
		return 404
	default:
		return 500
	}
}

// Error implements the error interface so a Kind can be used as the target
// of errors.Is.
func (k Kind) Error() string {
	return k.String()
}

// Error is a handler error with a kind, an optional message and an optional
// cause.
type Error struct {
	// Kind is the error classification.
	Kind Kind

	// Message is the error message; may be empty.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the message. Without a message it falls back to the cause
// and then to the kind name.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind around cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// BadRequest creates a KindBadRequest error.
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// BadRequestf creates a KindBadRequest error with a formatted message.
func BadRequestf(format string, args ...any) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...))
}

// Forbidden creates a KindForbidden error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Forbiddenf creates a KindForbidden error with a formatted message.
func Forbiddenf(format string, args ...any) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

// NotAuthorized creates a KindNotAuthorized error.
func NotAuthorized(message string) *Error { return New(KindNotAuthorized, message) }

// NotAuthorizedf creates a KindNotAuthorized error with a formatted message.
func NotAuthorizedf(format string, args ...any) *Error {
	return New(KindNotAuthorized, fmt.Sprintf(format, args...))
}

// NotFound creates a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// NotFoundf creates a KindNotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

// InternalServerError creates a KindInternalServerError error.
func InternalServerError(message string) *Error { return New(KindInternalServerError, message) }

// InternalServerErrorf creates a KindInternalServerError error with a
// formatted message.
func InternalServerErrorf(format string, args ...any) *Error {
	return New(KindInternalServerError, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
