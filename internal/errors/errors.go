package errors

import (
	"fmt"
)

// Error is the structured error type returned by the build, mount, and
// query entry points.
type Error struct {
	// Kind classifies the failure (see codes.go).
	Kind Kind

	// Message is the human-readable message, naming the offending field or
	// index (e.g. "doc at index 4: text must be a non-empty string").
	Message string

	// Field names the offending option/field/index, when applicable.
	Field string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an Error of the given kind.
func New(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// Wrap creates an Error of the given kind from an existing error.
func Wrap(kind Kind, field string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Field: field, Message: err.Error(), Cause: err}
}

// Invalid builds an InvalidInput error naming the offending field.
func Invalid(field, message string) *Error {
	return New(InvalidInput, field, message)
}

// Invalidf builds an InvalidInput error with a formatted message.
func Invalidf(field, format string, args ...any) *Error {
	return New(InvalidInput, field, fmt.Sprintf(format, args...))
}

// Malformed builds a MalformedPack error.
func Malformed(field, message string) *Error {
	return New(MalformedPack, field, message)
}

// Malformedf builds a MalformedPack error with a formatted message.
func Malformedf(field, format string, args ...any) *Error {
	return New(MalformedPack, field, fmt.Sprintf(format, args...))
}

// Internalf builds an Internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return New(Internal, "", fmt.Sprintf(format, args...))
}

// IsRetryable reports whether err is an *Error whose Kind is plausibly
// resolved by the caller trying again (e.g. with a newer loader, or a
// freshly rebuilt pack).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		return retryable(e.Kind)
	}
	return false
}

// KindOf extracts the Kind from err, returning "" if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
