package errors

import (
	"fmt"
)

// Error represents a SQLSTATE-coded error raised by the engine.
type Error struct {
	Code    string // SQLSTATE code
	Message string // Primary error message
	Detail  string // Optional detailed error message
	Hint    string // Optional hint message
	Where   string // Context where error occurred
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (SQLSTATE %s) DETAIL: %s", e.Message, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", e.Message, e.Code)
}

// New creates a new Error with the given code and message.
func New(code string, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail adds detail to the error.
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithDetailf adds formatted detail to the error.
func (e *Error) WithDetailf(format string, args ...interface{}) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint adds a hint to the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithWhere sets the context where the error occurred.
func (e *Error) WithWhere(where string) *Error {
	e.Where = where
	return e
}

// Internal creates an internal error. Internal errors signal invariant
// violations inside the engine and always abort the current query.
func Internal(message string) *Error {
	return New(InternalError, message)
}

// Internalf creates a formatted internal error.
func Internalf(format string, args ...interface{}) *Error {
	return Newf(InternalError, format, args...)
}

// IsInternal reports whether err carries the internal-error SQLSTATE.
func IsInternal(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Code == InternalError
}

// FeatureNotSupportedError creates an error for unimplemented features.
func FeatureNotSupportedError(feature string) *Error {
	return Newf(FeatureNotSupported, "%s is not supported", feature)
}
