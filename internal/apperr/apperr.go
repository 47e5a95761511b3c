// Package apperr defines the error taxonomy shared by the service and HTTP
// layers. Every failure surfaced to a caller carries one of the codes below;
// the HTTP layer owns the mapping to status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalid      Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnavailable  Code = "unavailable"
	CodeInternal     Code = "internal"
)

// Error is a coded error with a caller-facing message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted caller-facing message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A deadline or
// cancellation anywhere in the chain takes precedence and becomes
// CodeUnavailable, so store timeouts surface as retryable failures.
func Wrap(code Code, message string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		code = CodeUnavailable
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeUnavailable
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from an error chain. Internal
// errors get a generic message so driver details never leak to clients.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "operation timed out, retry later"
	}
	return "something went wrong"
}

// IsNotFound reports whether the error chain carries CodeNotFound.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }
