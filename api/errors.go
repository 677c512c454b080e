// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the mirrored ring, the staging buffer and the
// allocators. Both the error-returning and the panicking construction paths
// carry the same ErrorCode.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per ErrorCode. errors.Is matches an *Error against
// the sentinel of its code.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrTryAgain        = errors.New("resource temporarily unavailable, try again")
	ErrNotSupported    = errors.New("operation not supported")
	ErrInternal        = errors.New("internal error")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	// ErrCodeInvalidArgument: zero, negative or overflowing size request.
	// A caller bug, not retryable.
	ErrCodeInvalidArgument
	// ErrCodeOutOfMemory: memory, mapping count or descriptor exhaustion.
	ErrCodeOutOfMemory
	// ErrCodeTryAgain: the mirror half could not be placed next to the
	// first half. Safe to retry immediately.
	ErrCodeTryAgain
	ErrCodeNotSupported
	ErrCodeInternal
)

var codeNames = [...]string{
	ErrCodeOK:              "ok",
	ErrCodeInvalidArgument: "invalid-argument",
	ErrCodeOutOfMemory:     "out-of-memory",
	ErrCodeTryAgain:        "try-again",
	ErrCodeNotSupported:    "not-supported",
	ErrCodeInternal:        "internal",
}

func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Sentinel returns the sentinel error for the code, nil for ErrCodeOK.
func (c ErrorCode) Sentinel() error {
	switch c {
	case ErrCodeOK:
		return nil
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeOutOfMemory:
		return ErrOutOfMemory
	case ErrCodeTryAgain:
		return ErrTryAgain
	case ErrCodeNotSupported:
		return ErrNotSupported
	default:
		return ErrInternal
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Context map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Sentinel().Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if len(e.Context) > 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, typically a unix.Errno.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Code.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Code.Sentinel()
}

// NewError creates a new structured error.
func NewError(code ErrorCode, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap records cause as the underlying error.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

// CodeOf extracts the ErrorCode carried by err. A nil error maps to
// ErrCodeOK, an error outside the taxonomy to ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrOutOfMemory):
		return ErrCodeOutOfMemory
	case errors.Is(err, ErrTryAgain):
		return ErrCodeTryAgain
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	}
	return ErrCodeInternal
}

// IsTemporary reports whether err is a transient placement race.
func IsTemporary(err error) bool {
	return CodeOf(err) == ErrCodeTryAgain
}
