package service

import (
	"errors"
	"fmt"
)

// ErrorCode classifies Service failures.
type ErrorCode int

const (
	// ErrCodeConnection indicates the transport could not be created or opened.
	ErrCodeConnection ErrorCode = iota
	// ErrCodeWrite indicates the serialized request could not be written.
	ErrCodeWrite
	// ErrCodeTimeout indicates the response did not arrive within the timeout.
	ErrCodeTimeout
	// ErrCodeRead indicates the response could not be read or parsed.
	ErrCodeRead
	// ErrCodeEncoding indicates the payload or parameters could not be encoded.
	ErrCodeEncoding
	// ErrCodeValidation indicates invalid configuration or options.
	ErrCodeValidation
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConnection:
		return "connection"
	case ErrCodeWrite:
		return "write"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeRead:
		return "read"
	case ErrCodeEncoding:
		return "encoding"
	case ErrCodeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a classified Service error.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("httpservice: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

func newErrorf(code ErrorCode, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Code: code, Message: err.Error(), Err: errors.Unwrap(err)}
}

// CodeOf returns the code of a Service error and whether err is one.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsWrite checks if an error is a write error.
func IsWrite(err error) bool { return hasCode(err, ErrCodeWrite) }

// IsTimeout checks if an error is a read timeout.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsRead checks if an error happened while reading or parsing the
// response. Timeouts are read failures too.
func IsRead(err error) bool {
	return hasCode(err, ErrCodeRead) || hasCode(err, ErrCodeTimeout)
}

// IsEncoding checks if an error is an encoding error.
func IsEncoding(err error) bool { return hasCode(err, ErrCodeEncoding) }

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }
