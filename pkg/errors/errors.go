package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrIO           ErrorCode = "IO"

	// Registry errors
	ErrDuplicateID   ErrorCode = "DUPLICATE_ID"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrSchemaVersion ErrorCode = "SCHEMA_VERSION"
	ErrLocked        ErrorCode = "LOCKED"

	// Context and resolution errors
	ErrAmbiguousContext    ErrorCode = "AMBIGUOUS_CONTEXT"
	ErrUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"

	// Migration errors
	ErrMigrationConflict ErrorCode = "MIGRATION_CONFLICT"

	// Encryption errors
	ErrAuthFailed ErrorCode = "AUTH_FAILED"
)

// KeepError represents a structured error with code and details
type KeepError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *KeepError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *KeepError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *KeepError) Is(target error) bool {
	var targetErr *KeepError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new KeepError with the given code and message
func New(code ErrorCode, message string) *KeepError {
	return &KeepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new KeepError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *KeepError {
	return &KeepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a KeepError
func Wrap(err error, code ErrorCode, message string) *KeepError {
	if err == nil {
		return nil
	}
	return &KeepError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *KeepError {
	if err == nil {
		return nil
	}
	return &KeepError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *KeepError) WithDetail(key string, value interface{}) *KeepError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var keepErr *KeepError
	if errors.As(err, &keepErr) {
		return keepErr.Code == code
	}
	return false
}
