// Package errors provides structured error types for the orbit engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, and HTTP surfaces
//   - Machine-readable error codes for programmatic handling
//   - A retryability signal for the data-fetch recovery policy
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow the diagram's failure taxonomy:
//   - INVALID_*: construction/configuration validation failures (fatal at init)
//   - FATAL_*: runtime failures that tear the instance down
//   - RENDER_*: recoverable scene failures contained by the coordinator
//   - NETWORK/SERVER/UNKNOWN_FETCH: classified data-collaborator failures
//   - TRANSITION_FAILED: an exception inside a transactional state update
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidContainer, "container %q not found", id)
//	if errors.Is(err, errors.ErrCodeInvalidContainer) {
//	    // Handle init error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch tree %s", postType)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure taxonomy.
const (
	// Initialization errors - thrown synchronously, instance never usable.
	ErrCodeInvalidContainer Code = "INVALID_CONTAINER"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidData      Code = "INVALID_DATA"

	// Fatal runtime errors - instance is torn down automatically.
	ErrCodeFatalInit Code = "FATAL_MANAGER_INIT"
	ErrCodeDestroyed Code = "DESTROYED"

	// Recoverable render errors - contained by the render coordinator.
	ErrCodeRenderNodes Code = "RENDER_NODES"
	ErrCodeRenderLinks Code = "RENDER_LINKS"
	ErrCodeRenderOuter Code = "RENDER_OUTER"
	ErrCodeRenderFrame Code = "RENDER_FRAME"

	// Data-fetch errors, classified for the retry policy.
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeServer       Code = "SERVER_ERROR"
	ErrCodeUnknownFetch Code = "UNKNOWN_FETCH_ERROR"

	// Transition errors - an exception during a transactional state update.
	ErrCodeTransition Code = "TRANSITION_FAILED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether the recovery policy may retry the failed fetch.
// Network failures always retry; server failures retry only when the service
// was unavailable rather than rejecting the request; everything else is
// surfaced without retry.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrCodeNetwork:
		return true
	case ErrCodeServer:
		var s *ServerError
		return errors.As(err, &s) && s.Unavailable()
	default:
		return false
	}
}

// ServerError carries the HTTP status of a failed data-collaborator call so
// the retry policy can distinguish unavailability from rejection.
type ServerError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

// Unavailable reports whether the failure indicates the service was
// temporarily unavailable (503 or 502/504 gateway states).
func (e *ServerError) Unavailable() bool {
	return e.StatusCode == 502 || e.StatusCode == 503 || e.StatusCode == 504
}
