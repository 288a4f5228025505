// Package errors provides structured error types for semgrep-deps-export.
//
// This package defines error codes and types that enable:
//   - One typed error for every upstream API failure, carrying the HTTP status
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Configuration and input validation failures
//   - UNAUTHORIZED / FORBIDDEN / NOT_FOUND / RATE_LIMITED / SERVER_ERROR: HTTP status classes
//   - NETWORK_ERROR / MALFORMED_RESPONSE: transport and decoding failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.NewStatus(errors.ErrCodeNotFound, 404, "deployment not found: %s", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing deployment
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors, raised before any network call
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPolicy Code = "INVALID_POLICY"

	// Upstream API errors
	ErrCodeUnauthorized      Code = "UNAUTHORIZED"
	ErrCodeForbidden         Code = "FORBIDDEN"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeRateLimited       Code = "RATE_LIMITED"
	ErrCodeServer            Code = "SERVER_ERROR"
	ErrCodeAPI               Code = "API_ERROR"
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeMalformedResponse Code = "MALFORMED_RESPONSE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional HTTP status and an
// optional cause.
type Error struct {
	Code       Code   // Machine-readable error code
	Message    string // Human-readable message
	StatusCode int    // HTTP status, 0 when the failure happened below HTTP
	Cause      error  // Underlying error (optional)
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

// NewStatus creates a new Error that records the HTTP status it came from.
func NewStatus(code Code, status int, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: status,
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

// StatusCode extracts the HTTP status from an error, if available.
// Returns 0 for errors that did not come from an HTTP response.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
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

// CodeForStatus classifies a non-2xx HTTP status.
func CodeForStatus(status int) Code {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status >= 500 && status < 600:
		return ErrCodeServer
	default:
		return ErrCodeAPI
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRateLimited reports whether err is an upstream 429.
func IsRateLimited(err error) bool {
	return Is(err, ErrCodeRateLimited)
}
