// Package errors provides structured error types for nutrilabel.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the web UI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages for inline display
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The domain codes mirror the failure taxonomy of the label pipeline:
//   - FETCH_ERROR: the spreadsheet could not be fetched or is not tabular
//   - ROW_PARSE_ERROR: a single spreadsheet row was malformed and skipped
//   - RENDER_ERROR: a record could not be drawn (missing required field)
//   - FONT_LOAD_ERROR: a configured font could not be loaded (recovered)
//
// The remaining codes cover input validation, lookups and the admin gate.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRowParse, "row %d: %s is not a number", row, col)
//	if errors.Is(err, errors.ErrCodeRowParse) {
//	    // Skip the row
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetch, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline errors
	ErrCodeFetch    Code = "FETCH_ERROR"
	ErrCodeRowParse Code = "ROW_PARSE_ERROR"
	ErrCodeRender   Code = "RENDER_ERROR"
	ErrCodeFontLoad Code = "FONT_LOAD_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeProductNotFound Code = "PRODUCT_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// coder is implemented by error types that carry a fixed code, such as
// [RateLimitedError].
type coder interface {
	Code() Code
}

// Is reports whether any error in err's chain carries code, either as an
// *Error or through a Code method.
func Is(err error, code Code) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			if e.Code == code {
				return true
			}
		case coder:
			if e.Code() == code {
				return true
			}
		}
	}
	return false
}

// GetCode returns the outermost code in err's chain, or "" when there is none.
func GetCode(err error) Code {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
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

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
