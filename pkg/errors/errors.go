// Package errors provides structured error types for the voronoimap pipeline.
//
// The pipeline distinguishes four failure families: malformed input data,
// external tessellator failures, malformed tessellator output, and missing
// per-cell resources. The first three are fatal and abort the run; resource
// errors are caught per cell and degrade gracefully.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "missing column %q", "Value")
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // Handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIntegration, origErr, "tessellator exited")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline failure families.
const (
	// ErrCodeParse indicates malformed input rows (missing columns,
	// unparsable or negative values). Fatal.
	ErrCodeParse Code = "PARSE_ERROR"

	// ErrCodeIntegration indicates the external tessellator process failed
	// (non-zero exit, missing executable, deadline exceeded). Fatal, never
	// retried: geometry is deterministic given identical input.
	ErrCodeIntegration Code = "INTEGRATION_ERROR"

	// ErrCodeFormat indicates malformed or empty tessellator output. Fatal.
	ErrCodeFormat Code = "FORMAT_ERROR"

	// ErrCodeResource indicates a missing or undecodable per-cell resource
	// such as a flag image. Non-fatal: logged, cell renders without it.
	ErrCodeResource Code = "RESOURCE_ERROR"

	// ErrCodeInvalidFormat indicates an unsupported output format was
	// requested on the command line or in the config file.
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// ErrCodeFileNotFound indicates a referenced file does not exist.
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// ErrCodeInternal indicates an unexpected internal error.
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

// IsFatal reports whether the error aborts the run. Resource errors are the
// only non-fatal family; everything else (including plain errors) is fatal.
func IsFatal(err error) bool {
	return GetCode(err) != ErrCodeResource
}
