// Package errors provides structured error types for stepgraph.
//
// Error codes make failures machine-readable for the CLI and the HTTP
// endpoint alike: the CLI prints the message, the server maps the code to a
// status and returns both as JSON.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures (payload shape, options)
//   - graph codes (MISSING_START, UNKNOWN_STEP, ...): the step graph itself is malformed
//   - NOT_FOUND: a requested resource does not exist
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownStep, "step %q is not defined", name)
//	if errors.Is(err, errors.ErrCodeUnknownStep) {
//	    // Reject the graph
//	}
//
//	// Wrap a sentinel so errors.Is from the standard library still matches it
//	err := errors.Wrap(errors.ErrCodeCyclicGraph, flow.ErrCyclicGraph, "step %q", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle   Code = "INVALID_STYLE"
	ErrCodeInvalidVizType Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Graph errors. Any of these rejects the whole graph.
	ErrCodeInvalidGraph    Code = "INVALID_GRAPH"
	ErrCodeMissingStart    Code = "MISSING_START"
	ErrCodeUnknownStep     Code = "UNKNOWN_STEP"
	ErrCodeUnknownStepType Code = "UNKNOWN_STEP_TYPE"
	ErrCodeCyclicGraph     Code = "CYCLIC_GRAPH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsGraphError reports whether err carries one of the graph error codes.
// Graph errors are caller errors: the payload must be fixed, retrying is pointless.
func IsGraphError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidGraph, ErrCodeMissingStart, ErrCodeUnknownStep,
		ErrCodeUnknownStepType, ErrCodeCyclicGraph:
		return true
	}
	return false
}
