// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for TopoMind.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies TopoMind errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeValidation indicates a tool argument or output violated its schema.
	CodeValidation ErrorCode = "VALIDATION_FAILED"

	// CodeToolBlocked indicates a tool or connector could not be resolved.
	CodeToolBlocked ErrorCode = "TOOL_BLOCKED"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodePlanning indicates the planner produced no usable plan.
	CodePlanning ErrorCode = "PLANNING_FAILED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeMemoryError indicates a memory system error.
	CodeMemoryError ErrorCode = "MEMORY_ERROR"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"
)

// TopoError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type TopoError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *TopoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *TopoError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *TopoError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Message     string                 `json:"message"`
		Code        string                 `json:"code"`
		Context     map[string]interface{} `json:"context,omitempty"`
		Recoverable bool                   `json:"recoverable"`
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Context:     e.Context,
		Recoverable: e.Recoverable,
	})
}

// New creates a new TopoError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *TopoError {
	return &TopoError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// Newf creates a new TopoError with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *TopoError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *TopoError) WithContext(key string, value interface{}) *TopoError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *TopoError) WithRecoverable(recoverable bool) *TopoError {
	e.Recoverable = recoverable
	return e
}

// AsTopoError attempts to convert an error to a TopoError.
// Returns the error as TopoError if it is one, or wraps it otherwise.
func AsTopoError(err error) *TopoError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*TopoError); ok {
		return te
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the ErrorCode carried by err, or CodeInternal for
// untyped errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if te, ok := err.(*TopoError); ok {
		return te.Code
	}
	return CodeInternal
}

// IsTimeout reports whether err carries the timeout code.
func IsTimeout(err error) bool {
	return CodeOf(err) == CodeTimeout
}
