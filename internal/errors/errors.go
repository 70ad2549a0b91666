// Package errors provides a coded error type shared across the server
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an error raised inside the server
type ErrorCode int

// Definition of error codes
const (
	// Generic errors
	Unknown ErrorCode = -1
	None    ErrorCode = 0

	// Protocol errors (1-999)
	ParseError     ErrorCode = 1
	InvalidRequest ErrorCode = 2
	MethodNotFound ErrorCode = 3
	InvalidParams  ErrorCode = 4
	InternalError  ErrorCode = 5
	TransportError ErrorCode = 6
	SessionClosed  ErrorCode = 7

	// Tool errors (1000-1999)
	ToolNotFound          ErrorCode = 1000
	ToolAlreadyRegistered ErrorCode = 1001
	ToolInvalidDefinition ErrorCode = 1002
	ToolExecutionError    ErrorCode = 1003
	SchemaValidationError ErrorCode = 1004

	// Upstream errors (2000-2999)
	UpstreamError       ErrorCode = 2000
	UpstreamUnreachable ErrorCode = 2001
)

// Error represents a server error with code and message
type Error struct {
	Code    ErrorCode
	Message string
	Details interface{}
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap implements the unwrapping interface
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a new coded error
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorf creates a new coded error with format
func NewErrorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// WithCause adds a causal error
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Is checks if an error is of a certain type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error is of a certain type and converts it
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap extracts the causal error
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// HasCode checks if an error is a coded error with the specified code
func HasCode(err error, code ErrorCode) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf extracts the error code from an error if it is a coded error
func CodeOf(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return Unknown
}
