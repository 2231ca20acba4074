// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and HTTPStatus maps each kind
// to an HTTP status code; no middleware in this module applies that mapping.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error. The set mirrors the turn-processing
// error taxonomy: each kind surfaces a distinct user-facing reply template in
// the response composer rather than a raw exception.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindInvalidInput indicates the inbound message failed validation
	// (empty, or over the length ceiling) and was rejected pre-classification.
	KindInvalidInput
	// KindMalicious indicates the classifier flagged the utterance as an
	// injection attempt; the request is refused, never executed.
	KindMalicious
	// KindNotACalculation indicates the calculator could not find an
	// arithmetic reading of the utterance.
	KindNotACalculation
	// KindCalculation indicates a recognized-but-failed calculation
	// (division by zero, out of range, malformed expression).
	KindCalculation
	// KindEmptyResult indicates a retriever or outlet query produced no
	// matches. Not a failure: the composer renders alternatives.
	KindEmptyResult
	// KindToolTimeout indicates a tool call exceeded the turn deadline.
	KindToolTimeout
	// KindToolUnavailable indicates an optional tool dependency (e.g. the
	// semantic retriever) could not be reached; the core degrades rather
	// than failing the turn.
	KindToolUnavailable
	// KindInternal indicates an unexpected internal error, including a
	// recovered panic.
	KindInternal
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput, KindNotACalculation, KindCalculation:
		return http.StatusBadRequest
	case KindMalicious:
		return http.StatusForbidden
	case KindEmptyResult:
		return http.StatusOK
	case KindToolTimeout:
		return http.StatusGatewayTimeout
	case KindToolUnavailable:
		return http.StatusServiceUnavailable
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns a copy of the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error kinds.

// InvalidInput creates an invalid-input error.
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// Malicious creates a malicious-input error.
func Malicious(message string) *Error {
	return New(KindMalicious, message)
}

// NotACalculation creates a not-a-calculation error.
func NotACalculation(message string) *Error {
	return New(KindNotACalculation, message)
}

// Calculation creates a calculation error (division by zero, out of range, ...).
func Calculation(message string) *Error {
	return New(KindCalculation, message)
}

// EmptyResult creates an empty-result marker error.
func EmptyResult(message string) *Error {
	return New(KindEmptyResult, message)
}

// ToolTimeout creates a tool-timeout error.
func ToolTimeout(message string) *Error {
	return New(KindToolTimeout, message)
}

// ToolUnavailable creates a tool-unavailable error.
func ToolUnavailable(message string) *Error {
	return New(KindToolUnavailable, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
