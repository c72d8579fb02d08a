// Package errors defines the application error taxonomy surfaced to callers.
package errors

import (
	"fmt"
	"net/http"

	"lineless/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Queue-related errors
	ErrBusinessNotFound = NewBaseError(
		http.StatusNotFound,
		"BUSINESS_NOT_FOUND",
		"Business does not exist or was removed",
		"",
	)

	ErrAppointmentNotFound = NewBaseError(
		http.StatusNotFound,
		"APPOINTMENT_NOT_FOUND",
		"Appointment does not exist or was removed",
		"",
	)

	ErrStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
		"The data store is temporarily unreachable, please retry",
		"",
	)

	ErrNotBusinessOwner = NewBaseError(
		http.StatusForbidden,
		"NOT_BUSINESS_OWNER",
		"Only the owning provider can manage this queue",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	ErrInvalidOperatingHours = NewBaseError(
		http.StatusBadRequest,
		"INVALID_OPERATING_HOURS",
		"Operating hours must be HH:MM with close after open",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)

// PartialFailureError reports a multi-write operation that completed some but
// not all of its writes. Nothing is rolled back; Applied counts the writes
// that took effect despite the failures.
type PartialFailureError struct {
	// Op names the operation, e.g. "queue reset" or "queue advance".
	Op      string
	Applied int
	Failed  int
	err     error
}

// NewPartialFailureError creates a partial-failure error wrapping the first
// underlying write error.
func NewPartialFailureError(op string, applied, failed int, err error) *PartialFailureError {
	return &PartialFailureError{Op: op, Applied: applied, Failed: failed, err: err}
}

// Error implements the error interface
func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially failed: %d writes applied, %d failed", e.Op, e.Applied, e.Failed)
}

// Unwrap returns the underlying write error.
func (e *PartialFailureError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *PartialFailureError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *PartialFailureError) ErrorCode() string {
	return "PARTIAL_FAILURE"
}

// Message returns the user-friendly error message
func (e *PartialFailureError) Message() string {
	return e.Error()
}

// Details returns detailed error information
func (e *PartialFailureError) Details() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}
