package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-checkable reason codes returned to callers.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeNotFound               = "NOT_FOUND"
	CodeUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
	CodePersistence            = "PERSISTENCE_ERROR"
	CodeReconciliationConflict = "RECONCILIATION_CONFLICT"
)

// AppError is the error type surfaced to API callers. The wrapped
// error carries internal context for logs and is never rendered
// verbatim in responses.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on the reason code so callers can check categories
// with errors.Is.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return appErr.Code == e.Code
	}
	return false
}

// NewValidationError reports malformed or missing caller input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError reports an entity that is absent or outside the
// caller's space.
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUpstreamUnavailableError reports an external dependency failure
// for which no fallback exists.
func NewUpstreamUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:       CodeUpstreamUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewPersistenceError reports a failed store operation.
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Code:       CodePersistence,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewReconciliationConflictError reports a payment confirmation that
// failed after the ledger entry was created. Compensation has already
// been attempted by the time this error is returned.
func NewReconciliationConflictError(message string, err error) *AppError {
	return &AppError{
		Code:       CodeReconciliationConflict,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// From extracts an *AppError from err, or wraps it as a persistence
// error when it is not one.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewPersistenceError("internal error", err)
}
