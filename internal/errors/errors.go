package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error codes
const (
	CodeDatabase          = "DATABASE_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeTimeout           = "TIMEOUT"
	CodeTitleEmpty        = "TITLE_EMPTY"
	CodeExpiryInPast      = "EXPIRY_IN_PAST"
	CodePercentOutOfRange = "PERCENT_OUT_OF_RANGE"
	CodeUnknownScope      = "UNKNOWN_SCOPE"
	CodeToDoNotFound      = "TODO_NOT_FOUND"
)

// Domain error kinds, for use with errors.Is.
var (
	ErrTitleEmpty        = &AppError{Type: ErrorTypeValidation, Code: CodeTitleEmpty}
	ErrExpiryInPast      = &AppError{Type: ErrorTypeValidation, Code: CodeExpiryInPast}
	ErrPercentOutOfRange = &AppError{Type: ErrorTypeValidation, Code: CodePercentOutOfRange}
	ErrUnknownScope      = &AppError{Type: ErrorTypeValidation, Code: CodeUnknownScope}
	ErrToDoNotFound      = &AppError{Type: ErrorTypeNotFound, Code: CodeToDoNotFound}
)

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return newAppError(ErrorTypeDatabase, CodeDatabase, fmt.Sprintf("database operation failed: %s", operation)).
		WithCause(cause).
		WithContext(ContextOperation, operation)
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return newAppError(ErrorTypeInvalidInput, CodeInvalidInput, fmt.Sprintf("invalid input for %s: %s", field, reason)).
		WithContext(ContextField, field).
		WithContext(ContextValue, value)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, CodeTimeout, fmt.Sprintf("operation timed out: %s", operation)).
		WithCause(cause).
		WithContext(ContextOperation, operation)
}

// NewTitleEmptyError is returned when a todo title is blank.
func NewTitleEmptyError() *AppError {
	return newAppError(ErrorTypeValidation, CodeTitleEmpty, "title cannot be empty").
		WithContext(ContextField, "title")
}

// NewExpiryInPastError is returned when a todo expiry date is before today.
func NewExpiryInPastError(expiry time.Time) *AppError {
	return newAppError(ErrorTypeValidation, CodeExpiryInPast, "expiry date cannot be in the past").
		WithContext(ContextField, "expiry").
		WithContext(ContextValue, expiry)
}

// NewPercentOutOfRangeError is returned when a completion percentage is outside [0, 100].
func NewPercentOutOfRangeError(percent int) *AppError {
	return newAppError(ErrorTypeValidation, CodePercentOutOfRange, "percent complete must be between 0 and 100").
		WithContext(ContextField, "percentComplete").
		WithContext(ContextValue, percent)
}

// NewUnknownScopeError is returned for an incoming scope that is not Today, Tomorrow or Week.
func NewUnknownScopeError(name string) *AppError {
	return newAppError(ErrorTypeValidation, CodeUnknownScope, fmt.Sprintf("unknown scope of incoming todos: %s", name)).
		WithContext(ContextField, "scope").
		WithContext(ContextValue, name)
}

// NewToDoNotFoundError is returned when no todo is stored under id.
func NewToDoNotFoundError(id string) *AppError {
	return newAppError(ErrorTypeNotFound, CodeToDoNotFound, fmt.Sprintf("todo with id %s does not exist", id)).
		WithContext(ContextField, "id").
		WithContext(ContextValue, id)
}

// FromContextError converts a context cancellation into a timeout error, otherwise
// it wraps err as a database error.
func FromContextError(operation string, err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError(operation, err)
	}
	return NewDatabaseError(operation, err)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput:
			return appErr.Message
		case ErrorTypeDatabase:
			return "A database error occurred. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput:
			return false // caller errors
		default:
			return true
		}
	}
	return true
}
