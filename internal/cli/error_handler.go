package cli

import (
	"fmt"

	"todo-api/internal/errors"
	"todo-api/internal/validation"
)

// Process exit codes returned by ExitCode.
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitDatabase   = 4
)

// commandError carries the terminal message for a failed command while
// keeping the original error reachable through errors.Is and errors.As.
type commandError struct {
	message string
	cause   error
}

func (e *commandError) Error() string { return e.message }

func (e *commandError) Unwrap() error { return e.cause }

// ErrorHandler turns service and validation errors into messages fit for a terminal
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}

	if validationErr, ok := validation.AsValidationError(err); ok {
		return &commandError{
			message: fmt.Sprintf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage()),
			cause:   err,
		}
	}

	if _, ok := errors.AsAppError(err); ok {
		return &commandError{
			message: fmt.Sprintf("failed to %s: %s", operation, errors.GetUserMessage(err)),
			cause:   err,
		}
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation) ||
		errors.IsErrorType(err, errors.ErrorTypeInvalidInput)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsDatabaseError checks if an error is a database error
func (eh *ErrorHandler) IsDatabaseError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeDatabase) ||
		errors.IsErrorType(err, errors.ErrorTypeTimeout)
}

// ExitCode picks the process exit status for an error returned by a command.
func ExitCode(err error) int {
	eh := NewErrorHandler()
	switch {
	case err == nil:
		return 0
	case eh.IsValidationError(err):
		return ExitValidation
	case eh.IsNotFoundError(err):
		return ExitNotFound
	case eh.IsDatabaseError(err):
		return ExitDatabase
	default:
		return ExitFailure
	}
}
