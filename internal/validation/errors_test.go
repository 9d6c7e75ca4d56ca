package validation

import (
	"fmt"
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name        string
		errors      []FieldError
		expectError string
	}{
		{"No errors", []FieldError{}, "validation error"},
		{"Single error", []FieldError{{Field: "title", Message: "is required"}}, "validation error for field 'title': is required"},
		{"Multiple errors", []FieldError{
			{Field: "title", Message: "is required"},
			{Field: "expiry", Message: "must be in the future"},
		}, "multiple validation errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			result := ve.Error()

			if tt.name == "Multiple errors" {
				if !strings.Contains(result, tt.expectError) {
					t.Errorf("ValidationError.Error() = %v, expected to contain %v", result, tt.expectError)
				}
			} else if result != tt.expectError {
				t.Errorf("ValidationError.Error() = %v, expected %v", result, tt.expectError)
			}
		})
	}
}

func TestValidationError_ErrOrNil(t *testing.T) {
	ve := NewValidationError()
	if ve.ErrOrNil() != nil {
		t.Errorf("ErrOrNil() should be nil without errors")
	}

	ve.AddRequiredError("title")
	if ve.ErrOrNil() == nil {
		t.Errorf("ErrOrNil() should return the error when it has errors")
	}
}

func TestValidationError_AddHelpers(t *testing.T) {
	ve := NewValidationError()

	ve.AddRequiredError("title")
	ve.AddMaxLengthError("description", "xxx", 2)
	ve.AddInvalidFormatError("expiry", "tomorrow", "YYYY-MM-DD")
	ve.AddInvalidRangeError("percentComplete", 101, "must be between 0 and 100")

	expected := []struct {
		field   string
		errType ValidationErrorType
		message string
	}{
		{"title", ErrorTypeRequired, "title is required"},
		{"description", ErrorTypeInvalidLength, "description must be at most 2 characters long"},
		{"expiry", ErrorTypeInvalidFormat, "expiry has invalid format, expected: YYYY-MM-DD"},
		{"percentComplete", ErrorTypeInvalidRange, "percentComplete must be between 0 and 100"},
	}

	if len(ve.Errors) != len(expected) {
		t.Fatalf("Expected %d errors, got %d", len(expected), len(ve.Errors))
	}
	for i, want := range expected {
		got := ve.Errors[i]
		if got.Field != want.field || got.Type != want.errType || got.Message != want.message {
			t.Errorf("error %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
	}{
		{"No errors", []FieldError{}, "Input validation failed"},
		{"Single error", []FieldError{{Field: "title", Message: "title is required"}}, "title is required"},
		{"Multiple errors", []FieldError{
			{Field: "title", Message: "title is required"},
			{Field: "expiry", Message: "expiry must be in the future"},
		}, "Multiple validation errors occurred:\n- title is required\n- expiry must be in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			if result := ve.GetUserFriendlyMessage(); result != tt.expected {
				t.Errorf("GetUserFriendlyMessage() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("title")

	if !IsValidationError(ve) {
		t.Errorf("IsValidationError() = false, expected true for ValidationError")
	}
	if !IsValidationError(fmt.Errorf("decode request: %w", ve)) {
		t.Errorf("IsValidationError() = false, expected true for wrapped ValidationError")
	}
	if IsValidationError(&FieldError{Field: "test", Message: "error"}) {
		t.Errorf("IsValidationError() = true, expected false for FieldError")
	}

	got, ok := AsValidationError(fmt.Errorf("wrapped: %w", ve))
	if !ok || got != ve {
		t.Errorf("AsValidationError() should unwrap to the original error")
	}
}
