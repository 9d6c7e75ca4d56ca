package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"todo-api/internal/config"
)

const (
	DefaultTitleMaxLength       = 100
	DefaultDescriptionMaxLength = 500
)

// ExpiryLayouts are the accepted textual forms of an expiry, tried in order.
// A bare date is read as midnight UTC.
var ExpiryLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// Validator checks todo requests before they reach the service layer.
// It is independent of the entity rules, which hold for every caller.
type Validator struct {
	titleMaxLength       int
	descriptionMaxLength int
	now                  func() time.Time
}

// NewValidator creates a validator with default limits
func NewValidator() *Validator {
	return &Validator{
		titleMaxLength:       DefaultTitleMaxLength,
		descriptionMaxLength: DefaultDescriptionMaxLength,
		now:                  time.Now,
	}
}

// NewValidatorWithConfig creates a validator with configured limits
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	v := NewValidator()
	if cfg != nil {
		if cfg.Validation.TitleMaxLength > 0 {
			v.titleMaxLength = cfg.Validation.TitleMaxLength
		}
		if cfg.Validation.DescriptionMaxLength > 0 {
			v.descriptionMaxLength = cfg.Validation.DescriptionMaxLength
		}
	}
	return v
}

// WithClock replaces the source of the current time
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// ValidateCreate validates the fields of a new todo
func (v *Validator) ValidateCreate(title, description string, expiry time.Time) error {
	ve := NewValidationError()
	v.checkText(ve, "title", title, v.titleMaxLength)
	v.checkText(ve, "description", description, v.descriptionMaxLength)
	v.checkExpiry(ve, expiry)
	return ve.ErrOrNil()
}

// ValidateUpdate validates a full replacement of a todo
func (v *Validator) ValidateUpdate(title, description string, expiry time.Time, percentComplete int) error {
	ve := NewValidationError()
	v.checkText(ve, "title", title, v.titleMaxLength)
	v.checkText(ve, "description", description, v.descriptionMaxLength)
	v.checkExpiry(ve, expiry)
	v.checkPercent(ve, percentComplete)
	return ve.ErrOrNil()
}

// ValidatePercent validates a completion percentage
func (v *Validator) ValidatePercent(percentComplete int) error {
	ve := NewValidationError()
	v.checkPercent(ve, percentComplete)
	return ve.ErrOrNil()
}

// ParseExpiry parses s using ExpiryLayouts
func (v *Validator) ParseExpiry(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range ExpiryLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t, nil
		}
	}

	ve := NewValidationError()
	ve.AddInvalidFormatError("expiry", s, "RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD")
	return time.Time{}, ve
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsWithinMaxLength checks that s has at most max characters
func (v *Validator) IsWithinMaxLength(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}

// IsInFuture checks that t is strictly after the current time
func (v *Validator) IsInFuture(t time.Time) bool {
	return t.After(v.now())
}

// IsValidPercent checks that p lies in [0, 100]
func (v *Validator) IsValidPercent(p int) bool {
	return p >= 0 && p <= 100
}

func (v *Validator) checkText(ve *ValidationError, field, value string, max int) {
	if !v.IsNonEmptyString(value) {
		ve.AddRequiredError(field)
		return
	}
	if !v.IsWithinMaxLength(value, max) {
		ve.AddMaxLengthError(field, value, max)
	}
}

func (v *Validator) checkExpiry(ve *ValidationError, expiry time.Time) {
	if expiry.IsZero() {
		ve.AddRequiredError("expiry")
		return
	}
	if !v.IsInFuture(expiry) {
		ve.AddInvalidRangeError("expiry", expiry, "must be in the future")
	}
}

func (v *Validator) checkPercent(ve *ValidationError, percent int) {
	if !v.IsValidPercent(percent) {
		ve.AddInvalidRangeError("percentComplete", percent, "must be between 0 and 100")
	}
}
