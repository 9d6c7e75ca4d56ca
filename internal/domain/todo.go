package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/errors"
)

const (
	MinPercentComplete = 0
	MaxPercentComplete = 100
)

// ToDo represents a single task in the domain model.
// Fields are only changed through its lifecycle methods so the
// invariants below always hold:
//   - the title is never blank
//   - the expiry date is not before today (UTC) when set
//   - the percent complete lies in [0, 100]
type ToDo struct {
	id              uuid.UUID
	title           string
	description     string
	expiry          time.Time
	percentComplete int
}

// NewToDo creates a ToDo checked against the current time.
func NewToDo(id uuid.UUID, title, description string, expiry time.Time) (*ToDo, error) {
	return NewToDoAt(time.Now(), id, title, description, expiry)
}

// NewToDoAt creates a ToDo, treating now as the current time.
func NewToDoAt(now time.Time, id uuid.UUID, title, description string, expiry time.Time) (*ToDo, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateExpiry(now, expiry); err != nil {
		return nil, err
	}

	return &ToDo{
		id:          id,
		title:       title,
		description: description,
		expiry:      expiry.UTC(),
	}, nil
}

// RestoreToDo rebuilds a ToDo from persisted state without validation.
func RestoreToDo(id uuid.UUID, title, description string, expiry time.Time, percentComplete int) *ToDo {
	return &ToDo{
		id:              id,
		title:           title,
		description:     description,
		expiry:          expiry.UTC(),
		percentComplete: percentComplete,
	}
}

func (t *ToDo) ID() uuid.UUID        { return t.id }
func (t *ToDo) Title() string        { return t.title }
func (t *ToDo) Description() string  { return t.description }
func (t *ToDo) Expiry() time.Time    { return t.expiry }
func (t *ToDo) PercentComplete() int { return t.percentComplete }

// IsDone reports whether the task is fully complete.
func (t *ToDo) IsDone() bool {
	return t.percentComplete == MaxPercentComplete
}

// Update replaces every mutable field, checked against the current time.
func (t *ToDo) Update(title, description string, expiry time.Time, percentComplete int) error {
	return t.UpdateAt(time.Now(), title, description, expiry, percentComplete)
}

// UpdateAt replaces every mutable field. Nothing is changed unless all
// values are valid.
func (t *ToDo) UpdateAt(now time.Time, title, description string, expiry time.Time, percentComplete int) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateExpiry(now, expiry); err != nil {
		return err
	}
	if err := validatePercent(percentComplete); err != nil {
		return err
	}

	t.title = title
	t.description = description
	t.expiry = expiry.UTC()
	t.percentComplete = percentComplete
	return nil
}

// SetPercentComplete changes only the completion percentage.
func (t *ToDo) SetPercentComplete(percentComplete int) error {
	if err := validatePercent(percentComplete); err != nil {
		return err
	}
	t.percentComplete = percentComplete
	return nil
}

// MarkDone sets the task to 100% complete.
func (t *ToDo) MarkDone() {
	t.percentComplete = MaxPercentComplete
}

// StartOfDay truncates t to midnight of its UTC date.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.NewTitleEmptyError()
	}
	return nil
}

func validateExpiry(now, expiry time.Time) error {
	if StartOfDay(expiry).Before(StartOfDay(now)) {
		return errors.NewExpiryInPastError(expiry)
	}
	return nil
}

func validatePercent(percent int) error {
	if percent < MinPercentComplete || percent > MaxPercentComplete {
		return errors.NewPercentOutOfRangeError(percent)
	}
	return nil
}
