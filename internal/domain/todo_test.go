package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "todo-api/internal/errors"
)

var fixedNow = time.Date(2099, 6, 10, 9, 30, 0, 0, time.UTC)

func TestNewToDoAt(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name        string
		title       string
		expiry      time.Time
		expectedErr error
	}{
		{
			name:   "valid todo expiring later today",
			title:  "Buy milk",
			expiry: fixedNow.Add(time.Hour),
		},
		{
			name:   "expiry earlier today is still today",
			title:  "Buy milk",
			expiry: fixedNow.Add(-9 * time.Hour),
		},
		{
			name:   "expiry next year",
			title:  "Renew passport",
			expiry: fixedNow.AddDate(1, 0, 0),
		},
		{
			name:        "empty title",
			title:       "",
			expiry:      fixedNow.Add(time.Hour),
			expectedErr: apperrors.ErrTitleEmpty,
		},
		{
			name:        "whitespace title",
			title:       " \t\n ",
			expiry:      fixedNow.Add(time.Hour),
			expectedErr: apperrors.ErrTitleEmpty,
		},
		{
			name:        "expiry yesterday",
			title:       "Buy milk",
			expiry:      fixedNow.AddDate(0, 0, -1),
			expectedErr: apperrors.ErrExpiryInPast,
		},
		{
			name:        "expiry one nanosecond before today",
			title:       "Buy milk",
			expiry:      StartOfDay(fixedNow).Add(-time.Nanosecond),
			expectedErr: apperrors.ErrExpiryInPast,
		},
		{
			name:        "blank title reported before past expiry",
			title:       "",
			expiry:      fixedNow.AddDate(0, 0, -1),
			expectedErr: apperrors.ErrTitleEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo, err := NewToDoAt(fixedNow, id, tt.title, "description", tt.expiry)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				assert.Nil(t, todo)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, todo.ID())
			assert.Equal(t, tt.title, todo.Title())
			assert.Equal(t, "description", todo.Description())
			assert.True(t, tt.expiry.Equal(todo.Expiry()))
			assert.Equal(t, 0, todo.PercentComplete())
			assert.False(t, todo.IsDone())
		})
	}
}

func TestNewToDoAt_NormalizesExpiryToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	expiry := time.Date(2099, 6, 11, 3, 0, 0, 0, zone)

	todo, err := NewToDoAt(fixedNow, uuid.New(), "title", "", expiry)

	require.NoError(t, err)
	assert.Equal(t, time.UTC, todo.Expiry().Location())
	assert.Equal(t, time.Date(2099, 6, 10, 22, 0, 0, 0, time.UTC), todo.Expiry())
}

func TestNewToDoAt_ComparesUTCDates(t *testing.T) {
	// 23:30 UTC on the 9th is the 10th in UTC+5 but still before today in UTC.
	zone := time.FixedZone("UTC+5", 5*60*60)
	expiry := time.Date(2099, 6, 10, 4, 30, 0, 0, zone)

	_, err := NewToDoAt(fixedNow, uuid.New(), "title", "", expiry)

	assert.True(t, errors.Is(err, apperrors.ErrExpiryInPast))
}

func TestToDo_UpdateAt(t *testing.T) {
	newExpiry := fixedNow.AddDate(0, 0, 3)

	tests := []struct {
		name        string
		title       string
		expiry      time.Time
		percent     int
		expectedErr error
	}{
		{name: "valid update", title: "New title", expiry: newExpiry, percent: 40},
		{name: "percent lower bound", title: "New title", expiry: newExpiry, percent: 0},
		{name: "percent upper bound", title: "New title", expiry: newExpiry, percent: 100},
		{name: "blank title", title: "  ", expiry: newExpiry, percent: 40, expectedErr: apperrors.ErrTitleEmpty},
		{name: "expiry in past", title: "New title", expiry: fixedNow.AddDate(0, 0, -2), percent: 40, expectedErr: apperrors.ErrExpiryInPast},
		{name: "percent below range", title: "New title", expiry: newExpiry, percent: -1, expectedErr: apperrors.ErrPercentOutOfRange},
		{name: "percent above range", title: "New title", expiry: newExpiry, percent: 101, expectedErr: apperrors.ErrPercentOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := fixedNow.Add(time.Hour)
			todo, err := NewToDoAt(fixedNow, uuid.New(), "Old title", "old", original)
			require.NoError(t, err)

			err = todo.UpdateAt(fixedNow, tt.title, "new", tt.expiry, tt.percent)

			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				assert.Equal(t, "Old title", todo.Title())
				assert.Equal(t, "old", todo.Description())
				assert.True(t, original.Equal(todo.Expiry()))
				assert.Equal(t, 0, todo.PercentComplete())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.title, todo.Title())
			assert.Equal(t, "new", todo.Description())
			assert.True(t, tt.expiry.Equal(todo.Expiry()))
			assert.Equal(t, tt.percent, todo.PercentComplete())
		})
	}
}

func TestToDo_SetPercentComplete(t *testing.T) {
	for percent := -5; percent <= 105; percent++ {
		todo := RestoreToDo(uuid.New(), "title", "", fixedNow, 50)

		err := todo.SetPercentComplete(percent)

		if percent < 0 || percent > 100 {
			assert.True(t, errors.Is(err, apperrors.ErrPercentOutOfRange), "percent %d", percent)
			assert.Equal(t, 50, todo.PercentComplete())
			continue
		}
		require.NoError(t, err, "percent %d", percent)
		assert.Equal(t, percent, todo.PercentComplete())
	}
}

func TestToDo_MarkDone(t *testing.T) {
	for _, start := range []int{0, 37, 99, 100} {
		todo := RestoreToDo(uuid.New(), "title", "", fixedNow, start)

		todo.MarkDone()
		assert.Equal(t, 100, todo.PercentComplete())
		assert.True(t, todo.IsDone())

		todo.MarkDone()
		assert.Equal(t, 100, todo.PercentComplete())
	}
}

func TestRestoreToDo_SkipsValidation(t *testing.T) {
	past := fixedNow.AddDate(-1, 0, 0)

	todo := RestoreToDo(uuid.Nil, "", "", past, 100)

	assert.Equal(t, "", todo.Title())
	assert.True(t, past.Equal(todo.Expiry()))
	assert.True(t, todo.IsDone())
}

func TestStartOfDay(t *testing.T) {
	zone := time.FixedZone("UTC-3", -3*60*60)

	assert.Equal(t, time.Date(2099, 6, 10, 0, 0, 0, 0, time.UTC), StartOfDay(fixedNow))
	assert.Equal(t, time.Date(2099, 6, 11, 0, 0, 0, 0, time.UTC), StartOfDay(time.Date(2099, 6, 10, 22, 0, 0, 0, zone)))
}
