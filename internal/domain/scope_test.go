package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "todo-api/internal/errors"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		input    string
		expected Scope
		wantErr  bool
	}{
		{input: "Today", expected: ScopeToday},
		{input: "Tomorrow", expected: ScopeTomorrow},
		{input: "Week", expected: ScopeWeek},
		{input: "today", wantErr: true},
		{input: "WEEK", wantErr: true},
		{input: "Month", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			scope, err := ParseScope(tt.input)

			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrUnknownScope))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scope)
			assert.Equal(t, tt.input, scope.String())
		})
	}
}

func TestIncomingWindow(t *testing.T) {
	// fixedNow is a Wednesday.
	today := time.Date(2099, 6, 10, 0, 0, 0, 0, time.UTC)
	endOf := func(d time.Time) time.Time { return d.AddDate(0, 0, 1).Add(-time.Nanosecond) }

	tests := []struct {
		name    string
		scope   Scope
		weekEnd time.Weekday
		start   time.Time
		end     time.Time
	}{
		{
			name:    "today",
			scope:   ScopeToday,
			weekEnd: time.Saturday,
			start:   today,
			end:     endOf(today),
		},
		{
			name:    "tomorrow",
			scope:   ScopeTomorrow,
			weekEnd: time.Saturday,
			start:   today.AddDate(0, 0, 1),
			end:     endOf(today.AddDate(0, 0, 1)),
		},
		{
			name:    "week ending saturday",
			scope:   ScopeWeek,
			weekEnd: time.Saturday,
			start:   today,
			end:     endOf(time.Date(2099, 6, 13, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "week ending sunday",
			scope:   ScopeWeek,
			weekEnd: time.Sunday,
			start:   today,
			end:     endOf(time.Date(2099, 6, 14, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "week ending today",
			scope:   ScopeWeek,
			weekEnd: time.Wednesday,
			start:   today,
			end:     endOf(today),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := IncomingWindow(tt.scope, fixedNow, tt.weekEnd)

			require.NoError(t, err)
			assert.Equal(t, tt.start, window.Start)
			assert.Equal(t, tt.end, window.End)
		})
	}
}

func TestIncomingWindow_UsesUTCDate(t *testing.T) {
	// 21:00 on the 9th in UTC-5 is already the 10th in UTC.
	zone := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2099, 6, 9, 21, 0, 0, 0, zone)

	window, err := IncomingWindow(ScopeToday, now, time.Saturday)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2099, 6, 10, 0, 0, 0, 0, time.UTC), window.Start)
}

func TestIncomingWindow_UnknownScope(t *testing.T) {
	_, err := IncomingWindow(Scope(42), fixedNow, time.Saturday)

	assert.True(t, errors.Is(err, apperrors.ErrUnknownScope))
}
