package domain

import (
	"time"

	"todo-api/internal/errors"
)

// Scope selects a window of upcoming, unfinished todos.
type Scope int

const (
	ScopeToday Scope = iota + 1
	ScopeTomorrow
	ScopeWeek
)

const (
	day  = 24 * time.Hour
	tick = time.Nanosecond
)

func (s Scope) String() string {
	switch s {
	case ScopeToday:
		return "Today"
	case ScopeTomorrow:
		return "Tomorrow"
	case ScopeWeek:
		return "Week"
	default:
		return "Unknown"
	}
}

// ParseScope maps a case-sensitive scope name to a Scope.
func ParseScope(name string) (Scope, error) {
	switch name {
	case "Today":
		return ScopeToday, nil
	case "Tomorrow":
		return ScopeTomorrow, nil
	case "Week":
		return ScopeWeek, nil
	default:
		return 0, errors.NewUnknownScopeError(name)
	}
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// IncomingWindow computes the expiry range covered by scope. Days are
// counted from the UTC date of now, and weekEnd is the last day of the week.
func IncomingWindow(scope Scope, now time.Time, weekEnd time.Weekday) (Window, error) {
	today := StartOfDay(now)

	switch scope {
	case ScopeToday:
		return Window{Start: today, End: today.Add(day - tick)}, nil
	case ScopeTomorrow:
		return Window{Start: today.Add(day), End: today.Add(2*day - tick)}, nil
	case ScopeWeek:
		daysUntilEndOfWeek := (int(weekEnd) - int(today.Weekday()) + 7) % 7
		return Window{
			Start: today,
			End:   today.AddDate(0, 0, daysUntilEndOfWeek+1).Add(-tick),
		}, nil
	default:
		return Window{}, errors.NewUnknownScopeError(scope.String())
	}
}
