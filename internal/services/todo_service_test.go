package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/domain"
	apperrors "todo-api/internal/errors"
	"todo-api/internal/repository/sqlite"
)

// 2099-06-10 is a Wednesday.
var fixedNow = time.Date(2099, 6, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func setupFactory(t *testing.T, opts ...Option) *Factory {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewFactory(setupStore(t), opts...)
}

func createToDo(t *testing.T, f *Factory, title string, expiry time.Time) uuid.UUID {
	t.Helper()
	id, err := f.New().Create(context.Background(), CreateToDoCommand{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		Expiry:      expiry,
	})
	require.NoError(t, err)
	return id
}

func TestToDoService_Create(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		expiry      time.Time
		expectedErr error
	}{
		{
			name:   "should create todo expiring later today",
			title:  "Buy milk",
			expiry: fixedNow.Add(time.Hour),
		},
		{
			name:   "should create todo expiring earlier today",
			title:  "Buy milk",
			expiry: fixedNow.Add(-time.Hour),
		},
		{
			name:        "should reject empty title",
			title:       "",
			expiry:      fixedNow.AddDate(0, 0, 1),
			expectedErr: apperrors.ErrTitleEmpty,
		},
		{
			name:        "should reject whitespace title",
			title:       "   ",
			expiry:      fixedNow.AddDate(0, 0, 1),
			expectedErr: apperrors.ErrTitleEmpty,
		},
		{
			name:        "should reject expiry before today",
			title:       "Buy milk",
			expiry:      fixedNow.AddDate(0, 0, -1),
			expectedErr: apperrors.ErrExpiryInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFactory(t)
			ctx := context.Background()
			cmd := CreateToDoCommand{ID: uuid.New(), Title: tt.title, Description: "d", Expiry: tt.expiry}

			id, err := f.New().Create(ctx, cmd)

			all, listErr := f.New().ListAll(ctx)
			require.NoError(t, listErr)

			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				assert.Equal(t, uuid.Nil, id)
				assert.Empty(t, all, "nothing is persisted on failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, cmd.ID, id)
			assert.Len(t, all, 1)
		})
	}
}

func TestToDoService_CreateThenGetByID(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()
	cmd := CreateToDoCommand{
		ID:          uuid.New(),
		Title:       "Write report",
		Description: "quarterly numbers",
		Expiry:      time.Date(2099, 6, 12, 17, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60)),
	}

	id, err := f.New().Create(ctx, cmd)
	require.NoError(t, err)

	view, err := f.New().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cmd.ID, view.ID)
	assert.Equal(t, cmd.Title, view.Title)
	assert.Equal(t, cmd.Description, view.Description)
	assert.True(t, cmd.Expiry.Equal(view.Expiry))
	assert.Equal(t, 0, view.PercentComplete)
}

func TestToDoService_NotFound(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()
	createToDo(t, f, "existing", fixedNow.Add(time.Hour))
	missing := uuid.New()

	operations := map[string]func() error{
		"GetByID": func() error {
			_, err := f.New().GetByID(ctx, missing)
			return err
		},
		"Update": func() error {
			return f.New().Update(ctx, UpdateToDoCommand{ID: missing, Title: "t", Expiry: fixedNow, PercentComplete: 10})
		},
		"SetPercentComplete": func() error {
			return f.New().SetPercentComplete(ctx, SetPercentCompleteCommand{ID: missing, PercentComplete: 10})
		},
		"MarkDone": func() error {
			return f.New().MarkDone(ctx, missing)
		},
		"Delete": func() error {
			return f.New().Delete(ctx, missing)
		},
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			err := op()
			assert.True(t, errors.Is(err, apperrors.ErrToDoNotFound), "got %v", err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
		})
	}
}

func TestToDoService_Update(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		expiry      time.Time
		percent     int
		expectedErr error
	}{
		{name: "should update all fields", title: "New", expiry: fixedNow.AddDate(0, 0, 2), percent: 55},
		{name: "should accept zero percent", title: "New", expiry: fixedNow.AddDate(0, 0, 2), percent: 0},
		{name: "should accept hundred percent", title: "New", expiry: fixedNow.AddDate(0, 0, 2), percent: 100},
		{name: "should reject blank title", title: " ", expiry: fixedNow.AddDate(0, 0, 2), percent: 55, expectedErr: apperrors.ErrTitleEmpty},
		{name: "should reject past expiry", title: "New", expiry: fixedNow.AddDate(0, 0, -3), percent: 55, expectedErr: apperrors.ErrExpiryInPast},
		{name: "should reject negative percent", title: "New", expiry: fixedNow.AddDate(0, 0, 2), percent: -1, expectedErr: apperrors.ErrPercentOutOfRange},
		{name: "should reject percent over hundred", title: "New", expiry: fixedNow.AddDate(0, 0, 2), percent: 101, expectedErr: apperrors.ErrPercentOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFactory(t)
			ctx := context.Background()
			originalExpiry := fixedNow.Add(time.Hour)
			id := createToDo(t, f, "Old", originalExpiry)

			err := f.New().Update(ctx, UpdateToDoCommand{
				ID:              id,
				Title:           tt.title,
				Description:     "new description",
				Expiry:          tt.expiry,
				PercentComplete: tt.percent,
			})

			view, getErr := f.New().GetByID(ctx, id)
			require.NoError(t, getErr)

			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "got %v", err)
				assert.Equal(t, "Old", view.Title)
				assert.True(t, originalExpiry.Equal(view.Expiry))
				assert.Equal(t, 0, view.PercentComplete)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.title, view.Title)
			assert.Equal(t, "new description", view.Description)
			assert.True(t, tt.expiry.Equal(view.Expiry))
			assert.Equal(t, tt.percent, view.PercentComplete)
		})
	}
}

func TestToDoService_SetPercentComplete(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()
	id := createToDo(t, f, "progress", fixedNow.Add(time.Hour))

	for _, percent := range []int{0, 1, 50, 99, 100} {
		err := f.New().SetPercentComplete(ctx, SetPercentCompleteCommand{ID: id, PercentComplete: percent})
		require.NoError(t, err)

		view, err := f.New().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, percent, view.PercentComplete)
	}

	for _, percent := range []int{-100, -1, 101, 1000} {
		err := f.New().SetPercentComplete(ctx, SetPercentCompleteCommand{ID: id, PercentComplete: percent})
		assert.True(t, errors.Is(err, apperrors.ErrPercentOutOfRange), "percent %d", percent)
	}

	view, err := f.New().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100, view.PercentComplete)
}

func TestToDoService_MarkDone(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()
	id := createToDo(t, f, "finish me", fixedNow.Add(time.Hour))
	require.NoError(t, f.New().SetPercentComplete(ctx, SetPercentCompleteCommand{ID: id, PercentComplete: 30}))

	require.NoError(t, f.New().MarkDone(ctx, id))
	first, err := f.New().GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.New().MarkDone(ctx, id))
	second, err := f.New().GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 100, first.PercentComplete)
	assert.Equal(t, first, second)
}

func TestToDoService_Delete(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()
	keep := createToDo(t, f, "keep", fixedNow.Add(time.Hour))
	drop := createToDo(t, f, "drop", fixedNow.Add(time.Hour))

	require.NoError(t, f.New().Delete(ctx, drop))

	all, err := f.New().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].ID)

	_, err = f.New().GetByID(ctx, drop)
	assert.True(t, errors.Is(err, apperrors.ErrToDoNotFound))
}

func TestToDoService_ListAll(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()

	empty, err := f.New().ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	createToDo(t, f, "one", fixedNow.Add(time.Hour))
	done := createToDo(t, f, "two", fixedNow.AddDate(0, 1, 0))
	require.NoError(t, f.New().MarkDone(ctx, done))

	all, err := f.New().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "done todos are still listed")
}

func TestToDoService_ListIncoming_Scenario(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()

	todayID := createToDo(t, f, "today", fixedNow.Add(time.Hour))

	today, err := f.New().ListIncoming(ctx, domain.ScopeToday)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, todayID, today[0].ID)

	tomorrowID := createToDo(t, f, "tomorrow", fixedNow.AddDate(0, 0, 1))

	tomorrow, err := f.New().ListIncoming(ctx, domain.ScopeTomorrow)
	require.NoError(t, err)
	require.Len(t, tomorrow, 1)
	assert.Equal(t, tomorrowID, tomorrow[0].ID)

	week, err := f.New().ListIncoming(ctx, domain.ScopeWeek)
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.ElementsMatch(t, []uuid.UUID{todayID, tomorrowID}, []uuid.UUID{week[0].ID, week[1].ID})
}

func TestToDoService_ListIncoming_ExcludesDone(t *testing.T) {
	f := setupFactory(t)
	ctx := context.Background()
	id := createToDo(t, f, "done today", fixedNow.Add(time.Hour))
	require.NoError(t, f.New().MarkDone(ctx, id))

	today, err := f.New().ListIncoming(ctx, domain.ScopeToday)

	require.NoError(t, err)
	assert.Empty(t, today)
}

func TestToDoService_ListIncoming_WeekEnd(t *testing.T) {
	sunday := time.Date(2099, 6, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		weekEnd  time.Weekday
		expected int
	}{
		{name: "week ending saturday excludes sunday", weekEnd: time.Saturday, expected: 0},
		{name: "week ending sunday includes sunday", weekEnd: time.Sunday, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFactory(t, WithWeekEnd(tt.weekEnd))
			createToDo(t, f, "sunday", sunday)

			week, err := f.New().ListIncoming(context.Background(), domain.ScopeWeek)

			require.NoError(t, err)
			assert.Len(t, week, tt.expected)
		})
	}
}

func TestToDoService_ListIncoming_UnknownScope(t *testing.T) {
	f := setupFactory(t)

	_, err := f.New().ListIncoming(context.Background(), domain.Scope(0))

	assert.True(t, errors.Is(err, apperrors.ErrUnknownScope))
}

// failingSession wraps a real session but fails every commit.
type failingSession struct {
	domain.Session
	err     error
	commits int
}

func (s *failingSession) Commit(context.Context) (int, error) {
	s.commits++
	return 0, s.err
}

func TestToDoService_CommitErrorPropagates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	commitErr := apperrors.NewDatabaseError("commit transaction", errors.New("disk I/O error"))
	session := &failingSession{Session: store.NewSession(), err: commitErr}
	service := NewToDoService(session, session, WithClock(fixedClock))

	_, err := service.Create(ctx, CreateToDoCommand{ID: uuid.New(), Title: "t", Expiry: fixedNow.Add(time.Hour)})

	assert.Same(t, commitErr, err)
	assert.Equal(t, 1, session.commits)

	all, err := NewFactory(store).New().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestToDoService_ValidationFailureDoesNotCommit(t *testing.T) {
	store := setupStore(t)
	session := &failingSession{Session: store.NewSession(), err: errors.New("unexpected commit")}
	service := NewToDoService(session, session, WithClock(fixedClock))

	_, err := service.Create(context.Background(), CreateToDoCommand{ID: uuid.New(), Title: "", Expiry: fixedNow})

	assert.True(t, errors.Is(err, apperrors.ErrTitleEmpty))
	assert.Equal(t, 0, session.commits)
}
