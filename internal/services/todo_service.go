package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
)

// DefaultWeekEnd is the last day of the week used for the Week scope.
const DefaultWeekEnd = time.Saturday

// Option configures a ToDoService.
type Option func(*toDoServiceImpl)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *toDoServiceImpl) {
		s.now = now
	}
}

// WithWeekEnd sets the last day of the week for the Week scope.
func WithWeekEnd(day time.Weekday) Option {
	return func(s *toDoServiceImpl) {
		s.weekEnd = day
	}
}

// toDoServiceImpl implements the ToDoService interface
type toDoServiceImpl struct {
	repo    domain.ToDoRepository
	uow     domain.UnitOfWork
	now     func() time.Time
	weekEnd time.Weekday
}

// NewToDoService creates a new ToDoService over repo, committing through uow
func NewToDoService(repo domain.ToDoRepository, uow domain.UnitOfWork, opts ...Option) ToDoService {
	s := &toDoServiceImpl{
		repo:    repo,
		uow:     uow,
		now:     time.Now,
		weekEnd: DefaultWeekEnd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every stored todo
func (s *toDoServiceImpl) ListAll(ctx context.Context) ([]ToDoView, error) {
	todos, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toViews(todos), nil
}

// GetByID returns a single todo
func (s *toDoServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*ToDoView, error) {
	todo, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewToDoView(todo)
	return &view, nil
}

// ListIncoming returns unfinished todos expiring within scope
func (s *toDoServiceImpl) ListIncoming(ctx context.Context, scope domain.Scope) ([]ToDoView, error) {
	window, err := domain.IncomingWindow(scope, s.now(), s.weekEnd)
	if err != nil {
		return nil, err
	}

	todos, err := s.repo.ListIncomingBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	return toViews(todos), nil
}

// Create stores a new todo and returns its id
func (s *toDoServiceImpl) Create(ctx context.Context, cmd CreateToDoCommand) (uuid.UUID, error) {
	todo, err := domain.NewToDoAt(s.now(), cmd.ID, cmd.Title, cmd.Description, cmd.Expiry)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.repo.Add(ctx, todo); err != nil {
		return uuid.Nil, err
	}
	if _, err := s.uow.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return todo.ID(), nil
}

// Update replaces every mutable field of a todo
func (s *toDoServiceImpl) Update(ctx context.Context, cmd UpdateToDoCommand) error {
	todo, err := s.load(ctx, cmd.ID)
	if err != nil {
		return err
	}

	if err := todo.UpdateAt(s.now(), cmd.Title, cmd.Description, cmd.Expiry, cmd.PercentComplete); err != nil {
		return err
	}
	return s.save(ctx, todo)
}

// SetPercentComplete changes the completion percentage of a todo
func (s *toDoServiceImpl) SetPercentComplete(ctx context.Context, cmd SetPercentCompleteCommand) error {
	todo, err := s.load(ctx, cmd.ID)
	if err != nil {
		return err
	}

	if err := todo.SetPercentComplete(cmd.PercentComplete); err != nil {
		return err
	}
	return s.save(ctx, todo)
}

// MarkDone completes a todo
func (s *toDoServiceImpl) MarkDone(ctx context.Context, id uuid.UUID) error {
	todo, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	todo.MarkDone()
	return s.save(ctx, todo)
}

// Delete removes a todo
func (s *toDoServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	todo, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	s.repo.Remove(todo)
	_, err = s.uow.Commit(ctx)
	return err
}

// load fetches a todo, failing when it does not exist
func (s *toDoServiceImpl) load(ctx context.Context, id uuid.UUID) (*domain.ToDo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, errors.NewToDoNotFoundError(id.String())
	}
	return todo, nil
}

// save stages todo as updated and commits
func (s *toDoServiceImpl) save(ctx context.Context, todo *domain.ToDo) error {
	s.repo.MarkUpdated(todo)
	_, err := s.uow.Commit(ctx)
	return err
}

func toViews(todos []*domain.ToDo) []ToDoView {
	views := make([]ToDoView, 0, len(todos))
	for _, todo := range todos {
		views = append(views, NewToDoView(todo))
	}
	return views
}

// Factory builds a ToDoService over a fresh session of store, so that
// concurrent requests never share staged changes.
type Factory struct {
	store domain.Store
	opts  []Option
}

// NewFactory creates a Factory whose services are built with opts
func NewFactory(store domain.Store, opts ...Option) *Factory {
	return &Factory{store: store, opts: opts}
}

// New returns a service bound to a new session
func (f *Factory) New() ToDoService {
	session := f.store.NewSession()
	return NewToDoService(session, session, f.opts...)
}
