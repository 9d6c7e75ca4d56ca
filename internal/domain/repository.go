package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ToDoRepository loads todos and stages changes to them. Staged changes
// are not durable until the owning UnitOfWork commits.
type ToDoRepository interface {
	ListAll(ctx context.Context) ([]*ToDo, error)
	// GetByID returns nil and no error when no todo has the given id.
	GetByID(ctx context.Context, id uuid.UUID) (*ToDo, error)
	// ListIncomingBetween returns unfinished todos with start <= expiry <= end.
	ListIncomingBetween(ctx context.Context, start, end time.Time) ([]*ToDo, error)
	Add(ctx context.Context, todo *ToDo) error
	MarkUpdated(todo *ToDo)
	Remove(todo *ToDo)
}

// UnitOfWork commits every change staged since the last commit in one
// transaction and returns the number of affected records.
type UnitOfWork interface {
	Commit(ctx context.Context) (int, error)
}

// Session is a repository together with the unit of work that commits it.
// A session is used by a single request and is not safe for concurrent use.
type Session interface {
	ToDoRepository
	UnitOfWork
}

// Store is a long-lived handle on a storage backend.
type Store interface {
	NewSession() Session
	Close() error
}
