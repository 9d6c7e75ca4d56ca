package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/domain"
)

// ToDoView is the read-only projection of a todo returned to callers
type ToDoView struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Expiry          time.Time `json:"expiry"`
	PercentComplete int       `json:"percentComplete"`
}

// NewToDoView projects a domain todo
func NewToDoView(todo *domain.ToDo) ToDoView {
	return ToDoView{
		ID:              todo.ID(),
		Title:           todo.Title(),
		Description:     todo.Description(),
		Expiry:          todo.Expiry(),
		PercentComplete: todo.PercentComplete(),
	}
}

// CreateToDoCommand carries the fields of a new todo
type CreateToDoCommand struct {
	ID          uuid.UUID
	Title       string
	Description string
	Expiry      time.Time
}

// UpdateToDoCommand replaces every mutable field of a todo
type UpdateToDoCommand struct {
	ID              uuid.UUID
	Title           string
	Description     string
	Expiry          time.Time
	PercentComplete int
}

// SetPercentCompleteCommand changes the completion percentage of a todo
type SetPercentCompleteCommand struct {
	ID              uuid.UUID
	PercentComplete int
}

// ToDoService handles the todo lifecycle. Each mutating call commits its
// own unit of work.
type ToDoService interface {
	// Queries
	ListAll(ctx context.Context) ([]ToDoView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ToDoView, error)
	ListIncoming(ctx context.Context, scope domain.Scope) ([]ToDoView, error)

	// Commands
	Create(ctx context.Context, cmd CreateToDoCommand) (uuid.UUID, error)
	Update(ctx context.Context, cmd UpdateToDoCommand) error
	SetPercentComplete(ctx context.Context, cmd SetPercentCompleteCommand) error
	MarkDone(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
