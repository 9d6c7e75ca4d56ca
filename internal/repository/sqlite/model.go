package sqlite

import (
	"fmt"

	"github.com/google/uuid"

	"todo-api/internal/domain"
)

// ToDoRow is a row of the todos table as stored.
type ToDoRow struct {
	ID              string
	Title           string
	Description     string
	Expiry          string
	PercentComplete int
}

// ToDomain converts a stored row into a domain ToDo.
func (r *ToDoRow) ToDomain() (*domain.ToDo, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid todo id %q: %w", r.ID, err)
	}

	expiry, err := ParseTimeFromDB(r.Expiry)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry for todo %s: %w", r.ID, err)
	}

	return domain.RestoreToDo(id, r.Title, r.Description, expiry, r.PercentComplete), nil
}

// FromDomain converts a domain ToDo into a row.
func FromDomain(todo *domain.ToDo) ToDoRow {
	return ToDoRow{
		ID:              todo.ID().String(),
		Title:           todo.Title(),
		Description:     todo.Description(),
		Expiry:          FormatTimeForDB(todo.Expiry()),
		PercentComplete: todo.PercentComplete(),
	}
}

func rowsToDomain(rows []*ToDoRow) ([]*domain.ToDo, error) {
	todos := make([]*domain.ToDo, 0, len(rows))
	for _, row := range rows {
		todo, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, nil
}
