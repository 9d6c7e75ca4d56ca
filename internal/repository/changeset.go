// Package repository holds the change tracking shared by the storage
// backends. Each backend stages mutations in a ChangeSet and applies them
// inside its own transaction on commit.
package repository

import (
	"context"

	"github.com/google/uuid"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
)

// ChangeKind is the kind of a staged mutation.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeUpdated
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one staged mutation.
type Change struct {
	Kind ChangeKind
	ToDo *domain.ToDo
}

// Writer applies single mutations to a backend, returning the number of
// affected records. Implementations run inside the backend's transaction.
type Writer interface {
	Insert(ctx context.Context, todo *domain.ToDo) (int64, error)
	Update(ctx context.Context, todo *domain.ToDo) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// ChangeSet records mutations in the order they were staged.
type ChangeSet struct {
	changes []Change
}

// Add stages an insert.
func (c *ChangeSet) Add(todo *domain.ToDo) {
	c.changes = append(c.changes, Change{Kind: ChangeAdded, ToDo: todo})
}

// Update stages an update. Staging a todo that is already pending as an
// insert or update is a no-op, since the pending entry holds the same
// pointer and is written with its latest state.
func (c *ChangeSet) Update(todo *domain.ToDo) {
	for _, ch := range c.changes {
		if ch.ToDo.ID() == todo.ID() && ch.Kind != ChangeRemoved {
			return
		}
	}
	c.changes = append(c.changes, Change{Kind: ChangeUpdated, ToDo: todo})
}

// Remove stages a delete. A todo added in the same change set is simply
// dropped from it.
func (c *ChangeSet) Remove(todo *domain.ToDo) {
	kept := c.changes[:0]
	added := false
	for _, ch := range c.changes {
		if ch.ToDo.ID() == todo.ID() {
			if ch.Kind == ChangeAdded {
				added = true
			}
			continue
		}
		kept = append(kept, ch)
	}
	c.changes = kept

	if !added {
		c.changes = append(c.changes, Change{Kind: ChangeRemoved, ToDo: todo})
	}
}

// Changes returns the staged mutations in order.
func (c *ChangeSet) Changes() []Change {
	return c.changes
}

// Len returns the number of staged mutations.
func (c *ChangeSet) Len() int {
	return len(c.changes)
}

// Reset discards every staged mutation.
func (c *ChangeSet) Reset() {
	c.changes = nil
}

// ApplyTo writes the staged mutations through w and returns the total
// number of affected records. An update or delete that affects no record
// fails with a not found error, because the todo was removed concurrently.
func (c *ChangeSet) ApplyTo(ctx context.Context, w Writer) (int, error) {
	total := 0
	for _, ch := range c.changes {
		if err := ctx.Err(); err != nil {
			return 0, errors.FromContextError("commit todos", err)
		}

		var (
			n   int64
			err error
		)
		switch ch.Kind {
		case ChangeAdded:
			n, err = w.Insert(ctx, ch.ToDo)
		case ChangeUpdated:
			n, err = w.Update(ctx, ch.ToDo)
		case ChangeRemoved:
			n, err = w.Delete(ctx, ch.ToDo.ID())
		}
		if err != nil {
			return 0, err
		}
		if n == 0 && ch.Kind != ChangeAdded {
			return 0, errors.NewToDoNotFoundError(ch.ToDo.ID().String())
		}
		total += int(n)
	}
	return total, nil
}
