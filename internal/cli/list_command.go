package cli

import (
	"context"

	"todo-api/internal/domain"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute prints every todo ordered by expiry
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	todos, err := c.app.todos.New().ListAll(ctx)
	if err != nil {
		return NewErrorHandler().Handle("list todos", err)
	}
	c.app.printToDos(todos)
	return nil
}

// IncomingCommand handles the incoming command
type IncomingCommand struct {
	app *App
}

// NewIncomingCommand creates a new incoming command handler
func NewIncomingCommand(app *App) *IncomingCommand {
	return &IncomingCommand{app: app}
}

// Execute prints the unfinished todos expiring within the scope named by args[0]
func (c *IncomingCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	scope, err := domain.ParseScope(args[0])
	if err != nil {
		return eh.Handle("list incoming todos", err)
	}

	todos, err := c.app.todos.New().ListIncoming(ctx, scope)
	if err != nil {
		return eh.Handle("list incoming todos", err)
	}
	c.app.printToDos(todos)
	return nil
}

// GetCommand handles the get command
type GetCommand struct {
	app *App
}

// NewGetCommand creates a new get command handler
func NewGetCommand(app *App) *GetCommand {
	return &GetCommand{app: app}
}

// Execute prints the todo whose id is args[0]
func (c *GetCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	id, err := parseID(args[0])
	if err != nil {
		return eh.Handle("get todo", err)
	}

	todo, err := c.app.todos.New().GetByID(ctx, id)
	if err != nil {
		return eh.Handle("get todo", err)
	}
	c.app.printToDo(todo)
	return nil
}
