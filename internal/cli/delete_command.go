package cli

import (
	"context"
	"fmt"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute removes todo args[0]. This operation cannot be undone.
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	id, err := parseID(args[0])
	if err != nil {
		return eh.Handle("delete todo", err)
	}
	if err := c.app.todos.New().Delete(ctx, id); err != nil {
		return eh.Handle("delete todo", err)
	}

	fmt.Fprintf(c.app.out, "Deleted todo %s\n", id)
	return nil
}
