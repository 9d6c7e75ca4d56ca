package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/services"
)

// CreateCommand handles the create command
type CreateCommand struct {
	app         *App
	description string
	expiry      string
}

// NewCreateCommand creates a new create command handler
func NewCreateCommand(app *App, description, expiry string) *CreateCommand {
	return &CreateCommand{app: app, description: description, expiry: expiry}
}

// Execute creates a todo titled by args and prints its id
func (c *CreateCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()
	title := strings.Join(args, " ")

	var expiry time.Time
	if c.expiry != "" {
		parsed, err := c.app.validator.ParseExpiry(c.expiry)
		if err != nil {
			return eh.Handle("create todo", err)
		}
		expiry = parsed
	}

	if err := c.app.validator.ValidateCreate(title, c.description, expiry); err != nil {
		return eh.Handle("create todo", err)
	}

	id, err := c.app.todos.New().Create(ctx, services.CreateToDoCommand{
		ID:          uuid.New(),
		Title:       title,
		Description: c.description,
		Expiry:      expiry,
	})
	if err != nil {
		return eh.Handle("create todo", err)
	}

	fmt.Fprintln(c.app.out, id)
	return nil
}
