package cli

import (
	"context"
	"fmt"
	"strconv"

	"todo-api/internal/errors"
	"todo-api/internal/services"
)

// UpdateCommand handles the update command. Nil fields keep their stored value.
type UpdateCommand struct {
	app             *App
	title           *string
	description     *string
	expiry          *string
	percentComplete *int
}

// NewUpdateCommand creates a new update command handler
func NewUpdateCommand(app *App, title, description, expiry *string, percentComplete *int) *UpdateCommand {
	return &UpdateCommand{
		app:             app,
		title:           title,
		description:     description,
		expiry:          expiry,
		percentComplete: percentComplete,
	}
}

// Execute replaces the todo whose id is args[0]
func (c *UpdateCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	id, err := parseID(args[0])
	if err != nil {
		return eh.Handle("update todo", err)
	}

	current, err := c.app.todos.New().GetByID(ctx, id)
	if err != nil {
		return eh.Handle("update todo", err)
	}

	cmd := services.UpdateToDoCommand{
		ID:              id,
		Title:           current.Title,
		Description:     current.Description,
		Expiry:          current.Expiry,
		PercentComplete: current.PercentComplete,
	}
	if c.title != nil {
		cmd.Title = *c.title
	}
	if c.description != nil {
		cmd.Description = *c.description
	}
	if c.expiry != nil {
		if cmd.Expiry, err = c.app.validator.ParseExpiry(*c.expiry); err != nil {
			return eh.Handle("update todo", err)
		}
	}
	if c.percentComplete != nil {
		cmd.PercentComplete = *c.percentComplete
	}

	if err := c.app.validator.ValidateUpdate(cmd.Title, cmd.Description, cmd.Expiry, cmd.PercentComplete); err != nil {
		return eh.Handle("update todo", err)
	}
	if err := c.app.todos.New().Update(ctx, cmd); err != nil {
		return eh.Handle("update todo", err)
	}

	fmt.Fprintf(c.app.out, "Updated todo %s\n", id)
	return nil
}

// PercentCommand handles the percent command
type PercentCommand struct {
	app *App
}

// NewPercentCommand creates a new percent command handler
func NewPercentCommand(app *App) *PercentCommand {
	return &PercentCommand{app: app}
}

// Execute sets the completion of todo args[0] to args[1] percent
func (c *PercentCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	id, err := parseID(args[0])
	if err != nil {
		return eh.Handle("set percent complete", err)
	}
	percent, err := strconv.Atoi(args[1])
	if err != nil {
		return eh.Handle("set percent complete", errors.NewInvalidInputError("percent", args[1], "must be a whole number"))
	}
	if err := c.app.validator.ValidatePercent(percent); err != nil {
		return eh.Handle("set percent complete", err)
	}

	err = c.app.todos.New().SetPercentComplete(ctx, services.SetPercentCompleteCommand{
		ID:              id,
		PercentComplete: percent,
	})
	if err != nil {
		return eh.Handle("set percent complete", err)
	}

	fmt.Fprintf(c.app.out, "Todo %s is %d%% complete\n", id, percent)
	return nil
}

// DoneCommand handles the done command
type DoneCommand struct {
	app *App
}

// NewDoneCommand creates a new done command handler
func NewDoneCommand(app *App) *DoneCommand {
	return &DoneCommand{app: app}
}

// Execute marks todo args[0] as done
func (c *DoneCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	id, err := parseID(args[0])
	if err != nil {
		return eh.Handle("mark todo done", err)
	}
	if err := c.app.todos.New().MarkDone(ctx, id); err != nil {
		return eh.Handle("mark todo done", err)
	}

	fmt.Fprintf(c.app.out, "Todo %s is done\n", id)
	return nil
}
