package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"todo-api/internal/errors"
)

// schemaStore is implemented by stores with versioned migrations
type schemaStore interface {
	SchemaVersions(ctx context.Context) ([]int, error)
	RollbackSchema(ctx context.Context, version int) error
}

func (a *App) schemaStore() (schemaStore, error) {
	s, ok := a.store.(schemaStore)
	if !ok {
		return nil, fmt.Errorf("migrations are managed automatically for the %s driver", a.config.Database.Driver)
	}
	return s, nil
}

// MigrateStatusCommand handles the migrate status command
type MigrateStatusCommand struct {
	app *App
}

// NewMigrateStatusCommand creates a new migrate status command handler
func NewMigrateStatusCommand(app *App) *MigrateStatusCommand {
	return &MigrateStatusCommand{app: app}
}

// Execute prints the applied schema versions
func (c *MigrateStatusCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	store, err := c.app.schemaStore()
	if err != nil {
		return eh.Handle("read schema versions", err)
	}
	versions, err := store.SchemaVersions(ctx)
	if err != nil {
		return eh.Handle("read schema versions", err)
	}

	if len(versions) == 0 {
		fmt.Fprintln(c.app.out, "No migrations applied")
		return nil
	}
	applied := make([]string, len(versions))
	for i, v := range versions {
		applied[i] = strconv.Itoa(v)
	}
	fmt.Fprintf(c.app.out, "Applied migrations: %s\n", strings.Join(applied, ", "))
	return nil
}

// MigrateRollbackCommand handles the migrate rollback command
type MigrateRollbackCommand struct {
	app *App
}

// NewMigrateRollbackCommand creates a new migrate rollback command handler
func NewMigrateRollbackCommand(app *App) *MigrateRollbackCommand {
	return &MigrateRollbackCommand{app: app}
}

// Execute reverts the schema to version args[0]
func (c *MigrateRollbackCommand) Execute(ctx context.Context, args []string) error {
	eh := NewErrorHandler()

	version, err := strconv.Atoi(args[0])
	if err != nil || version < 0 {
		return eh.Handle("roll back schema", errors.NewInvalidInputError("version", args[0], "must be a non-negative whole number"))
	}
	store, err := c.app.schemaStore()
	if err != nil {
		return eh.Handle("roll back schema", err)
	}
	if err := store.RollbackSchema(ctx, version); err != nil {
		return eh.Handle("roll back schema", err)
	}

	fmt.Fprintf(c.app.out, "Rolled back schema to version %d\n", version)
	return nil
}
