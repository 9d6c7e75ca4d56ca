package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/config"
	"todo-api/internal/domain"
	"todo-api/internal/errors"
	"todo-api/internal/services"
	"todo-api/internal/validation"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// expiryDisplayFormat is how expiries are printed
const expiryDisplayFormat = "2006-01-02 15:04"

// App bundles what every command handler needs: a service per operation,
// request validation and an output stream.
type App struct {
	config    *config.Config
	store     domain.Store
	todos     *services.Factory
	validator *validation.Validator
	out       io.Writer
}

// NewApp creates a CLI application over store
func NewApp(store domain.Store, cfg *config.Config, out io.Writer) (*App, error) {
	weekEnd, err := cfg.WeekEnd()
	if err != nil {
		return nil, err
	}

	return &App{
		config:    cfg,
		store:     store,
		todos:     services.NewFactory(store, services.WithClock(timeNow), services.WithWeekEnd(weekEnd)),
		validator: validation.NewValidatorWithConfig(cfg).WithClock(timeNow),
		out:       out,
	}, nil
}

// parseID parses a todo id argument
func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, errors.NewInvalidInputError("id", arg, "must be a UUID")
	}
	return id, nil
}

// printToDos prints one line per todo:
// id  expiry  percent%  title
func (a *App) printToDos(todos []services.ToDoView) {
	if len(todos) == 0 {
		fmt.Fprintln(a.out, "No todos found")
		return
	}

	for _, todo := range todos {
		fmt.Fprintf(a.out, "%s  %s  %3d%%  %s\n",
			todo.ID,
			todo.Expiry.Format(expiryDisplayFormat),
			todo.PercentComplete,
			todo.Title,
		)
	}
}

// printToDo prints every field of a single todo
func (a *App) printToDo(todo *services.ToDoView) {
	fmt.Fprintf(a.out, "ID:          %s\n", todo.ID)
	fmt.Fprintf(a.out, "Title:       %s\n", todo.Title)
	fmt.Fprintf(a.out, "Description: %s\n", todo.Description)
	fmt.Fprintf(a.out, "Expiry:      %s UTC\n", todo.Expiry.Format(expiryDisplayFormat))
	fmt.Fprintf(a.out, "Complete:    %d%%\n", todo.PercentComplete)
}
