package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-api/internal/config"
	"todo-api/internal/domain"
	"todo-api/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	config *config.Config
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand() *RootCommand {
	root := &RootCommand{}

	root.cmd = &cobra.Command{
		Use:   "todo",
		Short: "A todo tracking service and command-line client",
		Long: `todo keeps a list of todos, each with a title, a description, an expiry
and a completion percentage. It serves them over HTTP and manages them from the
command line against the same store.

EXAMPLES:
  todo serve                                        # Run the HTTP API on :8080
  todo create "Buy milk" --description "2 litres" --expiry 2030-01-02
  todo list                                         # List every todo by expiry
  todo incoming Week                                # Unfinished todos due this week
  todo percent <id> 50                              # Mark a todo half done
  todo done <id>                                    # Mark a todo done
  todo migrate status                               # Show applied SQLite migrations

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  Config file:
    TODO_CONFIG_FILE                   YAML file with the sections below

  Database Configuration:
    TODO_DB_DRIVER                     sqlite, postgres or mongo (default: sqlite)
    TODO_DB_DIR                        SQLite directory (default: ~/.todo)
    TODO_DB_FILENAME                   SQLite filename (default: todo.db)
    TODO_DB_DSN                        PostgreSQL connection string
    TODO_MONGO_URI                     MongoDB URI (needs a replica set)
    TODO_MONGO_DATABASE                MongoDB database (default: todo)
    TODO_DB_QUERY_TIMEOUT              Query timeout (default: 10s)
    TODO_DB_WRITE_TIMEOUT              Write timeout (default: 5s)
    TODO_DB_CONNECT_ATTEMPTS           Connection attempts at startup (default: 3)

  Server Configuration:
    TODO_SERVER_ADDR                   Listen address (default: :8080)
    TODO_SERVER_ALLOWED_ORIGINS        Comma separated CORS origins (default: *)
    TODO_SERVER_SHUTDOWN_TIMEOUT       Graceful shutdown timeout (default: 10s)

  Schedule Configuration:
    TODO_WEEK_END_DAY                  Last day of the week (default: Saturday)

  Validation Configuration:
    TODO_VALIDATION_TITLE_MAX          Max title length (default: 100)
    TODO_VALIDATION_DESCRIPTION_MAX    Max description length (default: 500)

  Application Configuration:
    TODO_APP_TIMEOUT                   Per-command timeout (default: 60s)
    TODO_APP_VERBOSE                   Enable verbose output (default: false)
    TODO_DEBUG                         Print debug output when set

  Telemetry Configuration:
    TODO_JAEGER_ENDPOINT               Jaeger collector URL; tracing is off when empty`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration and apply flag overrides before any command runs
			return root.loadConfig()
		},
	}

	// Add global flags for configuration overrides
	root.addGlobalFlags()

	// Add all subcommands
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// SetArgs replaces os.Args[1:] as the command line
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOutput redirects command output
func (r *RootCommand) SetOutput(w io.Writer) {
	r.cmd.SetOut(w)
	r.cmd.SetErr(w)
}

// Config returns the configuration loaded for the last run
func (r *RootCommand) Config() *config.Config {
	return r.config
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML configuration file (overrides TODO_CONFIG_FILE)")

	// Database configuration
	flags.String("db-driver", "", "Storage driver: sqlite, postgres or mongo (overrides TODO_DB_DRIVER)")
	flags.String("db-dir", "", "SQLite database directory (overrides TODO_DB_DIR)")
	flags.String("db-filename", "", "SQLite database filename (overrides TODO_DB_FILENAME)")
	flags.String("db-dsn", "", "PostgreSQL connection string (overrides TODO_DB_DSN)")
	flags.String("mongo-uri", "", "MongoDB connection URI (overrides TODO_MONGO_URI)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TODO_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TODO_DB_WRITE_TIMEOUT)")

	// Server configuration
	flags.String("addr", "", "HTTP listen address (overrides TODO_SERVER_ADDR)")

	// Schedule configuration
	flags.String("week-end", "", "Last day of the week (overrides TODO_WEEK_END_DAY)")

	// Validation configuration
	flags.Int("title-max-length", 0, "Maximum title length (overrides TODO_VALIDATION_TITLE_MAX)")
	flags.Int("description-max-length", 0, "Maximum description length (overrides TODO_VALIDATION_DESCRIPTION_MAX)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Per-command timeout (overrides TODO_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TODO_APP_VERBOSE)")

	// Telemetry configuration
	flags.String("jaeger-endpoint", "", "Jaeger collector URL (overrides TODO_JAEGER_ENDPOINT)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the todo API until interrupted. Migrations are applied when the store opens.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.New("todo-api")
			store, err := r.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			return NewServeCommand(r.config, store, logger).Execute(ctx, args)
		},
	}

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all todos",
		Long:  "List every todo, earliest expiry first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewListCommand(app).Execute(ctx, args)
			})
		},
	}

	// Incoming command
	incomingCmd := &cobra.Command{
		Use:   "incoming Today|Tomorrow|Week",
		Short: "List unfinished todos due soon",
		Long: `List the todos that are not done and expire within the given scope.

Scopes (UTC calendar days):
  Today      today
  Tomorrow   tomorrow
  Week       today through the configured last day of the week`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewIncomingCommand(app).Execute(ctx, args)
			})
		},
	}

	// Get command
	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewGetCommand(app).Execute(ctx, args)
			})
		},
	}

	// Create command
	createCmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a todo",
		Long: `Create a todo and print its id.

Expiry formats: RFC3339 (2030-01-02T15:04:05Z), 2030-01-02T15:04 or 2030-01-02, read as UTC.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			expiry, _ := cmd.Flags().GetString("expiry")
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewCreateCommand(app, description, expiry).Execute(ctx, args)
			})
		},
	}
	createCmd.Flags().StringP("description", "d", "", "Todo description")
	createCmd.Flags().StringP("expiry", "e", "", "Todo expiry")

	// Update command
	updateCmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a todo",
		Long:  "Replace the fields of a todo. Fields without a flag keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var title, description, expiry *string
			var percent *int
			if flags.Changed("title") {
				v, _ := flags.GetString("title")
				title = &v
			}
			if flags.Changed("description") {
				v, _ := flags.GetString("description")
				description = &v
			}
			if flags.Changed("expiry") {
				v, _ := flags.GetString("expiry")
				expiry = &v
			}
			if flags.Changed("percent") {
				v, _ := flags.GetInt("percent")
				percent = &v
			}
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewUpdateCommand(app, title, description, expiry, percent).Execute(ctx, args)
			})
		},
	}
	updateCmd.Flags().StringP("title", "t", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("expiry", "e", "", "New expiry")
	updateCmd.Flags().IntP("percent", "p", 0, "New completion percentage")

	// Percent command
	percentCmd := &cobra.Command{
		Use:   "percent [id] [0-100]",
		Short: "Set how much of a todo is complete",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewPercentCommand(app).Execute(ctx, args)
			})
		},
	}
	// Stop flag parsing at the id so "percent <id> -3" passes -3 through as the value.
	percentCmd.Flags().SetInterspersed(false)

	// Done command
	doneCmd := &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a todo as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewDoneCommand(app).Execute(ctx, args)
			})
		},
	}

	// Delete command
	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a todo",
		Long:  "Delete a todo. This operation cannot be undone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				return NewDeleteCommand(app).Execute(ctx, args)
			})
		},
	}

	// Migrate commands
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or roll back the SQLite schema",
		Long: `Inspect or roll back the SQLite schema. Pending migrations are applied
whenever the store is opened, so a rollback only lasts until the next command.
Use it before switching to an older build.`,
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "List applied schema migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.withApp(cmd, func(ctx context.Context, app *App) error {
					return NewMigrateStatusCommand(app).Execute(ctx, args)
				})
			},
		},
		&cobra.Command{
			Use:   "rollback [version]",
			Short: "Revert migrations newer than version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.withApp(cmd, func(ctx context.Context, app *App) error {
					return NewMigrateRollbackCommand(app).Execute(ctx, args)
				})
			},
		},
	)

	// Add all subcommands to root
	r.cmd.AddCommand(
		serveCmd,
		listCmd,
		incomingCmd,
		getCmd,
		createCmd,
		updateCmd,
		percentCmd,
		doneCmd,
		deleteCmd,
		migrateCmd,
	)
}

// withApp opens the configured store, runs fn under the application timeout
// and closes the store again.
func (r *RootCommand) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
	defer cancel()

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	app, err := NewApp(store, r.config, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return fn(ctx, app)
}

// openStore opens the store selected by the configuration
func (r *RootCommand) openStore(ctx context.Context) (domain.Store, error) {
	return config.CreateStore(ctx, r.config)
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}

// loadConfig runs the configuration cascade with the command-line flags on top
func (r *RootCommand) loadConfig() error {
	cfg, err := config.NewLoader().LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	r.config = cfg

	if cfg.Application.Verbose {
		fmt.Fprintf(r.cmd.ErrOrStderr(), "using %s store\n", cfg.Database.Driver)
	}
	return nil
}

// overridesFromFlags collects the global flags that were set explicitly
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	durationFlag := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}
	intFlag := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetInt(name)
		return &v
	}

	overrides.ConfigFile = stringFlag("config")

	// Database configuration
	overrides.DBDriver = stringFlag("db-driver")
	overrides.DBDir = stringFlag("db-dir")
	overrides.DBFilename = stringFlag("db-filename")
	overrides.DBDSN = stringFlag("db-dsn")
	overrides.MongoURI = stringFlag("mongo-uri")
	overrides.DBQueryTimeout = durationFlag("db-query-timeout")
	overrides.DBWriteTimeout = durationFlag("db-write-timeout")

	// Server configuration
	overrides.Addr = stringFlag("addr")

	// Schedule configuration
	overrides.WeekEndDay = stringFlag("week-end")

	// Validation configuration
	overrides.TitleMaxLength = intFlag("title-max-length")
	overrides.DescriptionMaxLength = intFlag("description-max-length")

	// Application configuration
	overrides.Timeout = durationFlag("app-timeout")
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	// Telemetry configuration
	overrides.JaegerEndpoint = stringFlag("jaeger-endpoint")

	return overrides
}
