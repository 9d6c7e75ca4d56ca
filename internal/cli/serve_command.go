package cli

import (
	"context"
	"log"

	"todo-api/internal/api"
	"todo-api/internal/config"
	"todo-api/internal/domain"
	"todo-api/internal/telemetry"
)

// ServeCommand runs the HTTP API until its context is cancelled
type ServeCommand struct {
	config *config.Config
	store  domain.Store
	logger *log.Logger
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(cfg *config.Config, store domain.Store, logger *log.Logger) *ServeCommand {
	return &ServeCommand{config: cfg, store: store, logger: logger}
}

// Execute sets up tracing and serves requests
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	_, shutdown, err := telemetry.Setup(c.config.Telemetry.ServiceName, c.config.Telemetry.JaegerEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			c.logger.Printf("tracer shutdown: %v", err)
		}
	}()

	server, err := api.NewServer(c.config, c.store, telemetry.Tracer(c.config.Telemetry.ServiceName), c.logger)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
