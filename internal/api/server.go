package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"go.opentelemetry.io/otel/trace"

	"todo-api/internal/config"
	"todo-api/internal/domain"
	"todo-api/internal/services"
	"todo-api/internal/validation"
)

// Server serves the todo API until its context is cancelled
type Server struct {
	httpServer      *http.Server
	logger          *log.Logger
	shutdownTimeout time.Duration
}

// NewServer builds the handler chain over store: recovery, access log, CORS, router.
func NewServer(cfg *config.Config, store domain.Store, tracer trace.Tracer, logger *log.Logger) (*Server, error) {
	weekEnd, err := cfg.WeekEnd()
	if err != nil {
		return nil, err
	}

	factory := services.NewFactory(store, services.WithWeekEnd(weekEnd))
	h := NewToDoHandler(factory, validation.NewValidatorWithConfig(cfg), tracer, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      Wrap(NewRouter(h), cfg.Server.AllowedOrigins, logger),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			ErrorLog:     logger,
		},
		logger:          logger,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}, nil
}

// Wrap applies the middleware shared by every route
func Wrap(router http.Handler, allowedOrigins []string, logger *log.Logger) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.ExposedHeaders([]string{"Location"}),
	)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(true),
	)(handlers.CombinedLoggingHandler(logger.Writer(), cors(router)))
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Println("received terminate, graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Println("server stopped")
	return nil
}
