package api

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"

	"todo-api/internal/domain"
	apperrors "todo-api/internal/errors"
	"todo-api/internal/services"
	"todo-api/internal/validation"
)

// stubService fails every call with err and counts the commands it receives
type stubService struct {
	err      error
	commands int
}

func (s *stubService) New() services.ToDoService { return s }

func (s *stubService) ListAll(ctx context.Context) ([]services.ToDoView, error) {
	return nil, s.err
}

func (s *stubService) GetByID(ctx context.Context, id uuid.UUID) (*services.ToDoView, error) {
	return nil, s.err
}

func (s *stubService) ListIncoming(ctx context.Context, scope domain.Scope) ([]services.ToDoView, error) {
	return nil, s.err
}

func (s *stubService) Create(ctx context.Context, cmd services.CreateToDoCommand) (uuid.UUID, error) {
	s.commands++
	return uuid.Nil, s.err
}

func (s *stubService) Update(ctx context.Context, cmd services.UpdateToDoCommand) error {
	s.commands++
	return s.err
}

func (s *stubService) SetPercentComplete(ctx context.Context, cmd services.SetPercentCompleteCommand) error {
	s.commands++
	return s.err
}

func (s *stubService) MarkDone(ctx context.Context, id uuid.UUID) error {
	s.commands++
	return s.err
}

func (s *stubService) Delete(ctx context.Context, id uuid.UUID) error {
	s.commands++
	return s.err
}

func stubRouter(svc *stubService, logs *bytes.Buffer) http.Handler {
	h := NewToDoHandler(
		svc,
		validation.NewValidator().WithClock(fixedClock),
		noop.NewTracerProvider().Tracer("test"),
		log.New(logs, "", 0),
	)
	return NewRouter(h)
}

func TestHandler_InfrastructureErrors(t *testing.T) {
	id := uuid.New().String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"list", http.MethodGet, "/todos", ""},
		{"incoming", http.MethodGet, "/todos/incoming?scope=Week", ""},
		{"get", http.MethodGet, "/todos/" + id, ""},
		{"create", http.MethodPost, "/todos", `{"title":"t","description":"d","expiry":"2099-06-11"}`},
		{"update", http.MethodPut, "/todos/" + id, `{"title":"t","description":"d","expiry":"2099-06-11","percentComplete":10}`},
		{"percent", http.MethodPatch, "/todos/" + id + "/percent", `{"percentComplete":10}`},
		{"done", http.MethodPatch, "/todos/" + id + "/done", ""},
		{"delete", http.MethodDelete, "/todos/" + id, ""},
	}

	causes := []struct {
		name    string
		err     error
		message string
	}{
		{"database", apperrors.NewDatabaseError("commit todos", errors.New("disk I/O error")), "A database error occurred. Please try again."},
		{"timeout", apperrors.FromContextError("commit todos", context.DeadlineExceeded), "The operation timed out. Please try again."},
	}

	for _, cause := range causes {
		for _, tt := range tests {
			t.Run(cause.name+"/"+tt.name, func(t *testing.T) {
				var logs bytes.Buffer
				rec := do(stubRouter(&stubService{err: cause.err}, &logs), tt.method, tt.path, tt.body)

				assert.Equal(t, http.StatusInternalServerError, rec.Code)
				assert.JSONEq(t, `{"error":"`+cause.message+`"}`, rec.Body.String())
				assert.Contains(t, logs.String(), "Unexpected error")
			})
		}
	}
}

func TestHandler_ValidationFailureNeverReachesService(t *testing.T) {
	id := uuid.New().String()
	svc := &stubService{}

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/todos", `{"title":"","description":"d","expiry":"2099-06-11"}`},
		{http.MethodPut, "/todos/" + id, `{"title":"t","description":"d","expiry":"2099-06-11","percentComplete":-4}`},
		{http.MethodPatch, "/todos/" + id + "/percent", `{"percentComplete":300}`},
	}

	var logs bytes.Buffer
	router := stubRouter(svc, &logs)
	for _, req := range requests {
		assert.Equal(t, http.StatusBadRequest, do(router, req.method, req.path, req.body).Code)
	}

	assert.Zero(t, svc.commands)
	assert.Empty(t, logs.String(), "caller errors are not logged")
}
