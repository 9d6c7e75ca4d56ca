// Package api exposes the todo service over HTTP.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"todo-api/internal/domain"
	apperrors "todo-api/internal/errors"
	"todo-api/internal/services"
	"todo-api/internal/validation"
)

// ServiceFactory hands out a service bound to a fresh unit of work
type ServiceFactory interface {
	New() services.ToDoService
}

type ToDoHandler struct {
	todos     ServiceFactory
	validator *validation.Validator
	tracer    trace.Tracer
	logger    *log.Logger
}

func NewToDoHandler(f ServiceFactory, v *validation.Validator, t trace.Tracer, l *log.Logger) *ToDoHandler {
	return &ToDoHandler{todos: f, validator: v, tracer: t, logger: l}
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Expiry      string `json:"expiry"`
}

type updateRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Expiry          string `json:"expiry"`
	PercentComplete int    `json:"percentComplete"`
}

type percentRequest struct {
	PercentComplete *int `json:"percentComplete"`
}

// GetAll - GET /todos
func (h *ToDoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.GetAll")
	defer span.End()

	todos, err := h.todos.New().ListAll(ctx)
	if err != nil {
		h.fail(span, err, w)
		return
	}
	writeResp(todos, http.StatusOK, w)
}

// GetIncoming - GET /todos/incoming?scope=Today|Tomorrow|Week
func (h *ToDoHandler) GetIncoming(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.GetIncoming")
	defer span.End()

	scope, err := domain.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		h.fail(span, err, w)
		return
	}
	span.SetAttributes(attribute.String("todo.scope", scope.String()))

	todos, err := h.todos.New().ListIncoming(ctx, scope)
	if err != nil {
		h.fail(span, err, w)
		return
	}
	writeResp(todos, http.StatusOK, w)
}

// GetByID - GET /todos/{id}
func (h *ToDoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.GetByID")
	defer span.End()

	id := h.pathID(span, r)
	todo, err := h.todos.New().GetByID(ctx, id)
	if err != nil {
		h.fail(span, err, w)
		return
	}
	writeResp(todo, http.StatusOK, w)
}

// Create - POST /todos
func (h *ToDoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.Create")
	defer span.End()

	req := &createRequest{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	expiry, err := h.parseExpiry(req.Expiry)
	if err != nil {
		h.fail(span, err, w)
		return
	}
	if err := h.validator.ValidateCreate(req.Title, req.Description, expiry); err != nil {
		h.fail(span, err, w)
		return
	}

	id, err := h.todos.New().Create(ctx, services.CreateToDoCommand{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Expiry:      expiry,
	})
	if err != nil {
		h.fail(span, err, w)
		return
	}
	span.SetAttributes(attribute.String("todo.id", id.String()))

	w.Header().Set("Location", "/todos/"+id.String())
	writeResp(id.String(), http.StatusCreated, w)
}

// Update - PUT /todos/{id}
func (h *ToDoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.Update")
	defer span.End()

	id := h.pathID(span, r)
	req := &updateRequest{}
	if err := readReq(req, r, w); err != nil {
		return
	}

	expiry, err := h.parseExpiry(req.Expiry)
	if err != nil {
		h.fail(span, err, w)
		return
	}
	if err := h.validator.ValidateUpdate(req.Title, req.Description, expiry, req.PercentComplete); err != nil {
		h.fail(span, err, w)
		return
	}

	err = h.todos.New().Update(ctx, services.UpdateToDoCommand{
		ID:              id,
		Title:           req.Title,
		Description:     req.Description,
		Expiry:          expiry,
		PercentComplete: req.PercentComplete,
	})
	if err != nil {
		h.fail(span, err, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetPercentComplete - PATCH /todos/{id}/percent
func (h *ToDoHandler) SetPercentComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.SetPercentComplete")
	defer span.End()

	id := h.pathID(span, r)
	req := &percentRequest{}
	if err := readReq(req, r, w); err != nil {
		return
	}
	if req.PercentComplete == nil {
		ve := validation.NewValidationError()
		ve.AddRequiredError("percentComplete")
		h.fail(span, ve, w)
		return
	}
	if err := h.validator.ValidatePercent(*req.PercentComplete); err != nil {
		h.fail(span, err, w)
		return
	}

	err := h.todos.New().SetPercentComplete(ctx, services.SetPercentCompleteCommand{
		ID:              id,
		PercentComplete: *req.PercentComplete,
	})
	if err != nil {
		h.fail(span, err, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkDone - PATCH /todos/{id}/done
func (h *ToDoHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.MarkDone")
	defer span.End()

	if err := h.todos.New().MarkDone(ctx, h.pathID(span, r)); err != nil {
		h.fail(span, err, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete - DELETE /todos/{id}
func (h *ToDoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ToDoHandler.Delete")
	defer span.End()

	if err := h.todos.New().Delete(ctx, h.pathID(span, r)); err != nil {
		h.fail(span, err, w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health - GET /health
func (h *ToDoHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeResp(map[string]string{"status": "ok"}, http.StatusOK, w)
}

// MiddlewareContentTypeSet defaults every response to JSON
func (h *ToDoHandler) MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// pathID reads {id}. The route pattern only admits UUIDs, so parsing cannot fail.
func (h *ToDoHandler) pathID(span trace.Span, r *http.Request) uuid.UUID {
	id := uuid.MustParse(mux.Vars(r)["id"])
	span.SetAttributes(attribute.String("todo.id", id.String()))
	return id
}

// parseExpiry leaves an empty expiry as the zero time for the validator to report
func (h *ToDoHandler) parseExpiry(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return h.validator.ParseExpiry(s)
}

func (h *ToDoHandler) fail(span trace.Span, err error, w http.ResponseWriter) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	code := apperrors.GetErrorCode(err)
	if validation.IsValidationError(err) {
		code = "REQUEST_INVALID"
	}
	span.SetAttributes(attribute.String("error.code", code))
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Field() != "" {
		span.SetAttributes(attribute.String("error.field", appErr.Field()))
	}
	writeErrorResp(err, w, h.logger)
}
