package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// idPath restricts {id} to UUIDs so that anything else falls through to 404
const idPath = "/todos/{id:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}}"

// NewRouter wires the todo routes onto a mux router
func NewRouter(h *ToDoHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.MiddlewareContentTypeSet)

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	router.HandleFunc("/todos", h.GetAll).Methods(http.MethodGet)
	router.HandleFunc("/todos", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/todos/incoming", h.GetIncoming).Methods(http.MethodGet)

	router.HandleFunc(idPath, h.GetByID).Methods(http.MethodGet)
	router.HandleFunc(idPath, h.Update).Methods(http.MethodPut)
	router.HandleFunc(idPath, h.Delete).Methods(http.MethodDelete)
	router.HandleFunc(idPath+"/percent", h.SetPercentComplete).Methods(http.MethodPatch)
	router.HandleFunc(idPath+"/done", h.MarkDone).Methods(http.MethodPatch)

	return router
}
