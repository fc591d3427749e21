package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TodoAPI/internal/middleware"
	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TodoService defines the owner-scoped todo operations required by TodosHandler.
type TodoService interface {
	Create(ctx context.Context, ownerID, text string) (*models.Todo, error)
	List(ctx context.Context, ownerID string) ([]models.Todo, error)
	Get(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, upd service.TodoUpdate) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Todo, error)
}

// TodosHandler serves the todo endpoints for the authenticated user.
type TodosHandler struct {
	Todos  TodoService
	Logger *zap.Logger
}

type todoEnvelope struct {
	Todo *models.Todo `json:"todo"`
}

type todosEnvelope struct {
	Todos []models.Todo `json:"todos"`
}

// Create handles POST /todos and returns the stored todo.
func (h *TodosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	todo, err := h.Todos.Create(r.Context(), ownerID(r), req.Text)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// List handles GET /todos.
func (h *TodosHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.Todos.List(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, todosEnvelope{Todos: todos})
}

// Get handles GET /todos/{id}.
func (h *TodosHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.Todos.Get(r.Context(), ownerID(r), chi.URLParam(r, "id")))
}

// Update handles PATCH /todos/{id}. A malformed id is 404 before the body is
// read. Only text and completed are read from the body; completed must be the
// JSON literal true to complete the todo.
func (h *TodosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := service.ParseID(id); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var req struct {
		Text      *string `json:"text"`
		Completed any     `json:"completed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	completed, _ := req.Completed.(bool)
	upd := service.TodoUpdate{Text: req.Text, Completed: completed}
	h.respond(w)(h.Todos.Update(r.Context(), ownerID(r), id, upd))
}

// Delete handles DELETE /todos/{id} and returns the removed todo.
func (h *TodosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.Todos.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")))
}

func (h *TodosHandler) respond(w http.ResponseWriter) func(*models.Todo, error) {
	return func(todo *models.Todo, err error) {
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, todoEnvelope{Todo: todo})
	}
}

func ownerID(r *http.Request) string {
	return middleware.UserFromContext(r.Context()).ID
}
