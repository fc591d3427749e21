package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeTodoService implements TodoService for testing and records its inputs.
type fakeTodoService struct {
	err error

	owner string
	id    string
	upd   service.TodoUpdate
}

func (f *fakeTodoService) todo() (*models.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Todo{ID: f.id, Text: "x", CreatorID: f.owner}, nil
}

func (f *fakeTodoService) Create(_ context.Context, ownerID, text string) (*models.Todo, error) {
	f.owner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Todo{ID: "t1", Text: text, CreatorID: ownerID}, nil
}

func (f *fakeTodoService) List(_ context.Context, ownerID string) ([]models.Todo, error) {
	f.owner = ownerID
	if f.err != nil {
		return nil, f.err
	}
	return []models.Todo{}, nil
}

func (f *fakeTodoService) Get(_ context.Context, ownerID, id string) (*models.Todo, error) {
	f.owner, f.id = ownerID, id
	return f.todo()
}

func (f *fakeTodoService) Update(_ context.Context, ownerID, id string, upd service.TodoUpdate) (*models.Todo, error) {
	f.owner, f.id, f.upd = ownerID, id, upd
	return f.todo()
}

func (f *fakeTodoService) Delete(_ context.Context, ownerID, id string) (*models.Todo, error) {
	f.owner, f.id = ownerID, id
	return f.todo()
}

// withID attaches a chi route context carrying the {id} parameter.
func withID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var owner = &models.User{ID: "owner-1"}

const todoID = "3a9e7c1d-2b45-4e6f-8a1b-9c0d1e2f3a42"

func TestTodosHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedCode   int
		expectedSubstr string
	}{
		{name: "invalid JSON", body: `{`, expectedCode: http.StatusBadRequest, expectedSubstr: "invalid request body"},
		{name: "empty text", body: `{"text":""}`, err: &service.ValidationError{Fields: map[string]string{"text": "is required"}}, expectedCode: http.StatusBadRequest, expectedSubstr: `"text":"is required"`},
		{name: "success", body: `{"text":"buy milk"}`, expectedCode: http.StatusOK, expectedSubstr: `"_creator":"owner-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTodoService{err: tt.err}
			rec := httptest.NewRecorder()
			req := authed(httptest.NewRequest(http.MethodPost, "/todos", bytes.NewBufferString(tt.body)), owner, "tok")
			h := &TodosHandler{Todos: svc, Logger: zap.NewNop()}
			h.Create(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestTodosHandler_List(t *testing.T) {
	svc := &fakeTodoService{}
	rec := httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodGet, "/todos", nil), owner, "tok")
	h := &TodosHandler{Todos: svc, Logger: zap.NewNop()}
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"todos\":[]}\n" {
		t.Errorf("unexpected body %q", got)
	}
	if svc.owner != owner.ID {
		t.Errorf("expected owner %q, got %q", owner.ID, svc.owner)
	}
}

func TestTodosHandler_GetDelete(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "found", expectedCode: http.StatusOK},
		{name: "not found", err: service.ErrNotFound, expectedCode: http.StatusNotFound},
		{name: "store error", err: errors.New("db down"), expectedCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		for method, call := range map[string]func(h *TodosHandler) http.HandlerFunc{
			http.MethodGet:    func(h *TodosHandler) http.HandlerFunc { return h.Get },
			http.MethodDelete: func(h *TodosHandler) http.HandlerFunc { return h.Delete },
		} {
			t.Run(method+" "+tt.name, func(t *testing.T) {
				svc := &fakeTodoService{err: tt.err}
				rec := httptest.NewRecorder()
				req := withID(authed(httptest.NewRequest(method, "/todos/t1", nil), owner, "tok"), "t1")
				call(&TodosHandler{Todos: svc, Logger: zap.NewNop()})(rec, req)

				if rec.Code != tt.expectedCode {
					t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
				}
				if svc.id != "t1" || svc.owner != owner.ID {
					t.Errorf("expected id t1 and owner %q, got %q and %q", owner.ID, svc.id, svc.owner)
				}
				if tt.expectedCode == http.StatusOK && !bytes.HasPrefix(rec.Body.Bytes(), []byte(`{"todo":{`)) {
					t.Errorf("expected todo envelope, got %q", rec.Body.String())
				}
				if tt.expectedCode == http.StatusNotFound && rec.Body.Len() != 0 {
					t.Errorf("expected empty body, got %q", rec.Body.String())
				}
			})
		}
	}
}

func TestTodosHandler_UpdateCompletedParsing(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantCompleted bool
		wantText      string
	}{
		{name: "true completes", body: `{"completed":true}`, wantCompleted: true},
		{name: "false reopens", body: `{"completed":false}`},
		{name: "string is not a boolean", body: `{"completed":"true"}`},
		{name: "number is not a boolean", body: `{"completed":1}`},
		{name: "absent reopens", body: `{"text":"new"}`, wantText: "new"},
		{name: "unknown fields ignored", body: `{"completed":true,"_creator":"someone-else","completedAt":1}`, wantCompleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTodoService{}
			rec := httptest.NewRecorder()
			req := withID(authed(httptest.NewRequest(http.MethodPatch, "/todos/"+todoID, bytes.NewBufferString(tt.body)), owner, "tok"), todoID)
			h := &TodosHandler{Todos: svc, Logger: zap.NewNop()}
			h.Update(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if svc.upd.Completed != tt.wantCompleted {
				t.Errorf("expected completed %v, got %v", tt.wantCompleted, svc.upd.Completed)
			}
			var text string
			if svc.upd.Text != nil {
				text = *svc.upd.Text
			}
			if text != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, text)
			}
		})
	}
}

func TestTodosHandler_UpdateMalformedIDBeforeBody(t *testing.T) {
	svc := &fakeTodoService{}
	rec := httptest.NewRecorder()
	req := withID(authed(httptest.NewRequest(http.MethodPatch, "/todos/123", bytes.NewBufferString(`{`)), owner, "tok"), "123")
	h := &TodosHandler{Todos: svc, Logger: zap.NewNop()}
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
	if svc.id != "" {
		t.Errorf("expected service not to be called, got id %q", svc.id)
	}
}
