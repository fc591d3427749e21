package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/service"
	"go.uber.org/zap"
)

// dummyHandler records whether it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

// fakeResolver accepts exactly one token.
type fakeResolver struct {
	token string
	user  *models.User
	err   error
	calls int
}

func (f *fakeResolver) ResolveByToken(_ context.Context, token string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if token != f.token {
		return nil, service.ErrAuthentication
	}
	return f.user, nil
}

func TestTokenAuth_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		set      bool
		wantCall int
	}{
		{name: "missing header", set: false, wantCall: 0},
		{name: "empty header", header: "", set: true, wantCall: 0},
		{name: "unknown token", header: "nope", set: true, wantCall: 1},
		{name: "bearer prefix is not stripped", header: "Bearer good", set: true, wantCall: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakeResolver{token: "good", user: &models.User{ID: "u1"}}
			dummy := &dummyHandler{}
			h := TokenAuth(resolver, zap.NewNop())(dummy)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/todos", nil)
			if tt.set {
				req.Header.Set(AuthHeader, tt.header)
			}
			h.ServeHTTP(rec, req)

			if dummy.called {
				t.Error("did not expect next handler to be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", rec.Body.String())
			}
			if resolver.calls != tt.wantCall {
				t.Errorf("expected %d resolver calls, got %d", tt.wantCall, resolver.calls)
			}
		})
	}
}

func TestTokenAuth_ValidToken(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@b.com"}
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{token: "good", user: user}, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set(AuthHeader, "good")
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Fatal("expected next handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := UserFromContext(dummy.ctx); got != user {
		t.Errorf("expected context user %v, got %v", user, got)
	}
	if got := TokenFromContext(dummy.ctx); got != "good" {
		t.Errorf("expected context token 'good', got %q", got)
	}
}

func TestTokenAuth_StoreFailure(t *testing.T) {
	dummy := &dummyHandler{}
	h := TokenAuth(&fakeResolver{err: errors.New("db down")}, zap.NewNop())(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set(AuthHeader, "good")
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("did not expect next handler to be called")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestFromContext_Empty(t *testing.T) {
	ctx := context.Background()
	if u := UserFromContext(ctx); u != nil {
		t.Errorf("expected nil user, got %v", u)
	}
	if tok := TokenFromContext(ctx); tok != "" {
		t.Errorf("expected empty token, got %q", tok)
	}
}
