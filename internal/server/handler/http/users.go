// Package http provides the HTTP handlers and router of the todo API.
package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/TodoAPI/internal/middleware"
	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/service"
	"go.uber.org/zap"
)

// UserService defines the identity operations required by UsersHandler.
type UserService interface {
	CreateIdentity(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(ctx context.Context, user *models.User, access string) (string, error)
	ResolveByCredentials(ctx context.Context, email, password string) (*models.User, error)
	RevokeToken(ctx context.Context, user *models.User, token string) error
	RevokeAllTokens(ctx context.Context, user *models.User) error
	DeleteIdentity(ctx context.Context, user *models.User) error
}

// UsersHandler serves signup, login, logout and the current identity.
type UsersHandler struct {
	Users  UserService
	Logger *zap.Logger
}

// credentialsRequest is the JSON payload of signup and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /users. It creates the identity, issues its first
// token in the x-auth response header and returns the public identity.
func (h *UsersHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.Users.CreateIdentity(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.respondWithToken(w, r, user)
}

// Login handles POST /users/login. Each successful login issues a new token;
// earlier tokens stay valid.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.Users.ResolveByCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.respondWithToken(w, r, user)
}

func (h *UsersHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := h.Users.IssueToken(r.Context(), user, models.TokenAccessAuth)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, service.SerializePublic(user))
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, service.SerializePublic(user))
}

// Logout handles DELETE /users/me/token by revoking the presented token.
func (h *UsersHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Users.RevokeToken(ctx, middleware.UserFromContext(ctx), middleware.TokenFromContext(ctx)); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles DELETE /users/me/tokens by revoking every token of the caller.
func (h *UsersHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Users.RevokeAllTokens(ctx, middleware.UserFromContext(ctx)); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteMe handles DELETE /users/me. The caller's todos and tokens go with it.
func (h *UsersHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)
	if err := h.Users.DeleteIdentity(ctx, user); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, service.SerializePublic(user))
}
