// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/service"
	"go.uber.org/zap"
)

// AuthHeader is the request header carrying the raw session token.
const AuthHeader = "x-auth"

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// TokenResolver maps a presented token to its live owner.
type TokenResolver interface {
	ResolveByToken(ctx context.Context, token string) (*models.User, error)
}

// TokenAuth is a middleware that admits only requests carrying a live session token.
//
// The token is read verbatim from the x-auth header. A missing, empty,
// forged, unknown or revoked token all produce the same empty 401 response,
// and the downstream handler is not called.
//
// On success the resolved user and the raw token are stored in the request
// context for UserFromContext and TokenFromContext. Store failures while
// resolving are logged and answered with 500.
func TokenAuth(resolver TokenResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AuthHeader)
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			user, err := resolver.ResolveByToken(r.Context(), token)
			if errors.Is(err, service.ErrAuthentication) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if err != nil {
				logger.Error("resolve token", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
		})
	}
}

// WithUser returns a copy of ctx carrying user and token, as TokenAuth does.
func WithUser(ctx context.Context, user *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if not found.
func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// TokenFromContext extracts the raw session token from the request context.
// Returns an empty string if not found.
func TokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(tokenKey).(string); ok {
		return s
	}
	return ""
}
