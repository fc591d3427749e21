package http

import (
	"net/http"

	"github.com/atinyakov/TodoAPI/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the todo API.
//
// Routes:
//
//	POST   /users            → usersHandler.Signup
//	POST   /users/login      → usersHandler.Login
//	GET    /users/me         → usersHandler.Me         (x-auth)
//	DELETE /users/me         → usersHandler.DeleteMe   (x-auth)
//	DELETE /users/me/token   → usersHandler.Logout     (x-auth)
//	DELETE /users/me/tokens  → usersHandler.LogoutAll  (x-auth)
//	POST   /todos            → todosHandler.Create     (x-auth)
//	GET    /todos            → todosHandler.List       (x-auth)
//	GET    /todos/{id}       → todosHandler.Get        (x-auth)
//	PATCH  /todos/{id}       → todosHandler.Update     (x-auth)
//	DELETE /todos/{id}       → todosHandler.Delete     (x-auth)
//
// Requests with a body must be application/json. Every request is logged.
func NewRouter(
	usersHandler *UsersHandler,
	todosHandler *TodosHandler,
	resolver middleware.TokenResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	// Bodiless requests pass through.
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Post("/users", usersHandler.Signup)
	r.Post("/users/login", usersHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(resolver, logger))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", usersHandler.Me)
			r.Delete("/", usersHandler.DeleteMe)
			r.Delete("/token", usersHandler.Logout)
			r.Delete("/tokens", usersHandler.LogoutAll)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todosHandler.Create)
			r.Get("/", todosHandler.List)
			r.Get("/{id}", todosHandler.Get)
			r.Patch("/{id}", todosHandler.Update)
			r.Delete("/{id}", todosHandler.Delete)
		})
	})

	return r
}
