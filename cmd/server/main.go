// Package main wires configuration, logging, storage, services and the HTTP
// router of the todo API and serves it until interrupted.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/TodoAPI/internal/auth"
	"github.com/atinyakov/TodoAPI/internal/config"
	"github.com/atinyakov/TodoAPI/internal/db"
	"github.com/atinyakov/TodoAPI/internal/logger"
	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/repository"
	"github.com/atinyakov/TodoAPI/internal/seed"
	"github.com/atinyakov/TodoAPI/internal/server/handler/http"
	"github.com/atinyakov/TodoAPI/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

type userStore interface {
	service.AuthRepository
	seed.BulkStore[models.User]
}

type todoStore interface {
	service.TodoRepository
	service.OwnedRemover
	seed.BulkStore[models.Todo]
}

func main() {
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	users, todos, closeStore, err := openStore(options.DatabaseDSN, zapLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher := auth.NewHasher(options.BcryptCost)
	codec := auth.TokenCodec{}
	secret := []byte(options.JWTSecret)

	if options.Seed {
		fixtures, err := seed.Build(hasher, codec, secret)
		if err != nil {
			return fmt.Errorf("build fixtures: %w", err)
		}
		if err := seed.Populate(ctx, users, todos, fixtures); err != nil {
			return fmt.Errorf("seed store: %w", err)
		}
		zapLogger.Info("fixtures loaded", zap.Int("users", len(fixtures.Accounts)), zap.Int("todos", len(fixtures.Todos)))
	}

	authService := service.NewAuthService(users, todos, hasher, codec, secret)
	todoService := service.NewTodoService(todos)

	router := http.NewRouter(
		&http.UsersHandler{Users: authService, Logger: zapLogger},
		&http.TodosHandler{Todos: todoService, Logger: zapLogger},
		authService,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore connects to PostgreSQL when dsn is set and falls back to the
// in-memory store otherwise.
func openStore(dsn string, zapLogger *zap.Logger) (userStore, todoStore, func(), error) {
	if dsn == "" {
		zapLogger.Warn("no database DSN configured, data is kept in memory")
		store := repository.NewMemoryStore()
		return store.Users(), store.Todos(), func() {}, nil
	}

	postgresDB, err := db.InitPostgres(dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init database: %w", err)
	}
	closeDB := func() {
		if err := postgresDB.Close(); err != nil {
			zapLogger.Error("close database", zap.Error(err))
		}
	}
	return repository.NewPostgresAuthRepository(postgresDB), repository.NewPostgresTodoRepository(postgresDB), closeDB, nil
}
