package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/atinyakov/TodoAPI/internal/repository"
	"github.com/google/uuid"
)

// TodoRepository defines the owner-scoped persistence operations needed by the TodoService.
// Every single-record method must match on both id and ownerID.
type TodoRepository interface {
	// Insert stores a new todo.
	Insert(ctx context.Context, todo *models.Todo) error
	// Find returns every todo created by ownerID.
	Find(ctx context.Context, ownerID string) ([]models.Todo, error)
	// FindOne returns the owner's todo or repository.ErrNotFound.
	FindOne(ctx context.Context, id, ownerID string) (*models.Todo, error)
	// UpdateOne patches the owner's todo and returns it, or repository.ErrNotFound.
	UpdateOne(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error)
	// DeleteOne removes the owner's todo and returns it, or repository.ErrNotFound.
	DeleteOne(ctx context.Context, id, ownerID string) (*models.Todo, error)
}

// TodoUpdate carries the client-editable fields of a todo.
type TodoUpdate struct {
	// Text replaces the todo text when non-nil.
	Text *string
	// Completed marks the todo done only when true; anything else reopens it.
	Completed bool
}

// TodoService implements todo operations scoped to the authenticated owner.
type TodoService struct {
	repo TodoRepository
	now  func() time.Time
}

// NewTodoService constructs a TodoService with the provided TodoRepository.
func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{repo: repo, now: time.Now}
}

// Create stores a new todo owned by ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID, text string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "is required")
	}

	todo := &models.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		CreatorID: ownerID,
	}
	if err := s.repo.Insert(ctx, todo); err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	return todo, nil
}

// List returns the todos owned by ownerID.
func (s *TodoService) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	todos, err := s.repo.Find(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}
	return todos, nil
}

// Get returns the owner's todo. Malformed IDs, missing todos and todos of
// other owners all yield ErrNotFound.
func (s *TodoService) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return notFound(s.repo.FindOne(ctx, id, ownerID))
}

// Update applies upd to the owner's todo. Completing a todo stamps
// completedAt with the current time; any other completed value clears it.
func (s *TodoService) Update(ctx context.Context, ownerID, id string, upd TodoUpdate) (*models.Todo, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	patch := models.TodoPatch{Completed: upd.Completed}
	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return nil, invalid("text", "is required")
		}
		patch.Text = &text
	}
	if upd.Completed {
		at := s.now().UnixMilli()
		patch.CompletedAt = &at
	}

	return notFound(s.repo.UpdateOne(ctx, id, ownerID, patch))
}

// Delete removes the owner's todo and returns it.
func (s *TodoService) Delete(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return notFound(s.repo.DeleteOne(ctx, id, ownerID))
}

// ParseID returns the canonical lowercase form of a todo id. Any spelling
// uuid.Parse accepts is normalised; anything else is ErrNotFound.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrNotFound
	}
	return u.String(), nil
}

func notFound(todo *models.Todo, err error) (*models.Todo, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}
