package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/atinyakov/TodoAPI/internal/models"
)

// MemoryStore keeps users and todos in process memory.
// It backs the server when no database DSN is configured and is used in tests.
// All reads return copies; callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
	todos map[string]*models.Todo
	// seq records insertion order of todos; next is the last value handed out.
	seq  map[string]uint64
	next uint64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		todos: make(map[string]*models.Todo),
		seq:   make(map[string]uint64),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryAuthRepository { return &MemoryAuthRepository{s: s} }

// Todos returns the todo repository view of the store.
func (s *MemoryStore) Todos() *MemoryTodoRepository { return &MemoryTodoRepository{s: s} }

// MemoryAuthRepository is the in-memory counterpart of PostgresAuthRepository.
type MemoryAuthRepository struct {
	s *MemoryStore
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	return &c
}

func (r *MemoryAuthRepository) emailTaken(email string) bool {
	for _, u := range r.s.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

// Create inserts a new user. Returns ErrEmailTaken if the email is already registered.
func (r *MemoryAuthRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email) {
		return ErrEmailTaken
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

// FindByID loads a user with its live tokens.
func (r *MemoryAuthRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

// FindByEmail loads a user with its live tokens by exact email match.
func (r *MemoryAuthRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// AddToken appends a live token to the user's token list.
func (r *MemoryAuthRepository) AddToken(_ context.Context, userID string, token models.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

// RemoveToken deletes the matching token. Removing an absent token is not an error.
func (r *MemoryAuthRepository) RemoveToken(_ context.Context, userID string, token models.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[userID]; ok {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t models.Token) bool { return t == token })
	}
	return nil
}

// RemoveAllTokens deletes every token held by the user.
func (r *MemoryAuthRepository) RemoveAllTokens(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[userID]; ok {
		u.Tokens = nil
	}
	return nil
}

// Delete removes the user together with the todos it created.
func (r *MemoryAuthRepository) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return ErrNotFound
	}
	delete(r.s.users, userID)
	for id, t := range r.s.todos {
		if t.CreatorID == userID {
			delete(r.s.todos, id)
			delete(r.s.seq, id)
		}
	}
	return nil
}

// InsertMany stores users with their tokens. Used for seeding.
func (r *MemoryAuthRepository) InsertMany(_ context.Context, users []models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[string]struct{}, len(users))
	for i := range users {
		if _, dup := seen[users[i].Email]; dup || r.emailTaken(users[i].Email) {
			return ErrEmailTaken
		}
		seen[users[i].Email] = struct{}{}
	}
	for i := range users {
		r.s.users[users[i].ID] = copyUser(&users[i])
	}
	return nil
}

// DeleteMany removes users by ID; an empty ids slice removes every user. Used for seeding.
func (r *MemoryAuthRepository) DeleteMany(_ context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(ids) == 0 {
		clear(r.s.users)
		clear(r.s.todos)
		clear(r.s.seq)
		return nil
	}
	for _, id := range ids {
		delete(r.s.users, id)
		for tid, t := range r.s.todos {
			if t.CreatorID == id {
				delete(r.s.todos, tid)
				delete(r.s.seq, tid)
			}
		}
	}
	return nil
}

// MemoryTodoRepository is the in-memory counterpart of PostgresTodoRepository.
type MemoryTodoRepository struct {
	s *MemoryStore
}

func copyTodo(t *models.Todo) *models.Todo {
	c := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}

// owned returns the stored todo only when it belongs to ownerID. Callers hold the lock.
func (r *MemoryTodoRepository) owned(id, ownerID string) (*models.Todo, bool) {
	t, ok := r.s.todos[id]
	if !ok || t.CreatorID != ownerID {
		return nil, false
	}
	return t, true
}

// put stores todo at the end of the insertion order. Callers hold the lock.
func (r *MemoryTodoRepository) put(todo *models.Todo) {
	r.s.next++
	r.s.todos[todo.ID] = copyTodo(todo)
	r.s.seq[todo.ID] = r.s.next
}

// Insert stores a new todo.
func (r *MemoryTodoRepository) Insert(_ context.Context, todo *models.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.put(todo)
	return nil
}

// Find returns all todos created by ownerID in insertion order.
func (r *MemoryTodoRepository) Find(_ context.Context, ownerID string) ([]models.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	todos := make([]models.Todo, 0)
	for _, t := range r.s.todos {
		if t.CreatorID == ownerID {
			todos = append(todos, *copyTodo(t))
		}
	}
	sort.Slice(todos, func(i, j int) bool { return r.s.seq[todos[i].ID] < r.s.seq[todos[j].ID] })
	return todos, nil
}

// FindOne returns the todo with the given ID if it belongs to ownerID, or ErrNotFound.
func (r *MemoryTodoRepository) FindOne(_ context.Context, id, ownerID string) (*models.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, ErrNotFound
	}
	return copyTodo(t), nil
}

// UpdateOne applies patch to the owner's todo and returns the updated record, or ErrNotFound.
func (r *MemoryTodoRepository) UpdateOne(_ context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Text != nil {
		t.Text = *patch.Text
	}
	t.Completed = patch.Completed
	t.CompletedAt = nil
	if patch.CompletedAt != nil {
		v := *patch.CompletedAt
		t.CompletedAt = &v
	}
	return copyTodo(t), nil
}

// DeleteOne removes the owner's todo and returns it, or ErrNotFound.
func (r *MemoryTodoRepository) DeleteOne(_ context.Context, id, ownerID string) (*models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.s.todos, id)
	delete(r.s.seq, id)
	return t, nil
}

// DeleteByOwner removes every todo created by ownerID.
func (r *MemoryTodoRepository) DeleteByOwner(_ context.Context, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.todos {
		if t.CreatorID == ownerID {
			delete(r.s.todos, id)
			delete(r.s.seq, id)
		}
	}
	return nil
}

// InsertMany stores todos. Used for seeding.
func (r *MemoryTodoRepository) InsertMany(_ context.Context, todos []models.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range todos {
		r.put(&todos[i])
	}
	return nil
}

// DeleteMany removes todos by ID; an empty ids slice removes every todo. Used for seeding.
func (r *MemoryTodoRepository) DeleteMany(_ context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(ids) == 0 {
		clear(r.s.todos)
		clear(r.s.seq)
		return nil
	}
	for _, id := range ids {
		delete(r.s.todos, id)
		delete(r.s.seq, id)
	}
	return nil
}
