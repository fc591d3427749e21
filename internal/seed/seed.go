// Package seed builds and loads the fixture users and todos used in
// development (-seed) and by tests.
package seed

import (
	"context"
	"fmt"

	"github.com/atinyakov/TodoAPI/internal/models"
)

// Fixed fixture identifiers, stable across runs.
const (
	UserOneID = "6f1c2b9e-4a57-4d1e-9c3a-1b2d3e4f5a60"
	UserTwoID = "0b7d5e2a-9c41-4f8b-a6e3-2c4d5e6f7a81"
	TodoOneID = "3a9e7c1d-2b45-4e6f-8a1b-9c0d1e2f3a42"
	TodoTwoID = "c4d8e2f1-7a36-4b5c-9d0e-1f2a3b4c5d63"
)

// Account is a fixture user together with its plaintext password.
type Account struct {
	User     models.User
	Password string
}

// Fixtures is the full data set loaded by Populate.
type Fixtures struct {
	Accounts []Account
	Todos    []models.Todo
}

// Hasher hashes fixture passwords.
type Hasher interface {
	Hash(password string) (string, error)
}

// Issuer signs fixture tokens.
type Issuer interface {
	Issue(userID, access string, secret []byte) (string, error)
}

// Build returns two users, each holding one auth token, and two todos:
// an open one owned by the first user and one owned by the second user
// completed at 333.
func Build(hasher Hasher, issuer Issuer, secret []byte) (*Fixtures, error) {
	accounts := []Account{
		{User: models.User{ID: UserOneID, Email: "tim@example.com"}, Password: "userOnePass"},
		{User: models.User{ID: UserTwoID, Email: "audrey@example.com"}, Password: "userTwoPass"},
	}

	for i := range accounts {
		u := &accounts[i].User

		digest, err := hasher.Hash(accounts[i].Password)
		if err != nil {
			return nil, fmt.Errorf("hash fixture password: %w", err)
		}
		u.PasswordHash = digest

		token, err := issuer.Issue(u.ID, models.TokenAccessAuth, secret)
		if err != nil {
			return nil, fmt.Errorf("sign fixture token: %w", err)
		}
		u.Tokens = []models.Token{{Access: models.TokenAccessAuth, Token: token}}
	}

	completedAt := int64(333)
	todos := []models.Todo{
		{ID: TodoOneID, Text: "First test todo", CreatorID: UserOneID},
		{ID: TodoTwoID, Text: "Second test todo", Completed: true, CompletedAt: &completedAt, CreatorID: UserTwoID},
	}

	return &Fixtures{Accounts: accounts, Todos: todos}, nil
}

// Users returns the fixture users.
func (f *Fixtures) Users() []models.User {
	users := make([]models.User, 0, len(f.Accounts))
	for _, a := range f.Accounts {
		users = append(users, a.User)
	}
	return users
}

// BulkStore is the seeding subset of a repository.
type BulkStore[T any] interface {
	InsertMany(ctx context.Context, items []T) error
	DeleteMany(ctx context.Context, ids []string) error
}

// Populate wipes users and todos and loads f in their place.
func Populate(ctx context.Context, users BulkStore[models.User], todos BulkStore[models.Todo], f *Fixtures) error {
	if err := todos.DeleteMany(ctx, nil); err != nil {
		return fmt.Errorf("clear todos: %w", err)
	}
	if err := users.DeleteMany(ctx, nil); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	if err := users.InsertMany(ctx, f.Users()); err != nil {
		return fmt.Errorf("insert users: %w", err)
	}
	if err := todos.InsertMany(ctx, f.Todos); err != nil {
		return fmt.Errorf("insert todos: %w", err)
	}
	return nil
}
