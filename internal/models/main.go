// Package models defines the core data structures for users and todos.
package models

// TokenAccessAuth is the only token class issued by the service.
const TokenAccessAuth = "auth"

// Token is a live session token held by a user.
type Token struct {
	// Access is the token class, e.g. "auth".
	Access string `json:"access"`
	// Token is the signed token string as handed to the client.
	Token string `json:"token"`
}

// User represents an application user with credentials.
// It is never encoded to clients directly; use PublicUser.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the unique login address of the user.
	Email string
	// PasswordHash is the bcrypt digest of the user's password.
	PasswordHash string
	// Tokens lists the user's live session tokens in issue order.
	Tokens []Token
}

// HasToken reports whether the user holds a live token of the given class and value.
func (u *User) HasToken(access, token string) bool {
	for _, t := range u.Tokens {
		if t.Access == access && t.Token == token {
			return true
		}
	}
	return false
}

// PublicUser is the only user representation returned to clients.
type PublicUser struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// Todo is a task owned by a single user.
type Todo struct {
	// ID is the unique identifier for the todo.
	ID string `json:"_id"`
	// Text is the trimmed, non-empty task description.
	Text string `json:"text"`
	// Completed marks the task as done.
	Completed bool `json:"completed"`
	// CompletedAt holds Unix milliseconds of the last completion, nil when not completed.
	CompletedAt *int64 `json:"completedAt"`
	// CreatorID is the ID of the owning user. It never changes after creation.
	CreatorID string `json:"_creator"`
}

// TodoPatch describes an update to a todo. Nil fields are left unchanged.
type TodoPatch struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}
