// Package repository provides persistence implementations for users and todos.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/lib/pq"
)

// PostgresAuthRepository stores users and their session tokens in PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// Create inserts a new user. Returns ErrEmailTaken if the email is already registered.
func (r *PostgresAuthRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID loads a user with its live tokens.
func (r *PostgresAuthRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash FROM users WHERE id = $1`, id)
}

// FindByEmail loads a user with its live tokens by exact email match.
func (r *PostgresAuthRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT id, email, password_hash FROM users WHERE email = $1`, email)
}

func (r *PostgresAuthRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT access, token FROM user_tokens WHERE user_id = $1 ORDER BY id`,
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Token
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		user.Tokens = append(user.Tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return &user, nil
}

// AddToken appends a live token to the user's token list.
func (r *PostgresAuthRepository) AddToken(ctx context.Context, userID string, token models.Token) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_tokens (user_id, access, token) VALUES ($1, $2, $3)`,
		userID, token.Access, token.Token,
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// RemoveToken deletes the matching token. Removing an absent token is not an error.
func (r *PostgresAuthRepository) RemoveToken(ctx context.Context, userID string, token models.Token) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND access = $2 AND token = $3`,
		userID, token.Access, token.Token,
	)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// RemoveAllTokens deletes every token held by the user.
func (r *PostgresAuthRepository) RemoveAllTokens(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

// Delete removes the user. Tokens and todos go with it through ON DELETE CASCADE.
func (r *PostgresAuthRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMany stores users with their tokens in a single transaction. Used for seeding.
func (r *PostgresAuthRepository) InsertMany(ctx context.Context, users []models.User) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, u := range users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
			u.ID, u.Email, u.PasswordHash,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
		for _, t := range u.Tokens {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_tokens (user_id, access, token) VALUES ($1, $2, $3)`,
				u.ID, t.Access, t.Token,
			); err != nil {
				return fmt.Errorf("insert token for %s: %w", u.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteMany removes users by ID; an empty ids slice removes every user. Used for seeding.
func (r *PostgresAuthRepository) DeleteMany(ctx context.Context, ids []string) error {
	var err error
	if len(ids) == 0 {
		_, err = r.DB.ExecContext(ctx, `DELETE FROM users`)
	} else {
		_, err = r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ANY($1)`, pq.Array(ids))
	}
	if err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}
