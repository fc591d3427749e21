package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TodoAPI/internal/models"
	"github.com/lib/pq"
)

// PostgresTodoRepository implements owner-scoped todo storage against PostgreSQL.
// Every single-record query filters on both the todo ID and the creator ID.
type PostgresTodoRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresTodoRepository creates a new PostgresTodoRepository using the provided *sql.DB.
func NewPostgresTodoRepository(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{DB: db}
}

const todoColumns = `id, text, completed, completed_at, creator_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var (
		todo        models.Todo
		completedAt sql.NullInt64
	)
	if err := row.Scan(&todo.ID, &todo.Text, &todo.Completed, &completedAt, &todo.CreatorID); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		v := completedAt.Int64
		todo.CompletedAt = &v
	}
	return &todo, nil
}

// Insert stores a new todo.
func (r *PostgresTodoRepository) Insert(ctx context.Context, todo *models.Todo) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		todo.ID, todo.Text, todo.Completed, todo.CompletedAt, todo.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// Find returns all todos created by ownerID in insertion order.
func (r *PostgresTodoRepository) Find(ctx context.Context, ownerID string) ([]models.Todo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE creator_id = $1 ORDER BY seq`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

// FindOne returns the todo with the given ID if it belongs to ownerID, or ErrNotFound.
func (r *PostgresTodoRepository) FindOne(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND creator_id = $2`,
		id, ownerID,
	)
	return oneOrNotFound(row, "select todo")
}

// UpdateOne applies patch to the owner's todo and returns the updated record, or ErrNotFound.
func (r *PostgresTodoRepository) UpdateOne(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE todos SET
			text = COALESCE($3, text),
			completed = $4,
			completed_at = $5
		WHERE id = $1 AND creator_id = $2
		RETURNING `+todoColumns,
		id, ownerID, patch.Text, patch.Completed, patch.CompletedAt,
	)
	return oneOrNotFound(row, "update todo")
}

// DeleteOne removes the owner's todo and returns it, or ErrNotFound.
func (r *PostgresTodoRepository) DeleteOne(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	row := r.DB.QueryRowContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND creator_id = $2 RETURNING `+todoColumns,
		id, ownerID,
	)
	return oneOrNotFound(row, "delete todo")
}

// DeleteByOwner removes every todo created by ownerID.
func (r *PostgresTodoRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM todos WHERE creator_id = $1`, ownerID); err != nil {
		return fmt.Errorf("delete owner todos: %w", err)
	}
	return nil
}

// InsertMany stores todos in a single transaction. Used for seeding.
func (r *PostgresTodoRepository) InsertMany(ctx context.Context, todos []models.Todo) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, todo := range todos {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			todo.ID, todo.Text, todo.Completed, todo.CompletedAt, todo.CreatorID,
		)
		if err != nil {
			return fmt.Errorf("insert todo %s: %w", todo.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteMany removes todos by ID regardless of owner. Used for seeding.
// An empty ids slice removes every todo.
func (r *PostgresTodoRepository) DeleteMany(ctx context.Context, ids []string) error {
	var err error
	if len(ids) == 0 {
		_, err = r.DB.ExecContext(ctx, `DELETE FROM todos`)
	} else {
		_, err = r.DB.ExecContext(ctx, `DELETE FROM todos WHERE id = ANY($1)`, pq.Array(ids))
	}
	if err != nil {
		return fmt.Errorf("delete todos: %w", err)
	}
	return nil
}

func oneOrNotFound(row *sql.Row, op string) (*models.Todo, error) {
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return todo, nil
}
