package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no record matches the query filter.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when creating a user with an email already in use.
	ErrEmailTaken = errors.New("email already in use")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
