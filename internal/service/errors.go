package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrAuthentication covers every credential or token failure. It carries no
	// detail so callers cannot tell an unknown user from a wrong password, or a
	// forged token from a revoked one.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound is returned for resources that are absent or owned by someone else.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed or missing input, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
