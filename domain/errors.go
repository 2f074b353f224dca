package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInUse     = errors.New("row is still referenced")
)

// MissingReferenceError is returned by a Store when a write names a foreign
// key that does not resolve. Field is the JSON field name, e.g. "state_id".
type MissingReferenceError struct {
	Field string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s does not reference an existing row", e.Field)
}

// ValidationError itemizes input problems per field.
type ValidationError struct {
	Fields map[string][]string
	order  []string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// First returns the first message added.
func (e *ValidationError) First() string {
	if len(e.order) == 0 {
		return "The given data was invalid."
	}
	return e.Fields[e.order[0]][0]
}

func (e *ValidationError) Error() string {
	n := 0
	for _, msgs := range e.Fields {
		n += len(msgs)
	}
	if n <= 1 {
		return e.First()
	}
	suffix := "error"
	if n > 2 {
		suffix = "errors"
	}
	return fmt.Sprintf("%s (and %d more %s)", e.First(), n-1, suffix)
}

// Err returns nil when nothing was added.
func (e *ValidationError) Err() error {
	if len(e.order) == 0 {
		return nil
	}
	return e
}

// ConflictError is a uniqueness violation on Field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError names a missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", strings.ToLower(e.Entity), e.ID)
}

// Message is the user-facing text, e.g. "Business not found.".
func (e *NotFoundError) Message() string { return e.Entity + " not found." }

// InvariantViolation rejects an operation that would break a board rule.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string { return e.Message }
