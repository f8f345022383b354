package main

import (
	"context"
	"database/sql"
	"errors"
)

type owned interface {
	OwnerID() string
}

// requireOwner loads an entity and checks that requesterID owns it.
// A missing entity is NotFound; an existing one owned by someone else is
// Unauthorized.
func requireOwner[T owned](ctx context.Context, load func(ctx context.Context, id string) (T, error), id, requesterID, name string) (T, error) {
	var zero T
	entity, err := load(ctx, id)
	if err != nil {
		return zero, loadErr(err, name)
	}
	if entity.OwnerID() != requesterID {
		return zero, unauthorized("You are not the owner of this " + lowerFirst(name) + ".")
	}
	return entity, nil
}

// loadErr translates a store lookup error into a service error.
func loadErr(err error, name string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(name + " not found.")
	}
	return internal("failed to load "+lowerFirst(name), err)
}

// writeErr translates a store write error, mapping unique violations to
// Conflict with msg.
func writeErr(err error, what, conflictMsg string) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if isUniqueViolation(err) {
		return conflict(conflictMsg)
	}
	return internal("failed to "+what, err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
