package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type UserStore struct {
	q sqlx.ExtContext
}

func NewUserStore(q sqlx.ExtContext) *UserStore {
	return &UserStore{q: q}
}

const userColumns = `id, email, password_hash, created_at, updated_at`

func (s *UserStore) Create(ctx context.Context, u *User) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns sql.ErrNoRows (wrapped) when the user does not exist.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := sqlx.GetContext(ctx, s.q, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := sqlx.GetContext(ctx, s.q, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, s.q, `SELECT 1 FROM users WHERE email = ?`, email)
}

func (s *UserStore) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.q, `SELECT 1 FROM users WHERE id = ?`, id)
}

func (s *UserStore) List(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := sqlx.SelectContext(ctx, s.q, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, email`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes the user; owned songs, playlists and join rows go with it
// through ON DELETE CASCADE.
func (s *UserStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user %s: %w", id, err)
	}
	return affected(res)
}

// exists runs a SELECT 1 style query and reports whether it returned a row.
func exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, q, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return true, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
