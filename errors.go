package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mattn/go-sqlite3"
)

// ErrorKind classifies a failure so the HTTP layer can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindBadRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// AppError is the typed failure returned by every service method.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any *AppError of the same kind, so callers can write
// errors.Is(err, ErrNotFound).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrNotFound = &AppError{Kind: KindNotFound}
	ErrConflict = &AppError{Kind: KindConflict}
)

func notFound(msg string) error     { return &AppError{Kind: KindNotFound, Message: msg} }
func unauthorized(msg string) error { return &AppError{Kind: KindUnauthorized, Message: msg} }
func conflict(msg string) error     { return &AppError{Kind: KindConflict, Message: msg} }
func badRequest(msg string) error   { return &AppError{Kind: KindBadRequest, Message: msg} }

func internal(msg string, err error) error {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// kindOf reports the kind of err, treating anything untyped as internal.
func kindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func errorStatus(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY
// constraint in SQLite.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
