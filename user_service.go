package main

import (
	"context"
	"net/mail"
	"time"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set"
)

type UserService struct {
	db         *Database
	media      *MediaStore
	mapper     *Mapper
	bcryptCost int
	minPassLen int
	logger     *log.Logger
}

func NewUserService(db *Database, media *MediaStore, mapper *Mapper, cfg AuthConfig, logger *log.Logger) *UserService {
	return &UserService{
		db:         db,
		media:      media,
		mapper:     mapper,
		bcryptCost: cfg.BcryptCost,
		minPassLen: cfg.MinPasswordLen,
		logger:     logger.With("component", "users"),
	}
}

// Register creates an account. Emails are stored trimmed and lowercased.
func (s *UserService) Register(ctx context.Context, email, password string) (*UserResponse, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, badRequest("A valid email address is required.")
	}
	if len(password) < s.minPassLen {
		return nil, badRequest("Password is too short.")
	}

	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, internal("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &User{ID: newID(), Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}

	const dup = "A user with this email already exists."
	err = s.db.InTx(ctx, func(tx Stores) error {
		taken, err := tx.Users.EmailExists(ctx, email)
		if err != nil {
			return internal("failed to check email", err)
		}
		if taken {
			return conflict(dup)
		}
		return tx.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, writeErr(err, "register user", dup)
	}

	s.logger.Info("user registered", "user", user.ID)
	resp := s.mapper.User(*user)
	return &resp, nil
}

func (s *UserService) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.db.Users.List(ctx)
	if err != nil {
		return nil, internal("failed to list users", err)
	}
	return s.mapper.Users(users), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.db.Users.GetByID(ctx, id)
	if err != nil {
		return nil, loadErr(err, "User")
	}
	resp := s.mapper.User(*user)
	return &resp, nil
}

// Delete removes the user with everything they own, then their media files.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	paths := mapset.NewSet()
	err := s.db.InTx(ctx, func(tx Stores) error {
		found, err := tx.Users.Exists(ctx, userID)
		if err != nil {
			return internal("failed to load user", err)
		}
		if !found {
			return notFound("User not found.")
		}

		songPaths, err := tx.Songs.MediaPaths(ctx, userID)
		if err != nil {
			return internal("failed to collect song files", err)
		}
		coverPaths, err := tx.Playlists.CoverPaths(ctx, userID)
		if err != nil {
			return internal("failed to collect playlist covers", err)
		}
		for _, p := range append(songPaths, coverPaths...) {
			paths.Add(p)
		}

		if _, err := tx.Users.Delete(ctx, userID); err != nil {
			return internal("failed to delete user", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for p := range paths.Iter() {
		s.media.Delete(p.(string))
	}
	s.logger.Info("user deleted", "user", userID, "files", paths.Cardinality())
	return nil
}
