package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid email or password."

// Claims is the payload of issued bearer tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db     *Database
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(db *Database, cfg AuthConfig) *AuthService {
	return &AuthService{
		db:     db,
		secret: []byte(cfg.JWTSecret),
		ttl:    time.Duration(cfg.JWTExpiryHours) * time.Hour,
		now:    time.Now,
	}
}

// Login checks credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.db.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, unauthorized(invalidCredentials)
		}
		return nil, internal("failed to load user", err)
	}
	if !checkPasswordHash(password, user.PasswordHash) {
		return nil, unauthorized(invalidCredentials)
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, internal("could not generate token", err)
	}
	return &TokenResponse{Token: token, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)}, nil
}

// GenerateJWT signs an HS256 token for user.
func (s *AuthService) GenerateJWT(user *User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates signature and expiry and returns the claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, unauthorized("Invalid or expired token.")
	}
	if claims.UserID == "" {
		return nil, unauthorized("Invalid or expired token.")
	}
	return claims, nil
}

// --- Password Hashing ---

func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
