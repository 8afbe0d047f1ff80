// Package auth owns accounts, passwords and bearer session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/moviematch/internal/cache"
	"github.com/oggyb/moviematch/internal/db"
	svcErr "github.com/oggyb/moviematch/internal/errors"
	"github.com/oggyb/moviematch/internal/repository"
)

// MinPasswordLength is enforced at sign-up.
const MinPasswordLength = 8

// ErrBadCredentials is returned by SignIn for an unknown email or wrong password.
var ErrBadCredentials = fmt.Errorf("invalid email or password: %w", svcErr.ErrAuthRequired)

// Sessions issues and resolves session tokens. Tokens live in Redis.
type Sessions struct {
	users *repository.UserRepository
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewSessions(users *repository.UserRepository, c *cache.RedisCache, ttl time.Duration) *Sessions {
	return &Sessions{users: users, cache: c, ttl: ttl}
}

// SignUp creates the account and opens a session for it.
func (s *Sessions) SignUp(ctx context.Context, email, password, displayName string) (string, *db.User, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return "", nil, fmt.Errorf("email %q: %w", email, svcErr.ErrInvalidArgument)
	}
	if len(password) < MinPasswordLength {
		return "", nil, fmt.Errorf("password shorter than %d: %w", MinPasswordLength, svcErr.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u, err := s.users.Create(ctx, email, string(hash), displayName)
	if err != nil {
		return "", nil, err
	}
	token, err := s.open(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// SignIn checks the password and opens a new session.
func (s *Sessions) SignIn(ctx context.Context, email, password string) (string, *db.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}
	token, err := s.open(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// SignOut revokes token. Unknown tokens are ignored.
func (s *Sessions) SignOut(ctx context.Context, token string) error {
	return s.cache.DeleteSession(ctx, token)
}

// Resolve maps a token to its user id. Unknown or expired tokens yield ErrAuthRequired.
func (s *Sessions) Resolve(ctx context.Context, token string) (string, error) {
	uid, err := s.cache.SessionUser(ctx, token)
	if errors.Is(err, cache.ErrMiss) {
		return "", svcErr.ErrAuthRequired
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return uid, nil
}

// User loads the account behind a user id.
func (s *Sessions) User(ctx context.Context, userID string) (*db.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Sessions) open(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.cache.PutSession(ctx, token, userID, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}
