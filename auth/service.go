// Package auth implements account registration, password login, and JWT
// issuing and verification for both HTTP and websocket entry points.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/relay/integration/database/pg"
	"github.com/dmitrymomot/relay/pkg/jwt"
	"github.com/dmitrymomot/relay/storage"
)

// Config holds authentication configuration with environment variable support.
type Config struct {
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"168h"`
}

// UserStore is the persistence surface the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, params storage.CreateUserParams) (storage.User, error)
	UserByEmail(ctx context.Context, email string) (storage.User, error)
}

// Service handles registration, login, and token lifecycle.
type Service struct {
	store    UserStore
	tokens   *jwt.Service
	tokenTTL time.Duration
}

// New creates an authentication service.
func New(store UserStore, cfg Config) (*Service, error) {
	tokens, err := jwt.NewFromString(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &Service{store: store, tokens: tokens, tokenTTL: ttl}, nil
}

// Register creates an account with a bcrypt password hash and returns it
// along with a fresh token.
func (s *Service) Register(ctx context.Context, username, email, password string) (storage.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storage.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, storage.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return storage.User{}, "", classifyDuplicate(err)
		}
		return storage.User{}, "", err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return storage.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (storage.User, string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return storage.User{}, "", ErrInvalidCredentials
		}
		return storage.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return storage.User{}, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return storage.User{}, "", err
	}
	return user, token, nil
}

// IssueToken signs a token for the given user.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	return s.tokens.Generate(jwt.StandardClaims{
		Subject:   userID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	})
}

// VerifyToken parses and validates a token, returning the user ID it was
// issued for.
func (s *Service) VerifyToken(token string) (uuid.UUID, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// classifyDuplicate maps a unique violation onto the field that caused it so
// clients get an actionable error instead of a bare constraint name.
func classifyDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "username") {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}
