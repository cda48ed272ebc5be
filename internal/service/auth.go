package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/tokenstore"
	"github.com/templui/filesmanager/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const sessionKeyPrefix = "auth_"

type AuthService struct {
	userRepository repository.UserRepository
	tokens         tokenstore.Store
	sessionExpiry  time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	tokens tokenstore.Store,
	sessionExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		tokens:         tokens,
		sessionExpiry:  sessionExpiry,
	}
}

// Register creates a user. Only the bcrypt hash of the password is stored.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, ErrPasswordTooLong
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := s.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrAlreadyExist
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate checks a "Basic base64(email:password)" header and opens a
// session. Every failure is ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (string, error) {
	email, password, ok := parseBasicAuth(authorization)
	if !ok {
		return "", ErrUnauthorized
	}

	user, err := s.userRepository.ByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.ComparePassword(password, user.PasswordHash); err != nil {
		return "", ErrUnauthorized
	}

	token, err := s.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.tokens.Set(ctx, sessionKeyPrefix+token, user.ID, s.sessionExpiry); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("session opened", "user_id", user.ID)
	return token, nil
}

// ResolveSession returns the user ID a live token belongs to.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, err := s.tokens.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return userID, nil
}

// Revoke closes the session. Unknown tokens are ErrUnauthorized.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	userID, err := s.ResolveSession(ctx, token)
	if err != nil {
		return err
	}

	if err := s.tokens.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session closed", "user_id", userID)
	return nil
}

// Authorize resolves a token to its user. A session whose user no longer
// exists is ErrUnauthorized.
func (s *AuthService) Authorize(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// OptionalUser is Authorize for endpoints that also serve anonymous callers:
// a missing or invalid token yields a nil user, not an error.
func (s *AuthService) OptionalUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := s.Authorize(ctx, token)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	return user, err
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// parseBasicAuth splits at the first ':' so passwords may contain colons.
func parseBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}

	email, password, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" || password == "" {
		return "", "", false
	}
	return email, password, true
}
