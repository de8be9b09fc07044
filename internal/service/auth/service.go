package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/FilipeTerra/MyFinance/internal/config"
	"github.com/FilipeTerra/MyFinance/internal/crypto"
	"github.com/FilipeTerra/MyFinance/internal/domain"
	jwtpkg "github.com/FilipeTerra/MyFinance/internal/jwt"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.Config
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.Config) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so login failures never reveal whether an account
	// exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when the email is already registered,
	// ignoring letter case.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrRegistrationFailed masks unexpected persistence failures during
	// registration; the cause is logged, never returned to the caller.
	ErrRegistrationFailed = errors.New("unexpected error during registration, try again later")

	errNameRequired     = fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	errEmailRequired    = fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	errPasswordRequired = fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
)

// Credential is an issued bearer token with its validity window.
type Credential struct {
	Token     string        `json:"token"`
	UserName  string        `json:"userName"`
	UserEmail string        `json:"userEmail"`
	ExpiresIn time.Duration `json:"expiresIn"`
}

// Register creates a new user with a bcrypt-hashed password. No
// credential is issued; the caller must log in afterwards.
func (s Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, errNameRequired
	}
	if email == "" {
		return nil, errEmailRequired
	}
	if password == "" {
		return nil, errPasswordRequired
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		s.logger.Error("email lookup failed during registration", "error", err)
		return nil, ErrRegistrationFailed
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Concurrent registration can slip past the pre-check; the unique
		// index reports it as a conflict.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("user persistence failed during registration", "error", err)
		return nil, ErrRegistrationFailed
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and issues a signed bearer token.
func (s Service) Login(ctx context.Context, email, password string) (*Credential, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := jwtpkg.GenerateToken(user.ID, user.Email, user.Name, s.cfg.JWTIssuer, s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return &Credential{
		Token:     token,
		UserName:  user.Name,
		UserEmail: user.Email,
		ExpiresIn: s.cfg.TokenTTL,
	}, nil
}

// Authorize validates a bearer token and returns the associated user and
// claims.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil, errors.New("token required")
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}
