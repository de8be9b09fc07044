package auth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/FilipeTerra/MyFinance/internal/config"
	"github.com/FilipeTerra/MyFinance/internal/crypto"
	"github.com/FilipeTerra/MyFinance/internal/domain"
	jwtpkg "github.com/FilipeTerra/MyFinance/internal/jwt"
	"github.com/FilipeTerra/MyFinance/internal/repository"
)

type userRepoStub struct {
	byEmail   map[string]*domain.User
	createErr error
	created   []*domain.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{byEmail: make(map[string]*domain.User)}
}

func (s *userRepoStub) CreateUser(ctx context.Context, user *domain.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.byEmail[strings.ToLower(user.Email)] = user
	s.created = append(s.created, user)
	return nil
}

func (s *userRepoStub) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := s.byEmail[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (s *userRepoStub) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *userRepoStub) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := s.byEmail[strings.ToLower(email)]
	return ok, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", JWTIssuer: "myfinance", TokenTTL: time.Hour}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newUserRepoStub()
	svc := New(repo, newLogger(), testConfig())

	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected user id to be generated")
	}
	if string(user.PasswordHash) == "s3cret!" {
		t.Fatalf("password stored in plaintext")
	}
	if err := crypto.ComparePassword(user.PasswordHash, "s3cret!"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	repo := newUserRepoStub()
	svc := New(repo, newLogger(), testConfig())

	if _, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "s3cret!"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "Mallory", "alice@example.COM", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterMapsConflictToEmailTaken(t *testing.T) {
	repo := newUserRepoStub()
	repo.createErr = repository.ErrConflict
	svc := New(repo, newLogger(), testConfig())

	if _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken on storage conflict, got %v", err)
	}
}

func TestRegisterMasksPersistenceFailures(t *testing.T) {
	repo := newUserRepoStub()
	repo.createErr = errors.New("connection reset")
	svc := New(repo, newLogger(), testConfig())

	if _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret!"); !errors.Is(err, ErrRegistrationFailed) {
		t.Fatalf("expected ErrRegistrationFailed, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newUserRepoStub()
	svc := New(repo, newLogger(), testConfig())
	if _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret!"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "whatever")
	_, wrongErr := svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginIssuesTokenWithIdentityClaims(t *testing.T) {
	repo := newUserRepoStub()
	cfg := testConfig()
	svc := New(repo, newLogger(), cfg)
	user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	credential, err := svc.Login(context.Background(), "ALICE@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if credential.ExpiresIn != cfg.TokenTTL {
		t.Fatalf("unexpected expiry: %v", credential.ExpiresIn)
	}

	claims, err := jwtpkg.Parse(credential.Token, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Fatalf("identity claims mismatch: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected a unique token id")
	}
}

func TestAuthorizeRejectsTamperedToken(t *testing.T) {
	repo := newUserRepoStub()
	svc := New(repo, newLogger(), testConfig())
	if _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret!"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	credential, err := svc.Login(context.Background(), "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, _, err := svc.Authorize(context.Background(), credential.Token+"x"); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
	if user, _, err := svc.Authorize(context.Background(), credential.Token); err != nil || user.Email != "alice@example.com" {
		t.Fatalf("valid token rejected: %v", err)
	}
}
