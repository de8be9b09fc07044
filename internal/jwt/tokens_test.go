package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "alice@example.com", "Alice", "myfinance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Issuer != "myfinance" {
		t.Fatalf("issuer mismatch: %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti")
	}
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	first, err := GenerateToken("user-1", "a@example.com", "A", "myfinance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := GenerateToken("user-1", "a@example.com", "A", "myfinance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	firstClaims, err := Parse(first, "secret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	secondClaims, err := Parse(second, "secret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if firstClaims.ID == secondClaims.ID {
		t.Fatalf("jti reused across tokens")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", "A", "myfinance", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := Parse(token, "other-secret"); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", "A", "myfinance", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := Parse(token, "secret"); !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expected expiry error, got %v", err)
	}
}
