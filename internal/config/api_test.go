package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":4000" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("unexpected token ttl: %v", cfg.TokenTTL)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("migrations should run on start by default")
	}
	if cfg.RateLimitRedisAddr != "" {
		t.Fatalf("redis should be off by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("TOKEN_TTL_MIN", "15")
	t.Setenv("DB_MIGRATE_ON_START", "false")
	t.Setenv("RATE_LIMIT_REDIS_ADDR", "redis:6379")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Fatalf("addr not read from env: %q", cfg.Addr)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("token ttl not read from env: %v", cfg.TokenTTL)
	}
	if cfg.MigrateOnStart {
		t.Fatalf("migrate toggle not read from env")
	}
	if cfg.RateLimitRedisAddr != "redis:6379" {
		t.Fatalf("redis addr not read from env: %q", cfg.RateLimitRedisAddr)
	}
}

func TestGetIntIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TOKEN_TTL_MIN", "soon")
	if got := GetInt("TOKEN_TTL_MIN", 60); got != 60 {
		t.Fatalf("expected fallback 60, got %d", got)
	}
}
