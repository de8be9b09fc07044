package config

import "time"

// Config holds runtime configuration for the API service.
type Config struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	MigrateOnStart     bool
	JWTSecret          string
	JWTIssuer          string
	TokenTTL           time.Duration
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// Load constructs a Config from environment variables.
func Load() Config {
	return Config{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://myfinance:myfinance@db:5432/myfinance?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		MigrateOnStart:     GetBool("DB_MIGRATE_ON_START", true),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		JWTIssuer:          GetString("JWT_ISSUER", "myfinance"),
		TokenTTL:           time.Duration(GetInt("TOKEN_TTL_MIN", 60)) * time.Minute,
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
