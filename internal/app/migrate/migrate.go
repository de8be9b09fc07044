package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const commandTimeout = time.Minute

// Runner applies the schema migrations that back the finance API. Goose
// works over database/sql, so each command opens a short-lived stdlib
// connection next to the pgx pool the API serves from.
type Runner struct {
	pool          *pgxpool.Pool
	dsn           string
	migrationsDir string
	log           *slog.Logger
}

// New validates the migration setup and returns a Runner.
func New(pool *pgxpool.Pool, dsn, migrationsDir string, log *slog.Logger) (Runner, error) {
	if pool == nil {
		return Runner{}, errors.New("nil pool provided")
	}
	if dsn == "" {
		return Runner{}, errors.New("empty database dsn")
	}
	if migrationsDir == "" {
		return Runner{}, errors.New("empty migrations directory")
	}
	if _, err := os.Stat(migrationsDir); err != nil {
		return Runner{}, fmt.Errorf("locate migrations dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return Runner{pool: pool, dsn: dsn, migrationsDir: migrationsDir, log: log}, nil
}

// Ensure brings the schema up to the latest version.
func (r Runner) Ensure(ctx context.Context) error {
	return r.withProvider(ctx, func(ctx context.Context, provider *goose.Provider) error {
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		for _, result := range results {
			r.log.Info("migration applied", "source", result.Source.Path, "version", result.Source.Version)
		}
		if len(results) == 0 {
			r.log.Info("schema up to date")
		}
		return nil
	})
}

// Status logs the applied-or-pending state of every known migration.
func (r Runner) Status(ctx context.Context) error {
	return r.withProvider(ctx, func(ctx context.Context, provider *goose.Provider) error {
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, status := range statuses {
			applied := "pending"
			if status.State == goose.StateApplied {
				applied = status.AppliedAt.UTC().Format(time.RFC3339)
			}
			r.log.Info("migration", "source", status.Source.Path, "version", status.Source.Version, "applied", applied)
		}
		return nil
	})
}

// Down rolls back a single migration, or down to targetVersion when one
// is given.
func (r Runner) Down(ctx context.Context, targetVersion int64) error {
	return r.withProvider(ctx, func(ctx context.Context, provider *goose.Provider) error {
		if targetVersion > 0 {
			results, err := provider.DownTo(ctx, targetVersion)
			if err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
			r.log.Info("rollback complete", "target", targetVersion, "migrations", len(results))
			return nil
		}
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("rollback latest migration: %w", err)
		}
		r.log.Info("rollback complete", "source", result.Source.Path, "version", result.Source.Version)
		return nil
	})
}

// Ping verifies the serving pool can reach the database.
func (r Runner) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close releases the serving pool.
func (r Runner) Close() {
	r.pool.Close()
}

func (r Runner) withProvider(ctx context.Context, fn func(context.Context, *goose.Provider) error) error {
	db, err := sql.Open("pgx", r.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(r.migrationsDir))
	if err != nil {
		return fmt.Errorf("configure goose provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return fn(ctx, provider)
}
