package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"DailyBrief/internal/config"
)

// Open connects to the configured backend, never both, and migrates it.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Repository, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.Backend() {
	case config.DriverPostgres:
		dialect = Postgres
		db, err = sql.Open(dialect.driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		dialect = SQLite
		db, err = openSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}

	repo := New(db, dialect, opts...)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dialect.Name, err)
	}
	return repo, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "daily_brief.db"
	}
	db, err := sql.Open(SQLite.driver, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	return db, nil
}

// Describe is a short log-friendly description of the selected backend.
func Describe(cfg config.DatabaseConfig) slog.Attr {
	if cfg.Backend() == config.DriverPostgres {
		return slog.String("database", "postgres")
	}
	return slog.String("database", "sqlite:"+cfg.Path)
}
