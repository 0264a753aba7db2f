// Package migrations embeds the goose migrations of the SQL snapshot
// backends and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// UpPostgres applies the PostgreSQL migrations.
func UpPostgres(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, Postgres, "pgx", "postgres")
}

// UpSQLite applies the SQLite migrations.
func UpSQLite(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, SQLite, "sqlite3", "sqlite")
}

func up(ctx context.Context, db *sql.DB, fsys embed.FS, dialect, dir string) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}
