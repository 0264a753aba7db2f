package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/formvault/internal/dbx"
	"github.com/dmitrijs2005/formvault/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps the current snapshot in snapshots and appends every
// saved body to snapshot_history in the same transaction.
type PostgresStore struct {
	db   *sql.DB
	name string
}

// migratePostgres is a seam so tests can skip goose.
var migratePostgres = migrations.UpPostgres

// OpenPostgres connects through the pgx stdlib driver and applies
// migrations.
func OpenPostgres(ctx context.Context, dsn, name string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := migratePostgres(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewPostgresStore(db, name), nil
}

func NewPostgresStore(db *sql.DB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	query :=
		`SELECT body FROM snapshots
		 WHERE name = $1
		 `

	var body []byte
	err := s.db.QueryRowContext(ctx, query, s.name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return body, nil
}

func (s *PostgresStore) Save(ctx context.Context, body []byte) error {
	upsert :=
		`INSERT INTO snapshots (name, body, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		 `
	history :=
		`INSERT INTO snapshot_history (name, body)
		 VALUES ($1, $2)
		 `

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, upsert, s.name, body); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, history, s.name, body)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// PruneHistory deletes all but the newest keep history rows of this
// snapshot and returns how many were removed.
func (s *PostgresStore) PruneHistory(ctx context.Context, keep int) (int64, error) {
	query :=
		`DELETE FROM snapshot_history
		 WHERE name = $1 AND id NOT IN (
		   SELECT id FROM snapshot_history WHERE name = $1 ORDER BY saved_at DESC, id DESC LIMIT $2
		 )
		 `

	res, err := s.db.ExecContext(ctx, query, s.name, keep)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
