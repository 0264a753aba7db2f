package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/formvault/internal/dbx"
	"github.com/dmitrijs2005/formvault/internal/filex"
	"github.com/dmitrijs2005/formvault/internal/server/migrations"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot as one row of the snapshots table.
type SQLiteStore struct {
	db   dbx.DBTX
	conn *sql.DB
	name string
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies migrations.
func OpenSQLite(ctx context.Context, path, name string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := filex.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if err := migrations.UpSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	s := NewSQLiteStore(db, name)
	s.conn = db
	return s, nil
}

// NewSQLiteStore uses an already migrated database.
func NewSQLiteStore(db dbx.DBTX, name string) *SQLiteStore {
	return &SQLiteStore{db: db, name: name}
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE name = ?`, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot[%s]: %w", s.name, err)
	}
	return body, nil
}

func (s *SQLiteStore) Save(ctx context.Context, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, body, updated_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, s.name, body)
	if err != nil {
		return fmt.Errorf("failed to save snapshot[%s]: %w", s.name, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
