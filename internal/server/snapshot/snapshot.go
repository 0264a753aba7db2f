// Package snapshot stores the whole formvault state as one opaque document.
//
// A SnapshotStore only reads and writes complete bodies; there are no
// partial updates. Backends: a JSON file on disk, a row in SQLite or
// PostgreSQL, an S3 object and process memory. EncryptedStore wraps any of
// them to seal bodies at rest.
package snapshot

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("snapshot: not found")

type SnapshotStore interface {
	// Load returns the last saved body or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored body.
	Save(ctx context.Context, body []byte) error
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}

// Close closes s when it holds resources.
func Close(s SnapshotStore) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
