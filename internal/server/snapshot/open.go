package snapshot

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/formvault/internal/server/config"
)

// Open builds the backend selected by cfg.SnapshotBackend, wrapped in an
// EncryptedStore when a passphrase is configured.
func Open(ctx context.Context, cfg *config.Config) (SnapshotStore, error) {
	var (
		store SnapshotStore
		err   error
	)

	switch cfg.SnapshotBackend {
	case config.BackendFile:
		store = NewFileStore(cfg.SnapshotPath)
	case config.BackendSQLite:
		store, err = OpenSQLite(ctx, cfg.SnapshotPath, cfg.SnapshotName)
	case config.BackendPostgres:
		store, err = OpenPostgres(ctx, cfg.DatabaseDSN, cfg.SnapshotName)
	case config.BackendS3:
		store, err = OpenS3(ctx, S3Options{
			Region:       cfg.S3Region,
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
			Key:          cfg.SnapshotName + ".json",
		})
	case config.BackendMemory:
		store = NewMemoryStore(nil)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s snapshot: %w", cfg.SnapshotBackend, err)
	}

	if cfg.SnapshotPassphrase != "" {
		store = NewEncryptedStore(store, cfg.SnapshotPassphrase)
	}
	return store, nil
}
