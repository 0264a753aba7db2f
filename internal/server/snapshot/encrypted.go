package snapshot

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/formvault/internal/cryptox"
)

// EncryptedStore seals bodies with a passphrase before handing them to the
// wrapped store.
//
// Plain bodies found on Load are returned as-is so an existing unencrypted
// snapshot can be adopted; the next Save seals it.
type EncryptedStore struct {
	inner      SnapshotStore
	passphrase []byte
}

func NewEncryptedStore(inner SnapshotStore, passphrase string) *EncryptedStore {
	return &EncryptedStore{inner: inner, passphrase: []byte(passphrase)}
}

func (s *EncryptedStore) Load(ctx context.Context) ([]byte, error) {
	body, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !cryptox.IsSealed(body) {
		return body, nil
	}
	plain, err := cryptox.Open(s.passphrase, body)
	if err != nil {
		return nil, fmt.Errorf("decrypt snapshot: %w", err)
	}
	return plain, nil
}

func (s *EncryptedStore) Save(ctx context.Context, body []byte) error {
	sealed, err := cryptox.Seal(s.passphrase, body)
	if err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}
	return s.inner.Save(ctx, sealed)
}

func (s *EncryptedStore) Close() error {
	return Close(s.inner)
}
