package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/formvault/internal/cryptox"
	"github.com/dmitrijs2005/formvault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, s SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, s.Save(ctx, []byte(`{"forms":[]}`)))
	require.NoError(t, s.Save(ctx, []byte(`{"forms":[1]}`)))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"forms":[1]}`, string(got))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore(nil)
	roundTrip(t, m)
	assert.Equal(t, 2, m.Saves())

	boom := errors.New("disk full")
	m.FailSaves(boom)
	require.ErrorIs(t, m.Save(context.Background(), []byte("x")), boom)
	assert.Equal(t, `{"forms":[1]}`, string(m.Body()))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	s := NewFileStore(path)
	roundTrip(t, s)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	require.ErrorIs(t, s.Save(ctx, []byte("x")), context.Canceled)
}

func TestFileStore_ReadError(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "fv.db"), "main")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	roundTrip(t, s)

	other := NewSQLiteStore(s.conn, "other")
	_, err = other.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestEncryptedStore(t *testing.T) {
	inner := NewMemoryStore(nil)
	s := NewEncryptedStore(inner, "correct horse")
	roundTrip(t, s)

	assert.True(t, cryptox.IsSealed(inner.Body()))
	assert.NotContains(t, string(inner.Body()), "forms")

	wrong := NewEncryptedStore(inner, "battery staple")
	_, err := wrong.Load(context.Background())
	require.ErrorIs(t, err, cryptox.ErrDecrypt)
}

func TestEncryptedStore_AdoptsPlainSnapshot(t *testing.T) {
	inner := NewMemoryStore([]byte(`{"plain":true}`))
	s := NewEncryptedStore(inner, "pass")

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"plain":true}`, string(got))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	base := func() *config.Config {
		var c config.Config
		c.LoadDefaults()
		c.SnapshotPath = filepath.Join(t.TempDir(), "db.json")
		return &c
	}

	c := base()
	s, err := Open(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	c = base()
	c.SnapshotBackend = config.BackendMemory
	c.SnapshotPassphrase = "secret"
	s, err = Open(ctx, c)
	require.NoError(t, err)
	enc, ok := s.(*EncryptedStore)
	require.True(t, ok)
	assert.IsType(t, &MemoryStore{}, enc.inner)

	c = base()
	c.SnapshotBackend = config.BackendSQLite
	c.SnapshotPath = filepath.Join(t.TempDir(), "fv.db")
	s, err = Open(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, Close(s))

	c = base()
	c.SnapshotBackend = "tape"
	_, err = Open(ctx, c)
	require.Error(t, err)
}
