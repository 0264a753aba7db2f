package adminctl

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/auth"
	"github.com/dmitrijs2005/formvault/internal/server/snapshot"
	"github.com/dmitrijs2005/formvault/internal/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *bytes.Buffer, *snapshot.MemoryStore) {
	t.Helper()
	mem := snapshot.NewMemoryStore(nil)
	st := store.New(context.Background(), mem, logging.Discard(),
		store.WithClock(func() time.Time { return fixedNow.Add(-3 * time.Hour) }))
	var out bytes.Buffer
	a := New(st, &out)
	a.now = func() time.Time { return fixedNow }
	return a, &out, mem
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestRun_NoCommand(t *testing.T) {
	a, out, _ := newTestApp(t)
	err := a.Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, out.String(), "usage: formctl")
}

func TestRun_UnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t)
	err := a.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestNormalize(t *testing.T) {
	a, out, mem := newTestApp(t)
	saves := mem.Saves()

	require.NoError(t, a.Run(context.Background(), []string{"normalize"}))
	assert.Equal(t, "snapshot already normalized\n", out.String())
	assert.Equal(t, saves, mem.Saves())
}

func TestForms(t *testing.T) {
	a, out, _ := newTestApp(t)
	require.NotNil(t, a.store.AddSubmission(context.Background(), "landscaping-daily-log", map[string]any{"company": "Acme"}))

	require.NoError(t, a.Run(context.Background(), []string{"forms"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "landscaping-daily-log")
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[1], "3 hours ago")
}

func TestUsers(t *testing.T) {
	a, out, _ := newTestApp(t)
	require.NoError(t, a.Run(context.Background(), []string{"users"}))
	assert.Contains(t, out.String(), "owner@landscape.app")
}

func TestPackages(t *testing.T) {
	a, out, _ := newTestApp(t)
	require.NoError(t, a.Run(context.Background(), []string{"packages"}))

	s := out.String()
	assert.Contains(t, s, "package-starter")
	assert.Contains(t, s, "$19")
	assert.Contains(t, s, "unlimited")
}

func TestExport(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()
	require.NotNil(t, a.store.AddSubmission(ctx, "landscaping-daily-log", map[string]any{"company": "Acme"}))

	require.NoError(t, a.Run(ctx, []string{"export", "landscaping-daily-log"}))
	rows, err := csv.NewReader(out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Submission ID", rows[0][0])

	require.Error(t, a.Run(ctx, []string{"export", "missing"}))
	require.Error(t, a.Run(ctx, []string{"export"}))
}

func TestPasswd(t *testing.T) {
	a, out, _ := newTestApp(t)
	stubPasswords(t, "s3cret", "s3cret")

	require.NoError(t, a.Run(context.Background(), []string{"passwd", "Owner@Landscape.app"}))
	assert.Contains(t, out.String(), "password updated for owner@landscape.app")

	user := a.store.GetUserByEmail("owner@landscape.app")
	require.NotNil(t, user)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "s3cret"))
}

func TestPasswd_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		require.Error(t, a.Run(ctx, []string{"passwd", "nobody@example.com"}))
	})

	t.Run("mismatch", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		stubPasswords(t, "one", "two")
		err := a.Run(ctx, []string{"passwd", "owner@landscape.app"})
		require.EqualError(t, err, "passwords do not match")
	})

	t.Run("empty", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		stubPasswords(t, "")
		err := a.Run(ctx, []string{"passwd", "owner@landscape.app"})
		require.EqualError(t, err, "password must not be empty")
	})

	t.Run("terminal error", func(t *testing.T) {
		a, _, _ := newTestApp(t)
		stubPasswords(t)
		err := a.Run(ctx, []string{"passwd", "owner@landscape.app"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read password")
	})
}
