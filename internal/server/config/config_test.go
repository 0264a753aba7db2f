package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotEnv(t *testing.T) {
	t.Helper()
	orig := envFile
	envFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { envFile = orig })
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":4000", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, 12*time.Hour, c.TokenTTL)
	assert.Equal(t, BackendFile, c.SnapshotBackend)
	assert.Equal(t, "data/db.json", c.SnapshotPath)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Empty(t, c.SnapshotPassphrase)
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	noDotEnv(t)

	c, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, c); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	noDotEnv(t)
	path := writeTempJSON(t, map[string]any{
		"http_addr":        ":8000",
		"secret_key":       "from-json",
		"token_ttl":        "30m",
		"snapshot_backend": "sqlite",
		"snapshot_path":    "json.db",
		"cors_origins":     []string{"https://app.example"},
	})
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("FORMVAULT_SNAPSHOT_PATH", "env.db")

	c, err := Load([]string{"-c", path, "-f", "flag.db", "serve"})
	require.NoError(t, err)

	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.TokenTTL)
	assert.Equal(t, BackendSQLite, c.SnapshotBackend)
	assert.Equal(t, "flag.db", c.SnapshotPath)
	assert.Equal(t, []string{"https://app.example"}, c.CORSOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	orig := envFile
	envFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { envFile = orig })
	require.NoError(t, os.WriteFile(envFile, []byte("FORMVAULT_TEST_ONLY=1\n"), 0o600))
	t.Setenv("PORT", "5050")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	c, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "1", os.Getenv("FORMVAULT_TEST_ONLY"))
	assert.Equal(t, ":5050", c.HTTPAddr)
	assert.Equal(t, 2*time.Hour, c.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	_ = os.Unsetenv("FORMVAULT_TEST_ONLY")
}

func TestLoad_Errors(t *testing.T) {
	noDotEnv(t)

	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "absent.json")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = Load([]string{"-config", bad})
	assert.Error(t, err)

	_, err = Load([]string{"-b", "floppy"})
	assert.ErrorContains(t, err, "unknown snapshot backend")

	t.Setenv("JWT_EXPIRES_IN", "soon")
	_, err = Load(nil)
	assert.ErrorContains(t, err, "JWT_EXPIRES_IN")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"memory", func(c *Config) { c.SnapshotBackend = BackendMemory; c.SnapshotPath = "" }, true},
		{"file without path", func(c *Config) { c.SnapshotPath = "" }, false},
		{"postgres without dsn", func(c *Config) { c.SnapshotBackend = BackendPostgres; c.DatabaseDSN = "" }, false},
		{"s3 without bucket", func(c *Config) { c.SnapshotBackend = BackendS3; c.S3Bucket = "" }, false},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tc.mutate(&c)
			if tc.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}

func TestLoadConfig_PanicsOnInvalidArgs(t *testing.T) {
	noDotEnv(t)
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-b", "nope"}
	assert.Panics(t, func() { LoadConfig() })

	os.Args = []string{"testbin"}
	assert.NotPanics(t, func() { LoadConfig() })
}
