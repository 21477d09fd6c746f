package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "SESSION_SECRET", "JWT_SECRET", "TOKEN_TTL_HOURS", "CORS_ORIGINS",
		"DB_DRIVER", "DB_DSN", "DB_MAX_ATTEMPTS", "LOG_LEVEL", "LOG_FILE",
		"ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
	}
	// keep a stray .env in the package dir from leaking in
	testChdir(t, t.TempDir())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "host=localhost dbname=maint")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret, "jwt secret falls back to session secret")
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7000"
  session_secret: from-file
  token_ttl_hours: 2
database:
  driver: SQLite
  dsn: "file::memory:"
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("SERVER_PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, ":7100", cfg.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
}

func TestLoadRejectsMissingValues(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("DB_DSN", "x")
	_, err = Load("")
	require.ErrorContains(t, err, "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load("")
	require.ErrorContains(t, err, "unsupported")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
