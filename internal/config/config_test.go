package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "server"
log_level = "debug"

[server]
port = 9100

[import]
pending_ttl = "2h"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Import.PendingTTL.Duration)
	// Untouched sections keep their defaults.
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 10, cfg.Import.MaxFileSizeMB)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TRADEWISE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("TRADEWISE_SERVER_PORT", "9200")
	t.Setenv("TRADEWISE_IMPORT_PENDING_TTL", "30m")
	t.Setenv("TRADEWISE_COACH_ENABLED", "true")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	require.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, 30*time.Minute, cfg.Import.PendingTTL.Duration)
	require.True(t, cfg.Coach.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "batch"
	cfg.Server.Port = 70000
	cfg.Import.MaxFileSizeMB = 0

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
	require.Contains(t, err.Error(), "server: port")
	require.Contains(t, err.Error(), "max_file_size_mb")
}

func TestValidateImportModeNeedsFile(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "import"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "import: file")

	cfg.Import.File = "statement.csv"
	require.NoError(t, cfg.Validate())
}

func TestValidateCoachRequiresKey(t *testing.T) {
	cfg := Defaults()
	cfg.Coach.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "coach: api_key")
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "hunter2"
	cfg.Coach.APIKey = "sk-secret"
	cfg.S3.SecretKey = "minio-secret"

	red := RedactedConfig(&cfg)
	require.Equal(t, "***", red.Postgres.Password)
	require.Equal(t, "***", red.Coach.APIKey)
	require.Equal(t, "***", red.S3.SecretKey)
	// Originals untouched.
	require.Equal(t, "hunter2", cfg.Postgres.Password)
}
