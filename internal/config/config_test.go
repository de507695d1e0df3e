package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/client-import/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clients")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5000, cfg.Import.MaxRows)
	assert.Equal(t, 30*time.Minute, cfg.Redis.PreviewTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Metrics.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadReadsEnvFileButEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	content := "IMPORT_MAX_ROWS=20\nKAFKA_BROKERS=k1:9092,k2:9092\nPORT=9000\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("PREVIEW_TTL", "5m")
	// godotenv.Load sets variables process-wide; register them so they are reset.
	t.Setenv("IMPORT_MAX_ROWS", "")
	t.Setenv("KAFKA_BROKERS", "")
	require.NoError(t, os.Unsetenv("IMPORT_MAX_ROWS"))
	require.NoError(t, os.Unsetenv("KAFKA_BROKERS"))

	cfg, err := config.Load(file)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 20, cfg.Import.MaxRows)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Redis.PreviewTTL)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingDatabaseURL)

	cfg.DatabaseURL = "postgres://x"
	cfg.Import.MaxRows = 0
	assert.ErrorContains(t, cfg.Validate(), "IMPORT_MAX_ROWS")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("IMPORT_MAX_ROWS", "lots")

	_, err := config.Load(filepath.Join(t.TempDir(), "none"))
	assert.ErrorContains(t, err, "parse environment")
}
