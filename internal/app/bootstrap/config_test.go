package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsWithMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "predictive-analytics", cfg.ServiceID)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.PredictionCacheTTL)
	assert.Equal(t, 20, cfg.CalibrationWindow)
	assert.Equal(t, 100, cfg.FeedbackLookback)
	assert.False(t, cfg.AutoRecalibrate)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfigRequiresDatabaseForPostgres(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DB_URL", "")
	t.Setenv("POSTGRES_URL", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
}

func TestLoadConfigLayersFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
service:
  id: from-file
  http_port: 9000
dependencies:
  postgres_url: postgres://file
  kafka_brokers: [" broker-1:9092 ", ""]
prediction:
  cache_ttl_seconds: 60
  calibration_window: 10
  auto_recalibrate: true
`)
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("DB_URL", "postgres://env")
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ServiceID)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, []string{"broker-1:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.PredictionCacheTTL)
	assert.Equal(t, 10, cfg.CalibrationWindow)
	assert.True(t, cfg.AutoRecalibrate)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("PREDICTION_CACHE_TTL_SECONDS", "120")
	t.Setenv("AUTO_RECALIBRATE", "yes")
	t.Setenv("CALIBRATION_WINDOW", "5")
	t.Setenv("FEEDBACK_LOOKBACK", "50")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.PredictionCacheTTL)
	assert.True(t, cfg.AutoRecalibrate)
	assert.Equal(t, 5, cfg.CalibrationWindow)
	assert.Equal(t, 50, cfg.FeedbackLookback)
}

func TestLoadConfigRejectsBadSettings(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CALIBRATION_WINDOW", "50")
	t.Setenv("FEEDBACK_LOOKBACK", "10")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "service: [unterminated"))
	require.Error(t, err)
}
