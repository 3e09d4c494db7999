package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ECOPATH_DATA_DIR", dir)
	t.Setenv("GO_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BACKUP_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "inventory.db"), cfg.DatabasePath())
	assert.False(t, cfg.Backup.Enabled())
}

func TestLoad_EmptyScheduleDisablesJob(t *testing.T) {
	t.Setenv("ECOPATH_DATA_DIR", t.TempDir())
	t.Setenv("ANOMALY_SCAN_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.AnomalyScanSchedule)
}

func TestLoad_InvalidSchedule(t *testing.T) {
	t.Setenv("ECOPATH_DATA_DIR", t.TempDir())
	t.Setenv("GENERATE_SCHEDULE", "every tuesday")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATE_SCHEDULE")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Port: 8080, LogLevel: "info", Backup: &BackupConfig{}}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := base()
		cfg.LogLevel = "loud"
		assert.Error(t, cfg.Validate())
	})

	t.Run("descriptor schedule", func(t *testing.T) {
		cfg := base()
		cfg.GenerateSchedule = "@every 30m"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("backup schedule checked only when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Backup.Schedule = "nonsense"
		assert.NoError(t, cfg.Validate())

		cfg.Backup.Bucket = "ecopath"
		cfg.Backup.AccessKeyID = "key"
		cfg.Backup.SecretAccessKey = "secret"
		assert.Error(t, cfg.Validate())
	})
}
