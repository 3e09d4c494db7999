// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ecopath/ecopath/pkg/logger"
)

// cronParser accepts the same six-field specs (and @descriptors) as the scheduler.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config holds application configuration
type Config struct {
	DataDir   string // Directory holding inventory.db (always absolute)
	Port      int
	LogLevel  string
	LogPretty bool
	DevMode   bool

	// Cron specs (seconds field first). Empty disables the job.
	GenerateSchedule    string
	AnomalyScanSchedule string
	MaintenanceSchedule string

	Backup *BackupConfig
}

// BackupConfig describes the S3-compatible bucket used for database backups
type BackupConfig struct {
	Endpoint        string // e.g. https://<account>.r2.cloudflarestorage.com, empty for AWS
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string
	RetentionDays   int
}

// Enabled reports whether enough settings are present to talk to the bucket.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != "" && b.AccessKeyID != "" && b.SecretAccessKey != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ECOPATH_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("GO_PORT", 8080),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", true),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		GenerateSchedule:    os.Getenv("GENERATE_SCHEDULE"),
		AnomalyScanSchedule: getEnvAllowEmpty("ANOMALY_SCAN_SCHEDULE", "0 0 * * * *"),
		MaintenanceSchedule: getEnvAllowEmpty("MAINTENANCE_SCHEDULE", "0 0 2 * * *"),
		Backup:              loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	schedules := map[string]string{
		"GENERATE_SCHEDULE":     c.GenerateSchedule,
		"ANOMALY_SCAN_SCHEDULE": c.AnomalyScanSchedule,
		"MAINTENANCE_SCHEDULE":  c.MaintenanceSchedule,
	}
	if c.Backup.Enabled() {
		schedules["BACKUP_SCHEDULE"] = c.Backup.Schedule
		if c.Backup.RetentionDays < 0 {
			return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative")
		}
	}
	for name, spec := range schedules {
		if spec == "" {
			continue
		}
		if _, err := cronParser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	return nil
}

// BackupStagingDir is where archives are assembled before upload
func (c *Config) BackupStagingDir() string {
	return filepath.Join(c.DataDir, "backup-staging")
}

// DatabasePath returns the location of the inventory database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "inventory.db")
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnvAllowEmpty("BACKUP_SCHEDULE", "0 0 3 * * *"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes "unset" (default) from "set to empty" (disabled).
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
