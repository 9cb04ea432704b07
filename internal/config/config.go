// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for all databases (always absolute)
	LogLevel         string
	Port             int
	DevMode          bool
	AutosaveDebounce time.Duration // Debounce window advertised to autosave clients

	MaintenanceSchedule string // cron spec (with seconds) for database maintenance
	IntegritySchedule   string // cron spec (with seconds) for snapshot checksum verification
	BackupSchedule      string // cron spec (with seconds) for the offsite backup

	Backup *BackupConfig
}

// BackupConfig holds Cloudflare R2 (S3 compatible) backup settings
type BackupConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string // Optional override, defaults to the R2 account endpoint
	RetentionDays   int    // 0 = keep forever
}

// Enabled reports whether every credential needed for uploads is present.
func (b *BackupConfig) Enabled() bool {
	if b == nil {
		return false
	}
	return b.Bucket != "" && b.AccessKeyID != "" && b.SecretAccessKey != "" &&
		(b.AccountID != "" || b.Endpoint != "")
}

// ResolvedEndpoint returns the S3 endpoint to talk to.
func (b *BackupConfig) ResolvedEndpoint() string {
	if b.Endpoint != "" {
		return b.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", b.AccountID)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FLIP_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("FLIP_PORT", 8080),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AutosaveDebounce:    getEnvAsDuration("FLIP_AUTOSAVE_DEBOUNCE", 500*time.Millisecond),
		MaintenanceSchedule: getEnv("FLIP_MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
		IntegritySchedule:   getEnv("FLIP_INTEGRITY_SCHEDULE", "0 30 3 * * *"),
		BackupSchedule:      getEnv("FLIP_BACKUP_SCHEDULE", "0 0 4 * * *"),
		Backup:              loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.AutosaveDebounce <= 0 {
		return fmt.Errorf("autosave debounce must be positive, got %s", c.AutosaveDebounce)
	}
	if c.Backup != nil && c.Backup.RetentionDays < 0 {
		return fmt.Errorf("backup retention days must not be negative, got %d", c.Backup.RetentionDays)
	}
	return nil
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		AccountID:       getEnv("FLIP_R2_ACCOUNT_ID", ""),
		AccessKeyID:     getEnv("FLIP_R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("FLIP_R2_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("FLIP_R2_BUCKET", ""),
		Endpoint:        getEnv("FLIP_R2_ENDPOINT", ""),
		RetentionDays:   getEnvAsInt("FLIP_BACKUP_RETENTION_DAYS", 90),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
