package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FLIP_DATA_DIR", dir)
	t.Setenv("FLIP_PORT", "")
	t.Setenv("FLIP_AUTOSAVE_DEBOUNCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDebounce)
	assert.Equal(t, "0 0 3 * * *", cfg.MaintenanceSchedule)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, 90, cfg.Backup.RetentionDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FLIP_DATA_DIR", t.TempDir())
	t.Setenv("FLIP_PORT", "9090")
	t.Setenv("FLIP_AUTOSAVE_DEBOUNCE", "750ms")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.AutosaveDebounce)
	assert.True(t, cfg.DevMode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FLIP_DATA_DIR", t.TempDir())
	t.Setenv("FLIP_PORT", "not-a-port")
	t.Setenv("FLIP_AUTOSAVE_DEBOUNCE", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDebounce)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 8080, AutosaveDebounce: time.Second}
	assert.NoError(t, cfg.Validate())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Port = 8080
	cfg.AutosaveDebounce = 0
	assert.Error(t, cfg.Validate())

	cfg.AutosaveDebounce = time.Second
	cfg.Backup = &BackupConfig{RetentionDays: -1}
	assert.Error(t, cfg.Validate())
}

func TestBackupConfig_Enabled(t *testing.T) {
	var nilCfg *BackupConfig
	assert.False(t, nilCfg.Enabled())

	b := &BackupConfig{Bucket: "flip", AccessKeyID: "key", SecretAccessKey: "secret", AccountID: "acc"}
	assert.True(t, b.Enabled())
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", b.ResolvedEndpoint())

	b.Endpoint = "http://localhost:9000"
	assert.Equal(t, "http://localhost:9000", b.ResolvedEndpoint())

	b.SecretAccessKey = ""
	assert.False(t, b.Enabled())
}
