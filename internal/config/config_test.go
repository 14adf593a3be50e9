package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DEFAULT_ACCOUNT_TYPE", "")
	t.Setenv("PURGE_RETENTION_DAYS", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("BLOCK_SOFT_DELETED_LOGIN", "")

	cfg := LoadConfig()
	assert.Equal(t, "WALLET", cfg.DefaultAccountType)
	assert.Equal(t, 15, cfg.PurgeRetentionDays)
	assert.Equal(t, 15*24*time.Hour, cfg.PurgeRetention())
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.True(t, cfg.BlockSoftDeletedLogin)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DEFAULT_ACCOUNT_TYPE", "SAVINGS")
	t.Setenv("PURGE_RETENTION_DAYS", "30")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("BLOCK_SOFT_DELETED_LOGIN", "false")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "accounts")

	cfg := LoadConfig()
	assert.Equal(t, "SAVINGS", cfg.DefaultAccountType)
	assert.Equal(t, 30, cfg.PurgeRetentionDays)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.False(t, cfg.BlockSoftDeletedLogin)
	assert.Equal(t, "app:secret@tcp(db:3307)/accounts?parseTime=true&loc=UTC", cfg.DSN())
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "maybe")

	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Second, envDur("X_DUR", time.Second))
	assert.True(t, envBool("X_BOOL", true))
}
