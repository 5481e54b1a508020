package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 9, cfg.WorkStartHour)
	assert.Equal(t, 17, cfg.WorkEndHour)
	assert.Equal(t, 30*time.Minute, cfg.SlotStep)
	assert.True(t, cfg.EnforceBuffer)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.False(t, cfg.IsProduction)
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvPostgresRequiresDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_DSN", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestFromEnvScheduling(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("WORK_START_HOUR", "8")
	t.Setenv("WORK_END_HOUR", "12")
	t.Setenv("SLOT_STEP", "15m")
	t.Setenv("ENFORCE_BUFFER", "false")
	t.Setenv("SCHEDULE_TIMEZONE", "America/New_York")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.WorkStartHour)
	assert.Equal(t, 12, cfg.WorkEndHour)
	assert.Equal(t, 15*time.Minute, cfg.SlotStep)
	assert.False(t, cfg.EnforceBuffer)
	assert.Equal(t, "America/New_York", cfg.Timezone.String())
}

func TestFromEnvRejectsInvertedHours(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("WORK_START_HOUR", "17")
	t.Setenv("WORK_END_HOUR", "9")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENFORCE_BUFFER", "maybe")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "ENFORCE_BUFFER")
}

func TestFromEnvProductionRequiresOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROD_ORIGINS", "")

	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("PROD_ORIGINS", "https://folio.example")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction)
}
