package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBType)
	assert.Equal(t, ":3001", c.HTTPAddr)
	assert.Equal(t, devJWTSecret, c.JWTSecret)
	assert.Equal(t, 15*time.Minute, c.JWTExpiresIn)
	assert.Equal(t, time.Hour, c.InsightCooldown)
	assert.Equal(t, 24*time.Hour, c.InsightTTL)
	assert.Equal(t, 30, c.InsightWindowDays)
	assert.Equal(t, "0 6 * * *", c.InsightCron)
	assert.Equal(t, "gpt-4o-mini", c.OpenAIModel)
	assert.True(t, c.SchedulerEnabled)
}

func TestFromEnv_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestFromEnv_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "POSTGRES_DSN")
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("INSIGHT_REFRESH_COOLDOWN", "soon")
	t.Setenv("BCRYPT_COST", "twelve")

	_, err := FromEnv()
	require.Error(t, err)
	assert.ErrorContains(t, err, "INSIGHT_REFRESH_COOLDOWN")
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestFromEnv_RejectsUnknownEnvAndProvider(t *testing.T) {
	t.Setenv("APP_ENV", "qa")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "APP_ENV")

	t.Setenv("APP_ENV", "test")
	t.Setenv("LLM_PROVIDER", "mystery")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "LLM_PROVIDER")
}

func TestFromEnv_ClientURLNeedsScheme(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	for _, bad := range []string{"localhost:5173", "ftp://files.example.com", "http://", "::"} {
		t.Setenv("CLIENT_URL", bad)
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CLIENT_URL", bad)
	}

	t.Setenv("CLIENT_URL", "https://app.example.com")
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", c.ClientURL)
}
