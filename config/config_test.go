package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "platefeed", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "media", cfg.MediaDir)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_SECRET", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadRedisDB(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestEnvironmentDetection(t *testing.T) {
	t.Setenv("CI", "")

	t.Setenv("ENV", "production")
	assert.Equal(t, config.Production, config.GetEnvironment())
	assert.True(t, config.IsProduction())
	assert.False(t, config.IsDevelopment())

	t.Setenv("ENV", "")
	assert.Equal(t, config.Development, config.GetEnvironment())
	assert.True(t, config.IsDevelopment())

	t.Setenv("CI", "true")
	assert.Equal(t, config.CI, config.GetEnvironment())
}
