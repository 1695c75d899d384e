package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"organica/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.AppPort)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 4*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "organica.sid", cfg.SessionCookie)
	assert.Equal(t, "organica.orders", cfg.RabbitMQExchange)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.True(t, cfg.SeedCatalog)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORAGE_BACKEND", "GORM")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SEED_CATALOG", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "gorm", cfg.StorageBackend)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.SeedCatalog)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("storage backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "cassandra")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("session backend", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "cookie")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("session ttl", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "0s")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=organica_from_file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DB_NAME") })

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "organica_from_file", cfg.DBName)
}
