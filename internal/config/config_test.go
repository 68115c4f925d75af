package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendSQLite, cfg.DBBackend)
	assert.Equal(t, "chatrelay.db", cfg.SQLitePath)
	assert.NotEmpty(t, cfg.CORSAllowedOrigins)
}

func TestLoadConfigPostgresRequiresURL(t *testing.T) {
	t.Setenv("DB_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("DB_BACKEND", "cassandra")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DB_BACKEND")
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://chat.example.com, https://staging.example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://chat.example.com", "https://staging.example.com"}, cfg.CORSAllowedOrigins)
}
