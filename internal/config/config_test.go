package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "RESULT_STORE", "DATABASE_URL", "PG_HOST", "TOKEN_EXPIRE_TIME", "REDIS_DB", "JWT_PRIVATE_KEY_PATH", "JWT_PUBLIC_KEY_PATH"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ResultStoreMemory, cfg.ResultStore)
	assert.Equal(t, time.Duration(0), cfg.TokenExpiry)
	assert.Equal(t, "", cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RESULT_STORE", "Postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("PG_PORT", "")
	t.Setenv("PG_DATABASE", "history")
	t.Setenv("TOKEN_EXPIRE_TIME", "2h")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, ResultStorePostgres, cfg.ResultStore)
	assert.Equal(t, "postgres://u:p@db:5432/history", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TOKEN_EXPIRE_TIME", "")
	t.Setenv("RESULT_STORE", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RESULT_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_HOST", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("RESULT_STORE", "memory")
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_EXPIRE_TIME", "")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "keys/private.pem")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "")
	_, err = Load()
	assert.Error(t, err)
}
