// Package config reads service settings from the environment.
// A .env file is loaded by cmd/server through godotenv/autoload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ResultStore selects the backing store of the game result log.
type ResultStore string

const (
	ResultStoreMemory   ResultStore = "memory"
	ResultStoreRedis    ResultStore = "redis"
	ResultStorePostgres ResultStore = "postgres"
)

type Config struct {
	Port     string
	LogLevel logrus.Level

	ResultStore ResultStore

	RedisAddr   string
	RedisDB     int
	RedisPrefix string

	DatabaseURL string

	// TokenExpiry is the lifetime of player session tokens; 0 means no expiry.
	TokenExpiry time.Duration
	// PrivateKeyPath and PublicKeyPath point at PEM Ed25519 keys. When unset a
	// fresh key pair is generated at startup.
	PrivateKeyPath string
	PublicKeyPath  string

	DefaultMaxPlayers int
}

// Load reads the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPrefix:       getEnv("REDIS_RESULTS_PREFIX", "minigames:results"),
		DatabaseURL:       databaseURL(),
		PrivateKeyPath:    os.Getenv("JWT_PRIVATE_KEY_PATH"),
		PublicKeyPath:     os.Getenv("JWT_PUBLIC_KEY_PATH"),
		DefaultMaxPlayers: getEnvInt("DEFAULT_MAX_PLAYERS", 8),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch rs := ResultStore(strings.ToLower(getEnv("RESULT_STORE", string(ResultStoreMemory)))); rs {
	case ResultStoreMemory, ResultStoreRedis, ResultStorePostgres:
		cfg.ResultStore = rs
	default:
		return nil, fmt.Errorf("invalid RESULT_STORE %q (want memory, redis or postgres)", rs)
	}
	if cfg.ResultStore == ResultStorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("RESULT_STORE=postgres requires DATABASE_URL or PG_HOST")
	}

	if (cfg.PrivateKeyPath == "") != (cfg.PublicKeyPath == "") {
		return nil, fmt.Errorf("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}

	expiry, err := parseTokenExpiry(os.Getenv("TOKEN_EXPIRE_TIME"))
	if err != nil {
		return nil, err
	}
	cfg.TokenExpiry = expiry

	return cfg, nil
}

// parseTokenExpiry accepts a Go duration; "", "0" and "never" disable expiry.
func parseTokenExpiry(s string) (time.Duration, error) {
	switch s {
	case "", "0", "never":
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse TOKEN_EXPIRE_TIME: %w", err)
	}
	return d, nil
}

// databaseURL prefers DATABASE_URL and falls back to the PG_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
