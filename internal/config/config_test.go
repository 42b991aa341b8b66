package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "STORAGE_BACKEND", "POSTGRES_DSN",
		"SQLITE_PATH", "DATA_DIR", "AUTH_SERVICE_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, ":8088", c.HTTPAddr)
	assert.Equal(t, "file", c.StorageBackend)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, 10.0, c.RateLimitRPS)
	assert.Equal(t, 20, c.RateLimitBurst)
	assert.False(t, c.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/coach.db")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.StorageBackend)
	assert.Equal(t, "/tmp/coach.db", c.SQLitePath)
	assert.Equal(t, 2.5, c.RateLimitRPS)
	assert.Equal(t, 5, c.RateLimitBurst)
	assert.True(t, c.IsProduction())
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_RPS", "fast")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "RATE_LIMIT_RPS")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Env: "development", StorageBackend: "file", DataDir: "data", RateLimitRPS: 1, RateLimitBurst: 1}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres without dsn", func(c *Config) { c.StorageBackend = "postgres" }, "POSTGRES_DSN"},
		{"sqlite without path", func(c *Config) { c.StorageBackend = "sqlite" }, "SQLITE_PATH"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "redis" }, "STORAGE_BACKEND"},
		{"file without dir", func(c *Config) { c.DataDir = "" }, "DATA_DIR"},
		{"bad env", func(c *Config) { c.Env = "qa" }, "APP_ENV"},
		{"negative rps", func(c *Config) { c.RateLimitRPS = -1 }, "RATE_LIMIT_RPS"},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, "RATE_LIMIT_BURST"},
		{"limiter disabled", func(c *Config) { c.RateLimitRPS = 0; c.RateLimitBurst = 0 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
