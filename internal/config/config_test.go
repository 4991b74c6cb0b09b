package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "conduit")
	t.Setenv("DB_USER", "conduit")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTime)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.FeedCacheEnabled)
	assert.Equal(t, 2, cfg.WorkerCount)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.StorageEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TIME_SECONDS", "60")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FEED_CACHE_ENABLED", "false")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, time.Minute, cfg.SessionTime)
	assert.True(t, cfg.RedisEnabled())
	assert.False(t, cfg.FeedCacheEnabled)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{DBHost: "h", DBName: "n", DBUser: "u", SessionTime: time.Hour, DBMaxOpenConns: 5}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing db host", func(c *Config) { c.DBHost = "" }, true},
		{"non-positive session", func(c *Config) { c.SessionTime = 0 }, true},
		{"partial s3", func(c *Config) { c.S3Bucket = "b" }, true},
		{"full s3", func(c *Config) {
			c.S3Bucket, c.S3AccessKeyID, c.S3SecretAccessKey, c.S3PublicURL = "b", "k", "s", "https://cdn"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
