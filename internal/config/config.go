package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int

	ServerPort      string
	ShutdownTimeout time.Duration

	// JWTSecret selects HS256 signing. When empty a fresh RSA key pair is
	// generated at startup and tokens do not survive a restart.
	JWTSecret   string
	SessionTime time.Duration

	RedisURL         string
	FeedCacheEnabled bool
	WorkerCount      int

	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
	S3PublicURL       string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("SESSION_TIME_SECONDS", 86400)
	v.SetDefault("FEED_CACHE_ENABLED", true)
	v.SetDefault("WORKER_COUNT", 2)
	v.SetDefault("S3_REGION", "auto")
}

// LoadConfig reads an optional .env file, then resolves every key from the
// environment with defaults applied.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),

		ServerPort:      v.GetString("SERVER_PORT"),
		ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,

		JWTSecret:   v.GetString("JWT_SECRET"),
		SessionTime: time.Duration(v.GetInt("SESSION_TIME_SECONDS")) * time.Second,

		RedisURL:         v.GetString("REDIS_URL"),
		FeedCacheEnabled: v.GetBool("FEED_CACHE_ENABLED"),
		WorkerCount:      v.GetInt("WORKER_COUNT"),

		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("S3_REGION"),
		S3AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3PublicURL:       v.GetString("S3_PUBLIC_URL"),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
		return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required")
	}
	if c.SessionTime <= 0 {
		return fmt.Errorf("SESSION_TIME_SECONDS must be positive")
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}

	s3Fields := []string{c.S3Bucket, c.S3AccessKeyID, c.S3SecretAccessKey, c.S3PublicURL}
	set := 0
	for _, f := range s3Fields {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != len(s3Fields) {
		return fmt.Errorf("S3_BUCKET, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and S3_PUBLIC_URL must be set together")
	}
	return nil
}

// StorageEnabled reports whether profile image uploads can be served.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// RedisEnabled reports whether caching and article events are available.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}
