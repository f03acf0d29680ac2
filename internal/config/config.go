package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DevJWTSecret is used when JWT_SECRET is unset. Never rely on it outside
// local development.
const DevJWTSecret = "taskapplication"

// Config keeps runtime settings for the API server.
type Config struct {
	Env             string
	Port            string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	BcryptCost      int
	ShutdownTimeout time.Duration

	Minio MinioConfig
}

// MinioConfig describes the attachment bucket. An empty Endpoint disables
// attachments.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLTTL    time.Duration
}

// Enabled reports whether object storage was configured.
func (m MinioConfig) Enabled() bool {
	return m.Endpoint != ""
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// UsesDevSecret reports whether the token secret fell back to the default.
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:           env("APP_ENV", "development"),
		Port:          env("PORT", "3000"),
		MongoURI:      env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: env("MONGO_DB", "task-manager-api"),
		JWTSecret:     env("JWT_SECRET", DevJWTSecret),
		Minio: MinioConfig{
			Endpoint:  env("MINIO_ENDPOINT", ""),
			AccessKey: env("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: env("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    env("MINIO_BUCKET", "task-attachments"),
		},
	}

	var err error
	if cfg.BcryptCost, err = envInt("BCRYPT_COST", 8); err != nil {
		return cfg, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return cfg, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.Minio.URLTTL, err = envDuration("ATTACHMENT_URL_TTL", 10*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.Minio.UseSSL, err = envBool("MINIO_USE_SSL", false); err != nil {
		return cfg, err
	}

	if cfg.IsProduction() && cfg.UsesDevSecret() {
		return cfg, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
