package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "MONGO_URI", "MONGO_DB", "JWT_SECRET", "BCRYPT_COST",
		"SHUTDOWN_TIMEOUT", "ATTACHMENT_URL_TTL", "MINIO_ENDPOINT", "MINIO_USE_SSL", "MINIO_BUCKET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "task-manager-api", cfg.MongoDatabase)
	assert.Equal(t, 8, cfg.BcryptCost)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Minio.URLTTL)
	assert.Equal(t, "task-attachments", cfg.Minio.Bucket)
	assert.False(t, cfg.Minio.Enabled())
	assert.True(t, cfg.UsesDevSecret())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("ATTACHMENT_URL_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.Minio.Enabled())
	assert.True(t, cfg.Minio.UseSSL)
	assert.Equal(t, 30*time.Minute, cfg.Minio.URLTTL)
	assert.False(t, cfg.UsesDevSecret())
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string][2]string{
		"non numeric cost":  {"BCRYPT_COST", "eight"},
		"cost out of range": {"BCRYPT_COST", "99"},
		"bad duration":      {"SHUTDOWN_TIMEOUT", "soon"},
		"negative duration": {"ATTACHMENT_URL_TTL", "-1m"},
		"bad bool":          {"MINIO_USE_SSL", "maybe"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
