package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "tablecheck_meta.sqlite", cfg.MetaDBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, int64(64<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 300, cfg.MaxSampleRows)
	assert.Equal(t, 100.0, cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.HasS3Config())
	assert.False(t, cfg.ChatEnabled())
	// Missing API key is a warning, not an error.
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_SAMPLE_ROWS", "60")
	t.Setenv("RETENTION_MAX_AGE", "720h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 60, cfg.MaxSampleRows)
	assert.Equal(t, 720*time.Hour, cfg.RetentionMaxAge)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv_S3RequiresAllFields(t *testing.T) {
	t.Setenv("S3_KEY_ID", "key")
	t.Setenv("S3_SECRET", "secret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.HasS3Config())

	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_BUCKET", "datasets")

	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.HasS3Config())
}

func TestLoadFromEnv_ProductionHardening(t *testing.T) {
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err) // no JWT secret

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = LoadFromEnv()
	require.Error(t, err) // CORS wildcard

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nDOTENV_TEST_KEY=from-file\nDOTENV_QUOTED='quoted value'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DOTENV_TEST_KEY", "") // ensure cleanup via t.Setenv
	os.Unsetenv("DOTENV_TEST_KEY")
	t.Setenv("DOTENV_QUOTED", "")
	os.Unsetenv("DOTENV_QUOTED")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("DOTENV_TEST_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("DOTENV_QUOTED"))
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
