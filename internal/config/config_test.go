package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, ModeMock, cfg.CheckerMode)
	assert.Equal(t, 2*time.Second, cfg.MockDelay)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.MinioEndpoint)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CHECKER_MODE", "REMOTE")
	t.Setenv("REMOTE_CHECKER_URL", "http://checker:9000")
	t.Setenv("MOCK_DELAY", "250ms")
	t.Setenv("MOCK_SEED", "42")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeRemote, cfg.CheckerMode)
	assert.Equal(t, 250*time.Millisecond, cfg.MockDelay)
	assert.Equal(t, uint64(42), cfg.MockSeed)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.MinioUseSSL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_TTL=5m\nLLM_MODEL=llama3:8b\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LLM_MODEL", "from-env")
	// godotenv sets variables for the process; clear them afterwards
	t.Cleanup(func() { os.Unsetenv("SESSION_TTL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "from-env", cfg.LLMModel)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("MOCK_DELAY", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOCK_DELAY")
	assert.Contains(t, err.Error(), "RATE_LIMIT_BURST")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{CheckerMode: ModeMock, RateLimitRPS: 1, RateLimitBurst: 1}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.CheckerMode = ModeRemote
	assert.ErrorContains(t, cfg.Validate(), "REMOTE_CHECKER_URL")

	cfg = base()
	cfg.CheckerMode = "magic"
	assert.ErrorContains(t, cfg.Validate(), "CHECKER_MODE")

	cfg = base()
	cfg.MockFailureRate = 1.5
	assert.ErrorContains(t, cfg.Validate(), "MOCK_FAILURE_RATE")
}
