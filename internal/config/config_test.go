package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, float32(0), cfg.LLM.Temperature)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Worker.Concurrency)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
	assert.Equal(t, 50, cfg.Storage.MaxFiles)
	assert.False(t, cfg.Qdrant.Enabled())
	assert.Equal(t, uint64(1536), cfg.Qdrant.VectorSize)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:1234/v1/")
	t.Setenv("QDRANT_URL", "http://qdrant:6334")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("BREAKER_FAILURE_RATIO", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.OpenAI.BaseURL)
	assert.True(t, cfg.Qdrant.Enabled())
	assert.True(t, cfg.Database.Enabled)
	assert.InDelta(t, 0.5, cfg.LLM.Breaker.FailureRatio, 1e-9)
	assert.Equal(t, uint64(768), cfg.Qdrant.VectorSize)
}

func TestLoadExplicitVectorSize(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("QDRANT_VECTOR_SIZE", "3072")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(3072), cfg.Qdrant.VectorSize)
}

func TestLoadRejectsMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeMissingAPIKey, appErr.Code)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return FromViper(newViper())
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		code   string
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "llama" }, apperrors.ErrCodeInvalidConfig},
		{"zero workers", func(c *Config) { c.Worker.Concurrency = 0 }, apperrors.ErrCodeInvalidConfig},
		{"zero file size", func(c *Config) { c.Storage.MaxFileSize = 0 }, apperrors.ErrCodeInvalidConfig},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }, apperrors.ErrCodeInvalidConfig},
		{"bad ratio", func(c *Config) { c.LLM.Breaker.FailureRatio = 1.5 }, apperrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			cfg.LLM.OpenAI.APIKey = "sk-test"
			tt.mutate(cfg)

			err := cfg.Validate()
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := FromViper(newViper())
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=resume_ranker sslmode=disable",
		cfg.GetDatabaseDSN())
}
