package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datalens/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/datalens_test?sslmode=disable")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("SERPAPI_KEY", "")
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("MAX_TOKENS", "")
	t.Setenv("TEMPERATURE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3-8b-8192", cfg.AI.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AI.BaseURL)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.Search.ResultCount)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.SearchEnabled())
	assert.False(t, cfg.SheetsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/datalens_test?sslmode=disable")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_MODEL", "llama-3.1-70b-versatile")
	t.Setenv("MAX_TOKENS", "2048")
	t.Setenv("TEMPERATURE", "0.2")
	t.Setenv("SERPAPI_KEY", "serp_test")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/datalens/sa.json")
	t.Setenv("SEARCH_RESULT_COUNT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-70b-versatile", cfg.AI.Model)
	assert.Equal(t, 2048, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 5, cfg.Search.ResultCount)
	assert.True(t, cfg.SearchEnabled())
	assert.True(t, cfg.SheetsEnabled())
}

func TestLoad_MissingGroqKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/datalens_test?sslmode=disable")
	t.Setenv("GROQ_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GROQ_API_KEY", "gsk_test")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/datalens_test?sslmode=disable")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("MAX_TOKENS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
}
