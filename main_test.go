package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"minebot/internal/config"
	"minebot/src/model"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideWithoutKeyPrintsFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BOT_CATALOG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"decide", "--situation", "Found a village nearby", "--goal", "Trade"})
	require.NoError(t, rootCmd.Execute())

	var got struct {
		Suggestion model.ActionSuggestion `json:"suggestion"`
		Source     model.DecisionSource   `json:"source"`
		Situation  string                 `json:"situation"`
		Goal       string                 `json:"goal"`
		Error      string                 `json:"error"`
	}
	require.NoError(t, sonic.Unmarshal(out.Bytes(), &got))

	assert.Equal(t, model.SourceFallback, got.Source)
	assert.Contains(t, config.DefaultCatalog().Fallback, got.Suggestion)
	assert.Equal(t, "Found a village nearby", got.Situation)
	assert.Equal(t, "Trade", got.Goal)
	assert.Empty(t, got.Error)
}

func TestNewAppRejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("BOT_CATALOG_PATH", "")

	cfg, err := loadConfig(true)
	require.NoError(t, err)

	_, err = newApp(t.Context(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewAppWithoutKeyWarnsInActivityLog(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("BOT_CATALOG_PATH", "")

	cfg, err := loadConfig(true)
	require.NoError(t, err)

	a, err := newApp(t.Context(), cfg)
	require.NoError(t, err)
	defer a.close()

	assert.False(t, a.provider.HasModel())
	entries := a.runner.Log().All()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARNING: OPENAI_API_KEY not set!", entries[0].Message)
	assert.Equal(t, model.LogError, entries[0].Type)
	assert.Equal(t, "Add it in GitHub Secrets or .env file", entries[1].Message)
	assert.Equal(t, model.LogWarning, entries[1].Type)
}
