package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9090
	cfg.LLM.OpenAIAPIKey = "sk-test"
	cfg.LLM.DefaultModels = []string{"gpt-4o-mini", "claude-sonnet-4-20250514"}
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.From = "reports@example.com"

	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, loaded.Server.Port)
	assert.Equal(t, "sk-test", loaded.LLM.OpenAIAPIKey)
	assert.Equal(t, cfg.LLM.DefaultModels, loaded.LLM.DefaultModels)
	assert.True(t, loaded.SMTP.Enabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.SQLDatabase.Provider)
	assert.Equal(t, "mongodb", cfg.NoSQLDatabase.Provider)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.False(t, cfg.SMTP.Enabled())
}
