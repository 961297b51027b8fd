package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAPIKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SHEETPILOT_BASE_URL", "")
	t.Setenv("SHEETPILOT_DB", "")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearAPIKeys(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.False(t, cfg.Logging.DebugMode)
}

func TestLoadParsesYAML(t *testing.T) {
	clearAPIKeys(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  provider: openai
  api_key: file-key
  timeout: 30s
  fast_model: my-fast
storage:
  database_path: /tmp/test.db
logging:
  debug_mode: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DatabasePath)
	assert.True(t, cfg.Logging.DebugMode)

	fast, capable := cfg.ResolveModels()
	assert.Equal(t, "my-fast", fast)
	assert.Equal(t, "gpt-4o", capable, "unset capable model falls back to provider default")
}

func TestLoadMalformedYAML(t *testing.T) {
	clearAPIKeys(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("gemini key wins over openai key", func(t *testing.T) {
		clearAPIKeys(t)
		t.Setenv("OPENAI_API_KEY", "openai-key")
		t.Setenv("GEMINI_API_KEY", "gemini-key")

		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
		assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	})

	t.Run("openai key alone selects openai", func(t *testing.T) {
		clearAPIKeys(t)
		t.Setenv("OPENAI_API_KEY", "openai-key")

		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.LLM.Provider)
		assert.Equal(t, "openai-key", cfg.LLM.APIKey)
	})

	t.Run("env overrides file key", func(t *testing.T) {
		clearAPIKeys(t)
		t.Setenv("GEMINI_API_KEY", "env-key")

		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: file-key\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.LLM.APIKey)
	})

	t.Run("database path override", func(t *testing.T) {
		clearAPIKeys(t)
		t.Setenv("SHEETPILOT_DB", "/elsewhere/audit.db")

		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "/elsewhere/audit.db", cfg.Storage.DatabasePath)
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "missing API key")

	cfg.LLM.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "mystery"
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	clearAPIKeys(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.APIKey = "saved-key"
	cfg.Logging.DebugMode = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-key", loaded.LLM.APIKey)
	assert.True(t, loaded.Logging.DebugMode)
}
