package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
llm:
  provider: openai
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
  timeout: 5s
server:
  host: 127.0.0.1
  port: "8080"
  static_dir: ./dist
client:
  relay_url: http://relay:8080
  drop_stale_replies: true
journal:
  path: /tmp/journal.db
log:
  level: debug
  format: text
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(body); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()
	return tmp.Name()
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
			os.Unsetenv(env)
		}
	}
}

// TestLoad_File verifies that Load unmarshals every section of the YAML file.
func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "https://api.example.com", cfg.LLM.BaseURL)
	require.Equal(t, "dummy", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "./dist", cfg.Server.StaticDir)
	require.Equal(t, "http://relay:8080", cfg.Client.RelayURL)
	require.True(t, cfg.Client.DropStaleReplies)
	require.Equal(t, 90*time.Second, cfg.Client.Timeout)
	require.Equal(t, "/tmp/journal.db", cfg.Journal.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "gemini-3-flash-preview", cfg.LLM.Model)
	require.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	require.Empty(t, cfg.LLM.APIKey, "a missing credential must not fail Load")
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, "3000", cfg.Server.Port)
	require.Equal(t, "http://localhost:3000", cfg.Client.RelayURL)
	require.False(t, cfg.Client.DropStaleReplies)
	require.Empty(t, cfg.Journal.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.LLM.APIKey)
	require.Equal(t, "9999", cfg.Server.Port)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, "llm: [unterminated"))

	_, err := Load()
	require.Error(t, err)
}
