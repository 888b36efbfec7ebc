package config_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockvoice/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-from-env")
	t.Setenv("SERP_API_KEY", "serp-from-env")

	cfg, err := config.Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "gemini", cfg.Speech.Provider)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gem-from-env", cfg.Gemini.APIKey)
	assert.Equal(t, "serp-from-env", cfg.SerpAPI.APIKey)
	assert.Equal(t, "60s", cfg.Gemini.Timeout)
	assert.Equal(t, "http://localhost:3000", cfg.Client.ServerURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-ant-test")

	cfg, err := config.Parse([]byte(`
llm:
  provider: anthropic
anthropic:
  api_key: ${TEST_ANTHROPIC_KEY}
  max_tokens: 1024
server:
  addr: ":8080"
  rate_limit: 30
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.APIKey)
	assert.Equal(t, 1024, cfg.Anthropic.MaxTokens)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30, cfg.Server.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParse_UnsetEnvFallsBackToDefault(t *testing.T) {
	os.Unsetenv("TEST_UNSET_SERP_KEY")
	t.Setenv("SERP_API_KEY", "serp-direct")

	cfg, err := config.Parse([]byte("serpapi:\n  api_key: ${TEST_UNSET_SERP_KEY}\n"))
	require.NoError(t, err)
	assert.Equal(t, "serp-direct", cfg.SerpAPI.APIKey)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown provider": "llm:\n  provider: cohere\n",
		"unknown key":      "server:\n  port: 80\n",
		"bad duration":     "gemini:\n  timeout: soon\n",
		"negative limit":   "server:\n  rate_limit: -1\n",
		"bad log level":    "log:\n  level: verbose\n",
		"top level typo":   "serp:\n  api_key: x\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("speech:\n  provider: openai\n"), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Speech.Provider)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, config.Duration("90s", time.Second))
	assert.Equal(t, time.Second, config.Duration("", time.Second))
	assert.Equal(t, time.Second, config.Duration("nope", time.Second))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0644))

	initial, err := config.Load(path)
	require.NoError(t, err)

	reloaded := make(chan *config.Config, 4)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	watcher := config.NewWatcher(path, initial, func(cfg *config.Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "debug", watcher.Snapshot().Log.Level)
		assert.GreaterOrEqual(t, watcher.ReloadCount(), uint32(1))
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
