package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SERVER_PORT", "SERVER_HOST", "GEMINI_API_KEY", "API_KEY", "OPENROUTER_API_KEY",
	"MEDICLOAK_PROVIDER", "LLM_MODEL", "TESSERACT_LANGUAGES", "TESSDATA_PREFIX",
	"LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, 3.0, cfg.OCR.RenderScale)
	assert.Equal(t, "gemini", cfg.Redaction.Provider)
	assert.Zero(t, cfg.Redaction.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "medicloak.yaml")
	content := `
server:
  port: 9090
ocr:
  languages: [eng, hin]
  render_scale: 2
  tessdata_dir: tessdata
redaction:
  provider: openrouter
  model: google/gemini-2.5-pro
  max_retries: 2
  retry_interval: 500ms
observability:
  log_level: debug
  log_format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"eng", "hin"}, cfg.OCR.Languages)
	assert.Equal(t, 2.0, cfg.OCR.RenderScale)
	assert.Equal(t, filepath.Join(dir, "tessdata"), cfg.OCR.TessdataDir)
	assert.Equal(t, "openrouter", cfg.Redaction.Provider)
	assert.Equal(t, uint64(2), cfg.Redaction.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Redaction.RetryInterval)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	// defaults survive for unset keys
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("MEDICLOAK_PROVIDER", "OpenRouter")
	t.Setenv("TESSERACT_LANGUAGES", "eng+hin, tam")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "openrouter", cfg.Redaction.Provider)
	assert.Equal(t, "or-key", cfg.APIKey())
	assert.Equal(t, "gm-key", cfg.Redaction.GeminiAPIKey)
	assert.Equal(t, []string{"eng", "hin", "tam"}, cfg.OCR.Languages)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestLoad_OpenRouterKeepsProviderDefaultModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDICLOAK_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", cfg.Redaction.Provider)
	assert.Empty(t, cfg.Redaction.Model, "provider picks its own default model")

	t.Setenv("LLM_MODEL", "anthropic/claude-sonnet-4")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.Redaction.Model)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "fallback")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.APIKey())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [not a map"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "request timeout", mutate: func(c *Config) { c.Server.RequestTimeout = -time.Second }},
		{name: "upload size", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{name: "languages", mutate: func(c *Config) { c.OCR.Languages = nil }},
		{name: "scale", mutate: func(c *Config) { c.OCR.RenderScale = 0 }},
		{name: "page seg mode", mutate: func(c *Config) { c.OCR.PageSegMode = 14 }},
		{name: "provider", mutate: func(c *Config) { c.Redaction.Provider = "bard" }},
		{name: "log format", mutate: func(c *Config) { c.Observability.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolveRelativePath(t *testing.T) {
	assert.Equal(t, "/abs/data", ResolveRelativePath("/etc/medicloak.yaml", "/abs/data"))
	assert.Equal(t, filepath.Join("/etc", "data"), ResolveRelativePath("/etc/medicloak.yaml", "data"))
}
