// Package config provides configuration loading for MediCloak.
// Supports YAML files, a .env file, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for MediCloak.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	OCR           OCRConfig           `yaml:"ocr"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	RequestTimeout   time.Duration `yaml:"request_timeout"` // 0 disables
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

// OCRConfig holds recognition engine settings.
type OCRConfig struct {
	Languages   []string `yaml:"languages"`
	TessdataDir string   `yaml:"tessdata_dir"`
	PageSegMode int      `yaml:"page_seg_mode"`
	RenderScale float64  `yaml:"render_scale"`
}

// RedactionConfig holds text-understanding service settings.
type RedactionConfig struct {
	Provider         string        `yaml:"provider"` // gemini or openrouter
	Model            string        `yaml:"model"`    // empty selects the provider's default
	GeminiAPIKey     string        `yaml:"gemini_api_key"`
	OpenRouterAPIKey string        `yaml:"openrouter_api_key"`
	MaxRetries       uint64        `yaml:"max_retries"`
	RetryInterval    time.Duration `yaml:"retry_interval"`
	Timeout          time.Duration `yaml:"timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads an optional .env file and an optional YAML file, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		if cfg.OCR.TessdataDir != "" {
			cfg.OCR.TessdataDir = ResolveRelativePath(path, cfg.OCR.TessdataDir)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     0, // progress streams can run for minutes
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
			RequestTimeout:   10 * time.Minute,
			MaxUploadBytes:   50 << 20,
			AllowedOrigins:   []string{"*"},
		},
		OCR: OCRConfig{
			Languages:   []string{"eng"},
			PageSegMode: 3,
			RenderScale: 3.0,
		},
		Redaction: RedactionConfig{
			Provider:      "gemini",
			MaxRetries:    0,
			RetryInterval: time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("at least one OCR language is required")
	}

	if c.OCR.RenderScale <= 0 || c.OCR.RenderScale > 16 {
		return fmt.Errorf("render_scale must be in (0, 16], got %v", c.OCR.RenderScale)
	}

	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return fmt.Errorf("invalid page_seg_mode: %d", c.OCR.PageSegMode)
	}

	if c.Redaction.Provider != "gemini" && c.Redaction.Provider != "openrouter" {
		return fmt.Errorf("invalid redaction provider: %s", c.Redaction.Provider)
	}

	if c.Observability.LogFormat != "json" && c.Observability.LogFormat != "console" {
		return fmt.Errorf("invalid log format: %s", c.Observability.LogFormat)
	}

	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.Redaction.Provider == "openrouter" {
		return c.Redaction.OpenRouterAPIKey
	}
	return c.Redaction.GeminiAPIKey
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Redaction.GeminiAPIKey = v
	}

	// API_KEY is the name the hosted web build reads
	if v := os.Getenv("API_KEY"); v != "" && cfg.Redaction.GeminiAPIKey == "" {
		cfg.Redaction.GeminiAPIKey = v
	}

	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Redaction.OpenRouterAPIKey = v
	}

	if v := os.Getenv("MEDICLOAK_PROVIDER"); v != "" {
		cfg.Redaction.Provider = strings.ToLower(v)
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Redaction.Model = v
	}

	if v := os.Getenv("TESSERACT_LANGUAGES"); v != "" {
		var langs []string
		for _, l := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' }) {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		cfg.OCR.Languages = langs
	}

	if v := os.Getenv("TESSDATA_PREFIX"); v != "" {
		cfg.OCR.TessdataDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	return filepath.Join(filepath.Dir(configPath), targetPath)
}
