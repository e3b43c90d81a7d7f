// Package config provides configuration management for the Safe Dialog service.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lexesus93/safe-dialog/internal/audit"
)

// Config represents the main configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Prompt     PromptConfig     `yaml:"prompt"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig contains HTTP API server settings
type ServerConfig struct {
	Listen string `yaml:"listen"`

	// AllowedOrigins are the frontend origins permitted by CORS
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CatalogConfig contains catalog storage settings
type CatalogConfig struct {
	Type  string      `yaml:"type"` // "file", "memory" or "redis"
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"` //#nosec G117 -- Password field is intentional for Redis auth config
	DB       int    `yaml:"db"`
}

// OllamaConfig contains local model backend settings
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Model string `yaml:"model"`
}

// BaseURL joins host and port into the backend base URL
func (c OllamaConfig) BaseURL() string {
	return c.Host + ":" + c.Port
}

// OpenRouterConfig contains remote model backend settings
type OpenRouterConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"` //#nosec G117 -- API key field is intentional for OpenRouter auth config
	Model   string `yaml:"model"`
}

// PromptConfig contains default system prompt storage settings
type PromptConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string       `yaml:"level"`
	Audit audit.Config `yaml:"audit"`
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:         ":8000",
			AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Catalog: CatalogConfig{
			Type: "file",
			Path: "sensitive_entities.json",
			Redis: RedisConfig{
				Address: "localhost:6379",
				DB:      0,
			},
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost",
			Port:  "11434",
			Model: "gemma3:1b",
		},
		OpenRouter: OpenRouterConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "meta-llama/llama-3.1-8b-instruct:free",
		},
		Prompt: PromptConfig{
			Path: "DefaultSystemPrompt.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
			Audit: *audit.DefaultConfig(),
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Check for config file path in environment or use default
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Sanitize and validate path to prevent path traversal
	configPath = sanitizeConfigPath(configPath)

	data, err := os.ReadFile(configPath) //#nosec G304 -- config path is sanitized above
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults plus environment
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides settings from the environment variables the original
// deployment used.
func (c *Config) applyEnv() {
	if v := os.Getenv("SE_CATALOG_FILE"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.Host = v
	}
	if v := os.Getenv("OLLAMA_PORT"); v != "" {
		c.Ollama.Port = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.OpenRouter.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		c.OpenRouter.Model = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// sanitizeConfigPath cleans and validates a config file path
func sanitizeConfigPath(path string) string {
	// Clean the path to remove any . or .. components
	cleaned := filepath.Clean(path)

	// If path is absolute, use it as-is (operator explicitly set full path)
	// If relative, ensure it doesn't escape the current directory
	if !filepath.IsAbs(cleaned) {
		// Remove any leading ../ components for relative paths
		for len(cleaned) > 2 && cleaned[:3] == "../" {
			cleaned = cleaned[3:]
		}
		if cleaned == ".." {
			cleaned = "config.yaml"
		}
	}

	return cleaned
}
