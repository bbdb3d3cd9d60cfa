// Package config loads the assistant's configuration from defaults, an
// optional TOML file and EASSISTANT_ environment variables, in that
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"eassistant/internal/llm"
)

// Config is the full runtime configuration.
type Config struct {
	Provider     string  `koanf:"provider" json:"provider"`
	Model        string  `koanf:"model" json:"model"`
	APIKey       string  `koanf:"api_key" json:"api_key,omitempty"`
	BaseURL      string  `koanf:"base_url" json:"base_url,omitempty"`
	MaxTokens    int     `koanf:"max_tokens" json:"max_tokens"`
	Temperature  float64 `koanf:"temperature" json:"temperature"`
	TopP         float64 `koanf:"top_p" json:"top_p"`
	S3Bucket     string  `koanf:"s3_bucket" json:"s3_bucket,omitempty"`
	DraftsDir    string  `koanf:"drafts_dir" json:"drafts_dir,omitempty"`
	HistoryLimit int     `koanf:"history_limit" json:"history_limit"`
	LogLevel     string  `koanf:"log_level" json:"log_level"`
}

// Load reads the configuration. An explicit path must load; otherwise
// the default locations are tried and silently skipped when absent.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"provider":      llm.ProviderBedrock,
		"model":         llm.DefaultModelID,
		"max_tokens":    llm.DefaultMaxTokens,
		"temperature":   llm.DefaultTemperature,
		"top_p":         llm.DefaultTopP,
		"history_limit": 50,
		"log_level":     "info",
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
	} else {
		for _, path := range DefaultPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	k.Load(env.Provider("EASSISTANT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "EASSISTANT_"))
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DefaultPaths lists the locations probed when no --config is given.
func DefaultPaths() []string {
	paths := []string{"./eassistant.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "eassistant", "config.toml"),
			filepath.Join(home, ".eassistant.toml"),
		)
	}
	return paths
}

// DefaultPath is where `config init` writes its sample file.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".eassistant.toml")
	}
	return "./eassistant.toml"
}

// Validate gates startup on a usable configuration.
func Validate(cfg *Config) error {
	switch cfg.Provider {
	case llm.ProviderBedrock, llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderOllama:
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		return fmt.Errorf("model is required")
	}
	if cfg.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", cfg.MaxTokens)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", cfg.Temperature)
	}
	if cfg.TopP < 0 || cfg.TopP > 1 {
		return fmt.Errorf("top_p must be between 0 and 1, got %g", cfg.TopP)
	}
	if cfg.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", cfg.HistoryLimit)
	}
	return nil
}

// Redacted returns a copy safe to print: the API key is masked.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "********"
	}
	return c
}

const sampleConfig = `# eassistant configuration

# Model provider: bedrock, anthropic, openai or ollama.
provider = "bedrock"
model = "eu.anthropic.claude-3-7-sonnet-20250219-v1:0"

# API key for anthropic/openai. Leave empty to use the provider's own
# environment variables (ANTHROPIC_API_KEY, OPENAI_API_KEY). Bedrock
# uses ambient AWS credentials.
api_key = ""

# Base URL for openai-compatible endpoints or the ollama server.
base_url = ""

max_tokens = 256
temperature = 0.3
top_p = 0.2

# S3 bucket for cloud saves ("save to cloud").
s3_bucket = ""

# Where local drafts land. Empty means ~/drafts.
drafts_dir = ""

history_limit = 50
log_level = "info"
`

// Init writes a commented sample configuration to path.
func Init(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
