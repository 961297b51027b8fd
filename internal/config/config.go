// Package config loads sheetpilot configuration from
// .sheetpilot/config.yaml with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all sheetpilot configuration.
type Config struct {
	// LLM backend configuration
	LLM LLMConfig `yaml:"llm"`

	// Local storage
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the intent backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, openai
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`

	// FastModel handles routine commands; CapableModel handles analytical
	// or long requests.
	FastModel    string `yaml:"fast_model"`
	CapableModel string `yaml:"capable_model"`
}

// StorageConfig configures the sqlite audit database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig controls categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// ValidProviders are the supported LLM backends.
var ValidProviders = []string{"gemini", "openai"}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  "120s",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(".sheetpilot", "sheetpilot.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Path returns the config file path under a workspace directory.
func Path(workspace string) string {
	return filepath.Join(workspace, ".sheetpilot", "config.yaml")
}

// Load reads the config at path, falling back to defaults when the file
// does not exist, and applies environment overrides last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides lets environment variables win over file values.
// GEMINI_API_KEY takes priority over OPENAI_API_KEY when both are set.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if url := os.Getenv("SHEETPILOT_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if path := os.Getenv("SHEETPILOT_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}

// ResolveModels returns the fast/capable model pair, substituting
// provider-appropriate defaults for unset fields.
func (c *Config) ResolveModels() (fast, capable string) {
	fast, capable = c.LLM.FastModel, c.LLM.CapableModel
	switch c.LLM.Provider {
	case "openai":
		if fast == "" {
			fast = "gpt-4o-mini"
		}
		if capable == "" {
			capable = "gpt-4o"
		}
	default:
		if fast == "" {
			fast = "gemini-2.5-flash"
		}
		if capable == "" {
			capable = "gemini-2.5-pro"
		}
	}
	return fast, capable
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY or OPENAI_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	return nil
}
