package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvAPIURL   = "INVOICEDESK_API_URL"
	EnvLogLevel = "INVOICEDESK_LOG_LEVEL"
	EnvLogPath  = "INVOICEDESK_LOG_PATH"
)

type Config struct {
	// Backend settings
	API APIConfig `yaml:"api"`

	// Diagnostic log settings
	Log LogConfig `yaml:"log"`

	// Display settings
	Display DisplayConfig `yaml:"display"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`        // Invoice collection URL, e.g. http://127.0.0.1:8000/api/invoices/
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Path  string `yaml:"path"`  // Log file; "-" writes to stderr
	JSON  bool   `yaml:"json"`  // JSON lines instead of console format
}

type DisplayConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
}

// configDir returns ~/.config/invoicedesk
func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "invoicedesk")
	}
	return filepath.Join(homeDir, ".config", "invoicedesk")
}

// DefaultConfigPath returns ~/.config/invoicedesk/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8000/api/invoices/",
			TimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(configDir(), "invoicedesk.log"),
		},
		Display: DisplayConfig{
			CurrencySymbol: "$",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// applyEnv reads ./.env when present, then applies INVOICEDESK_* variables.
// Variables already set in the process environment win over .env.
func (c *Config) applyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogPath); v != "" {
		c.Log.Path = v
	}
	return nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Display.CurrencySymbol == "" {
		c.Display.CurrencySymbol = "$"
	}
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the log directory
func (c *Config) EnsureDirectories() error {
	if c.Log.Path == "" || c.Log.Path == "-" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.Log.Path), 0755)
}
