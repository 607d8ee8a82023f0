package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Screenly ScreenlyConfig `toml:"screenly"`
	Poll     PollConfig     `toml:"poll"`
	History  HistoryConfig  `toml:"history"`
	Cache    CacheConfig    `toml:"cache"`
	Logging  LoggingConfig  `toml:"logging"`
	Tunnel   TunnelConfig   `toml:"tunnel"`
}

// ServerConfig contains the bridge HTTP server configuration
type ServerConfig struct {
	Port           string `toml:"port"`
	Host           string `toml:"host"`
	EnableCORS     bool   `toml:"enable_cors"`
	ReadTimeout    int    `toml:"read_timeout_seconds"`
	WatchForConfig bool   `toml:"watch_config_changes"`
}

// ScreenlyConfig contains the upstream Screenly API configuration
type ScreenlyConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// PollConfig bounds the asset readiness poll loop
type PollConfig struct {
	IntervalMillis int `toml:"interval_ms"`
	MaxAttempts    int `toml:"max_attempts"`
}

// HistoryConfig contains the workflow run history store configuration
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// CacheConfig controls caching of listing responses
type CacheConfig struct {
	Enabled    bool `toml:"enabled"`
	TTLSeconds int  `toml:"ttl_seconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	File           string `toml:"file"`
	RequestLogging bool   `toml:"request_logging"`
}

// TunnelConfig contains the optional ngrok tunnel configuration used to
// expose a local bridge for webhook development
type TunnelConfig struct {
	Enabled      bool   `toml:"enabled"`
	AuthToken    string `toml:"auth_token"`
	Domain       string `toml:"domain"`
	EnableAuth   bool   `toml:"enable_auth"`
	AuthProvider string `toml:"auth_provider"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8089",
			Host:           "0.0.0.0",
			EnableCORS:     true,
			ReadTimeout:    30,
			WatchForConfig: true,
		},
		Screenly: ScreenlyConfig{
			BaseURL:        "https://api.screenlyapp.com/api/v4",
			APIKey:         "",
			RequestTimeout: 30,
			MaxRetries:     3,
		},
		Poll: PollConfig{
			IntervalMillis: 2000,
			MaxAttempts:    60,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "./marquee.db",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 60,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			File:           "",
			RequestLogging: true,
		},
		Tunnel: TunnelConfig{
			Enabled:      false,
			AuthToken:    "",
			Domain:       "",
			EnableAuth:   false,
			AuthProvider: "google",
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
	} else {
		// Load from file
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// The API key may also come from the environment; the config file wins
	if cfg.Screenly.APIKey == "" {
		cfg.Screenly.APIKey = os.Getenv("SCREENLY_API_KEY")
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create or open file
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	header := `# Marquee Signage Bridge Configuration
# This file contains all configuration options for the marquee bridge server.
# The Screenly API key can also be provided via the SCREENLY_API_KEY
# environment variable or a .env file.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	// Encode configuration to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	// Validate upstream config
	if c.Screenly.BaseURL == "" {
		return fmt.Errorf("screenly base URL cannot be empty")
	}
	if c.Screenly.RequestTimeout <= 0 {
		return fmt.Errorf("screenly request timeout must be positive")
	}
	if c.Screenly.MaxRetries < 1 {
		return fmt.Errorf("screenly max retries must be at least 1")
	}

	// Validate poll config
	if c.Poll.IntervalMillis < 0 {
		return fmt.Errorf("poll interval cannot be negative")
	}
	if c.Poll.MaxAttempts < 1 {
		return fmt.Errorf("poll max attempts must be at least 1")
	}

	// Validate history config
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history path cannot be empty when history is enabled")
	}

	// Validate cache config
	if c.Cache.Enabled && c.Cache.TTLSeconds < 1 {
		return fmt.Errorf("cache TTL must be at least 1 second")
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}
