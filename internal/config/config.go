package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	// ListenAddr is the address the HTTP server binds to
	ListenAddr string `json:"listen_addr"`

	// BaseURL is the externally visible URL used to build the OAuth redirect URI
	BaseURL string `json:"base_url"`

	// CookieName is the session cookie name
	CookieName string `json:"cookie_name"`

	// CookieSecure marks the session cookie Secure (set when serving over HTTPS)
	CookieSecure bool `json:"cookie_secure"`
}

// Config holds all configuration for the GizWeb application
type Config struct {
	// Credentials is the path to the OAuth client credentials JSON.
	// It is an explicit setting validated at startup; there is no
	// filesystem probing of candidate locations.
	Credentials string `json:"credentials"`

	// Database is the path to the SQLite session database
	Database string `json:"database"`

	// Scopes are the Gmail OAuth scopes requested during login
	Scopes []string `json:"scopes"`

	// Server holds HTTP listener settings
	Server ServerConfig `json:"server"`

	// SavedSearches is an optional path to a YAML file of named Gmail queries
	SavedSearches string `json:"saved_searches"`

	// Logging
	LogFile string `json:"log_file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	credentials, _ := DefaultCredentialPaths()
	return &Config{
		Credentials: credentials,
		Database:    DefaultDatabasePath(),
		Scopes:      []string{"https://www.googleapis.com/auth/gmail.readonly"},
		Server: ServerConfig{
			ListenAddr:   ":8080",
			BaseURL:      "http://localhost:8080",
			CookieName:   "gizweb_session",
			CookieSecure: false,
		},
		SavedSearches: "",
		LogFile:       "",
	}
}

// LoadConfig loads configuration from a JSON file over the defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks settings that must be resolvable at startup
func (c *Config) Validate() error {
	if c.Credentials == "" {
		return fmt.Errorf("credentials path is required")
	}
	if _, err := os.Stat(c.Credentials); err != nil {
		return fmt.Errorf("credentials file not found at %s: %w", c.Credentials, err)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if len(c.Scopes) == 0 {
		return fmt.Errorf("at least one OAuth scope is required")
	}
	return nil
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gizweb", "config.json")
}

// DefaultCredentialPaths returns the default credentials path and config directory
func DefaultCredentialPaths() (string, string) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}

	configDir := filepath.Join(home, ".config", "gizweb")
	return filepath.Join(configDir, "credentials.json"), configDir
}

// DefaultDatabasePath returns the default session database path
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gizweb", "sessions.db")
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
