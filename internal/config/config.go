// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	QuotaBaseURL    string
	CredentialsPath string
	DatabasePath    string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
}

// Default values
const (
	defaultRequestTimeout  = 30 * time.Second
	defaultRefreshInterval = 5 * time.Minute
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		QuotaBaseURL:    getEnvString("QUOTADECK_API_URL", ""),
		CredentialsPath: getEnvString("QUOTADECK_CREDENTIALS_PATH", getDefaultCredentialsPath()),
		DatabasePath:    getEnvString("QUOTADECK_DATABASE_PATH", getDefaultDatabasePath()),
		RequestTimeout:  getEnvDuration("QUOTADECK_REQUEST_TIMEOUT", defaultRequestTimeout),
		RefreshInterval: getEnvDuration("QUOTADECK_REFRESH_INTERVAL", defaultRefreshInterval),
	}

	if cfg.QuotaBaseURL == "" {
		return nil, fmt.Errorf("QUOTADECK_API_URL is required (base URL of the quota lookup service)")
	}
	if _, err := url.Parse(cfg.QuotaBaseURL); err != nil {
		return nil, fmt.Errorf("invalid QUOTADECK_API_URL: %w", err)
	}

	// Ensure data directories exist
	if err := ensureDir(filepath.Dir(cfg.CredentialsPath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "quotadeck", ".env"),
			filepath.Join(home, ".quotadeck", ".env"),
		)
	}

	return paths
}

// getDefaultCredentialsPath returns the default path for the credentials JSON file.
func getDefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".config", "quotadeck", "credentials.json")
}

// getDefaultDatabasePath returns the default path for the SQLite history database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".config", "quotadeck", "history.db")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
