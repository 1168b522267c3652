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
	APIBaseURL     string
	ThresholdsPath string
	CachePath      string // sqlite snapshot cache; ":memory:" for ephemeral
	LogPath        string // log file; stderr is unusable once the alt screen is up
	Project        string // optional initial project filter
	DefaultWindow  int    // days: 1, 7, 30 or 90
	HTTPTimeout    time.Duration
	DesktopNotify  bool
}

// Default values
const (
	defaultAPIBaseURL  = "http://localhost:8787"
	defaultWindowDays  = 7
	defaultHTTPTimeout = 15 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIBaseURL:     getEnvString("AGENTLENS_API_URL", defaultAPIBaseURL),
		ThresholdsPath: getEnvString("AGENTLENS_THRESHOLDS_PATH", getDefaultThresholdsPath()),
		CachePath:      getEnvString("AGENTLENS_CACHE_PATH", ":memory:"),
		LogPath:        getEnvString("AGENTLENS_LOG_PATH", getDefaultLogPath()),
		Project:        getEnvString("AGENTLENS_PROJECT", ""),
		DefaultWindow:  getEnvInt("AGENTLENS_WINDOW_DAYS", defaultWindowDays),
		HTTPTimeout:    getEnvDuration("AGENTLENS_HTTP_TIMEOUT", defaultHTTPTimeout),
		DesktopNotify:  getEnvBool("AGENTLENS_DESKTOP_NOTIFY", true),
	}

	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid AGENTLENS_API_URL: %w", err)
	}

	switch cfg.DefaultWindow {
	case 1, 7, 30, 90:
	default:
		return nil, fmt.Errorf("AGENTLENS_WINDOW_DAYS must be 1, 7, 30 or 90 (got %d)", cfg.DefaultWindow)
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
			filepath.Join(home, ".config", "agentlens", ".env"),
			filepath.Join(home, ".agentlens", ".env"),
		)
	}

	return paths
}

// getDefaultThresholdsPath returns the default path for the thresholds file.
func getDefaultThresholdsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "thresholds.json"
	}
	return filepath.Join(home, ".config", "agentlens", "thresholds.json")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "agentlens.log"
	}
	return filepath.Join(home, ".config", "agentlens", "agentlens.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
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
