// ABOUTME: Configuration loader for the SmartWalletFX CLI
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// API
	APIURL         string        // base URL of the SmartWalletFX backend
	RequestTimeout time.Duration // per-request timeout

	// Local state
	StateDir string // directory holding session artifacts (presence flag, cookie jar)
}

const defaultAPIURL = "http://localhost:8000"

func Load() (*Config, error) {
	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:         ensureScheme(getEnv("SMARTWALLET_API_URL", defaultAPIURL)),
		RequestTimeout: time.Duration(getEnvInt("SMARTWALLET_TIMEOUT", 30)) * time.Second,
		StateDir:       os.Getenv("SMARTWALLET_STATE_DIR"),
	}

	if cfg.StateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine state directory: %w", err)
		}
		cfg.StateDir = filepath.Join(base, "smartwalletfx")
	}

	if cfg.RequestTimeout < time.Second || cfg.RequestTimeout > 10*time.Minute {
		return nil, fmt.Errorf("SMARTWALLET_TIMEOUT must be between 1 and 600 seconds, got %d", int(cfg.RequestTimeout/time.Second))
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
