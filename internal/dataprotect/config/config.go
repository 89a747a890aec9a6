// Package config provides application configuration management through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds the tunables of the key-ring lifecycle and at-rest protection.
// None of these values change the wire format; they only change when keys are
// created, rotated, and refreshed.
type Config struct {
	// Repository configuration.
	RepositoryDriver string // "memory" or "filesystem"
	RepositoryPath   string // directory for the filesystem repository

	// Key lifecycle defaults.
	KeyActivationDelay time.Duration
	KeyLifetime        time.Duration
	PropagationWindow  time.Duration

	// Key ring provider refresh policy.
	RefreshInterval time.Duration

	// AllowRevokedKeys controls whether Unprotect accepts a revoked key.
	AllowRevokedKeys bool

	// At-rest XML encryption. Empty KMSKeyURI disables at-rest
	// encryption of the descriptor's master-secret subtree.
	KMSKeyURI string

	// Logging.
	LogLevel string
}

// Load loads configuration from environment variables, applying the defaults
// (2 days activation delay, 90 days lifetime, 2 day propagation window, 24
// hour provider refresh interval).
// It first attempts to load a .env file by searching recursively from the
// current directory up to the root directory.
func Load() *Config {
	loadDotEnv()

	return &Config{
		RepositoryDriver: env.GetString("DATAPROTECT_REPOSITORY_DRIVER", "memory"),
		RepositoryPath:   env.GetString("DATAPROTECT_REPOSITORY_PATH", "./keys"),

		KeyActivationDelay: env.GetDuration("DATAPROTECT_KEY_ACTIVATION_DELAY", 2, 24*time.Hour),
		KeyLifetime:        env.GetDuration("DATAPROTECT_KEY_LIFETIME", 90, 24*time.Hour),
		PropagationWindow:  env.GetDuration("DATAPROTECT_PROPAGATION_WINDOW", 2, 24*time.Hour),

		RefreshInterval: env.GetDuration("DATAPROTECT_REFRESH_INTERVAL", 24, time.Hour),

		AllowRevokedKeys: getBool("DATAPROTECT_ALLOW_REVOKED_KEYS", false),

		KMSKeyURI: env.GetString("DATAPROTECT_KMS_KEY_URI", ""),

		LogLevel: env.GetString("LOG_LEVEL", "info"),
	}
}

// getBool parses a boolean environment variable; go-env has no GetBool helper.
func getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
