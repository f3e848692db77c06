// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Environment names recognized by the capability probe.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// Config holds all application configuration.
type Config struct {
	// Environment is the deployment context ("production", "development" or "test").
	// It gates which cipher backends are selectable.
	Environment string
	// AllowInsecureBackend permits the synthetic test cipher backend.
	// It is ignored entirely when Environment is "production".
	AllowInsecureBackend bool

	// Algorithm is the AEAD algorithm used for key wrapping and entry
	// encryption ("aes-gcm", "chacha20-poly1305" or "insecure-xor").
	Algorithm string

	// KdfTime is the Argon2id iteration count.
	KdfTime uint32
	// KdfMemoryKiB is the Argon2id memory cost in KiB.
	KdfMemoryKiB uint32
	// KdfThreads is the Argon2id parallelism degree.
	KdfThreads uint8

	// StoragePath is the directory for the embedded store.
	StoragePath string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// AuditEnabled indicates whether audit events are persisted.
	AuditEnabled bool

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Backend gating
		Environment:          env.GetString("VAULT_ENVIRONMENT", EnvProduction),
		AllowInsecureBackend: env.GetBool("VAULT_ALLOW_INSECURE_BACKEND", false),

		// Cryptography
		Algorithm:    env.GetString("VAULT_ALGORITHM", "aes-gcm"),
		KdfTime:      uint32(env.GetInt("VAULT_KDF_TIME", 3)),
		KdfMemoryKiB: uint32(env.GetInt("VAULT_KDF_MEMORY_KIB", 64*1024)),
		KdfThreads:   uint8(env.GetInt("VAULT_KDF_THREADS", 4)),

		// Storage
		StoragePath: env.GetString("VAULT_STORAGE_PATH", defaultStoragePath()),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Audit
		AuditEnabled: env.GetBool("AUDIT_ENABLED", true),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "entryvault"),
	}
}

// IsProduction reports whether the configured environment is production.
// Unknown environment names are treated as production so that a typo can
// never loosen the backend gate.
func (c *Config) IsProduction() bool {
	switch c.Environment {
	case EnvDevelopment, EnvTest:
		return false
	default:
		return true
	}
}

// defaultStoragePath returns the default location of the embedded store.
func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".entryvault"
	}
	return filepath.Join(home, ".entryvault")
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
