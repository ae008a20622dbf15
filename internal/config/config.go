// Package config centralizes environment configuration for the importer.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds all runtime configuration, loaded from environment
// variables (optionally via a .env file).
type AppConfig struct {
	Port               string
	LogLevel           string
	MaxUploadSizeBytes int64
}

// Cfg is the global configuration instance, set by Load.
var Cfg *AppConfig

// Load reads configuration from a .env file when present, falling back to
// process environment variables and defaults.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil {
		// .env is optional; environment variables alone are fine.
		log.Printf("config: no .env file loaded: %v", err)
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: getEnvInt64("MAX_UPLOAD_SIZE_BYTES", 10<<20),
	}
	return Cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
