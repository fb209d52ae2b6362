package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Well-known service endpoints. These are process-wide configuration with no
// runtime mutation; the env overrides below exist for staging against mock
// services, not for reconfiguration on the fly.
const (
	DefaultSummarizerURL = "https://summarizer.dev.swisscows.com/summarize"
	DefaultPuppetURL     = "wss://browse.dev.swisscows.com/ws/"
)

// Config holds all configuration for the bridge.
type Config struct {
	// Remote service endpoints
	SummarizerURL string
	PuppetURL     string

	// Client behavior
	SummarizeTimeoutMS int

	// Bridge API settings
	BindAddr    string
	SnapshotDir string
	StreamsFile string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and an optional .env
// file, falling back to the well-known defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		SummarizerURL:      getEnvOrDefault("BRIDGE_SUMMARIZER_URL", DefaultSummarizerURL),
		PuppetURL:          getEnvOrDefault("BRIDGE_PUPPET_URL", DefaultPuppetURL),
		SummarizeTimeoutMS: getEnvIntOrDefault("BRIDGE_SUMMARIZE_TIMEOUT_MS", 30000),
		BindAddr:           getEnvOrDefault("BRIDGE_BIND_ADDR", "127.0.0.1:8199"),
		SnapshotDir:        getEnvOrDefault("BRIDGE_SNAPSHOT_DIR", "./captures"),
		StreamsFile:        getEnvOrDefault("BRIDGE_STREAMS_FILE", ""),
		LogLevel:           strings.ToLower(getEnvOrDefault("BRIDGE_LOG_LEVEL", "info")),
		LogFile:            getEnvOrDefault("BRIDGE_LOG_FILE", "logs/browsebridge.log"),
	}
	if cfg.SummarizeTimeoutMS < 1000 {
		cfg.SummarizeTimeoutMS = 1000
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
