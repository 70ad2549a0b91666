// Package config loads server configuration from .env files and the environment
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/10aParikh/nessie-mcp-server/internal/logging"
)

// DefaultNessieBaseURL is the public Nessie sandbox endpoint
const DefaultNessieBaseURL = "http://api.nessieisreal.com"

// Config holds the process-wide configuration. It is constructed once at
// startup and read-only afterwards.
type Config struct {
	// Port the HTTP server listens on
	Port string

	// NessieAPIKey authenticates every upstream call. It may be empty:
	// the server still starts and each call fails individually.
	NessieAPIKey string

	// NessieBaseURL is the upstream banking API base URL
	NessieBaseURL string

	// LogLevel is the minimum level emitted by the logger factory
	LogLevel slog.Level

	// HeartbeatSeconds is the interval between SSE keep-alive comments
	HeartbeatSeconds int
}

// Load reads the configuration from a .env file (config/.env, then .env)
// and the process environment. Environment variables win over defaults.
func Load() *Config {
	for _, path := range []string{"config/.env", ".env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				break
			}
		}
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		NessieAPIKey:     os.Getenv("NESSIE_API_KEY"),
		NessieBaseURL:    getEnv("NESSIE_BASE_URL", DefaultNessieBaseURL),
		LogLevel:         logging.ParseLevel(getEnv("LOG_LEVEL", "INFO")),
		HeartbeatSeconds: getEnvInt("SSE_HEARTBEAT_SECONDS", 15),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
