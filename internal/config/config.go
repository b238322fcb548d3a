package config

import (
	"os"
	"strconv"
	"time"

	"github.com/finlens/leienrich/internal/gleif"
)

// Config captures the process configuration so main stays lean. Every
// value has a default; environment variables override.
type Config struct {
	Port      string
	CachePath string
	Registry  gleif.Config
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Port:      envDefault("PORT", "8080"),
		CachePath: envDefault("LEI_CACHE_PATH", "lei_cache.db"),
		Registry: gleif.Config{
			BaseURL:    envDefault("GLEIF_BASE_URL", gleif.DefaultBaseURL),
			RateDelay:  time.Duration(envInt("GLEIF_RATE_LIMIT_MS", 100)) * time.Millisecond,
			MaxRetries: envInt("GLEIF_MAX_RETRIES", 3),
			Timeout:    time.Duration(envInt("GLEIF_TIMEOUT_S", 30)) * time.Second,
		},
	}
	return cfg
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
