package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Service   ServiceConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// ServiceConfig points at the remote scraping service.
type ServiceConfig struct {
	// Endpoint is the full URL scrape requests are POSTed to.
	Endpoint string // default: "http://127.0.0.1:5000/scrape"

	// Timeout bounds a single scrape request. Zero means no timeout.
	Timeout time.Duration // default: 0
}

// SessionConfig controls the per-browser session store.
type SessionConfig struct {
	// MaxEntries is the maximum number of live sessions.
	MaxEntries int // default: 1000

	// TTL is how long an idle session is kept.
	TTL time.Duration // default: 1h

	// CookieName is the cookie carrying the session id.
	CookieName string // default: "scrapedesk_session"
}

// RateLimitConfig controls per-session submit rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per session.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per session.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SCRAPEDESK_HOST", "0.0.0.0"),
			Port: envIntOr("SCRAPEDESK_PORT", 8080),
			Mode: envOr("SCRAPEDESK_MODE", "release"),
		},
		Service: ServiceConfig{
			Endpoint: envOr("SCRAPEDESK_SERVICE_URL", "http://127.0.0.1:5000/scrape"),
			Timeout:  envDurationOr("SCRAPEDESK_SERVICE_TIMEOUT", 0),
		},
		Session: SessionConfig{
			MaxEntries: envIntOr("SCRAPEDESK_SESSION_MAX", 1000),
			TTL:        envDurationOr("SCRAPEDESK_SESSION_TTL", time.Hour),
			CookieName: envOr("SCRAPEDESK_SESSION_COOKIE", "scrapedesk_session"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SCRAPEDESK_RATE_RPS", 5.0),
			Burst:             envIntOr("SCRAPEDESK_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPEDESK_LOG_LEVEL", "info"),
			Format: envOr("SCRAPEDESK_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

