package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all fetchview configuration.
type Config struct {
	Fetch FetchConfig
	Redis RedisConfig
	Log   LogConfig
}

// FetchConfig controls the fetch task.
type FetchConfig struct {
	// URL is loaded once at start when no inbox is configured.
	URL string // default: "http://www.google.com/"

	// Timeout bounds a single fetch; zero leaves it unbounded.
	Timeout time.Duration // default: 30s

	UserAgent string

	// MaxBodyBytes caps the response body; zero means no cap.
	MaxBodyBytes int64 // default: 10 MiB

	// OTLPEndpoint enables tracing of every fetch, exported over OTLP/HTTP to this host:port.
	OTLPEndpoint string
}

// RedisConfig controls the optional redis inbox and view. Both are disabled while Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	InboxKey     string        // default: "fetchview::inbox"
	ViewKey      string        // default: "fetchview::view"
	ViewTTL      time.Duration // default: 0 (no expiry)
	PollInterval time.Duration // default: 1s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Fetch: FetchConfig{
			URL:          envOr("FETCHVIEW_URL", "http://www.google.com/"),
			Timeout:      envDurationOr("FETCHVIEW_TIMEOUT", 30*time.Second),
			UserAgent:    os.Getenv("FETCHVIEW_USER_AGENT"),
			MaxBodyBytes: envInt64Or("FETCHVIEW_MAX_BODY_BYTES", 10*1024*1024),
			OTLPEndpoint: os.Getenv("FETCHVIEW_OTLP_ENDPOINT"),
		},
		Redis: RedisConfig{
			Addr:         os.Getenv("FETCHVIEW_REDIS_ADDR"),
			Password:     os.Getenv("FETCHVIEW_REDIS_PASSWORD"),
			DB:           envIntOr("FETCHVIEW_REDIS_DB", 0),
			InboxKey:     envOr("FETCHVIEW_INBOX_KEY", "fetchview::inbox"),
			ViewKey:      envOr("FETCHVIEW_VIEW_KEY", "fetchview::view"),
			ViewTTL:      envDurationOr("FETCHVIEW_VIEW_TTL", 0),
			PollInterval: envDurationOr("FETCHVIEW_POLL_INTERVAL", time.Second),
		},
		Log: LogConfig{
			Level:  envOr("FETCHVIEW_LOG_LEVEL", "info"),
			Format: envOr("FETCHVIEW_LOG_FORMAT", "json"),
		},
	}
}

// TracingEnabled reports whether an OTLP endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.Fetch.OTLPEndpoint != ""
}

// RedisEnabled reports whether a redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

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

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
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
