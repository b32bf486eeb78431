package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the process. Values come from
// JANSEVA_* environment variables with development defaults so a bare
// `go run ./cmd/server` works.
type Config struct {
	Addr string

	// Persistence backend selection: file | redis | postgres | memory.
	PersistBackend string
	DataFile       string
	PostgresDSN    string

	Redis RedisConfig

	KafkaBrokers []string
	KafkaTopic   string

	JWTSigningKey string

	// StrictTransitions turns on the status transition table. The observed
	// product behavior accepts any target status, so this defaults to off.
	StrictTransitions bool
	// AllowRegression permits backward moves along the forward path when
	// strict mode is on, for admin correction. Product intent is unresolved,
	// hence a flag rather than a hardcoded answer.
	AllowRegression bool

	// EnrichURL points at an optional suggestion service consulted after
	// the local checks. Empty disables enrichment.
	EnrichURL         string
	EnrichTimeout     time.Duration
	AnalyticsInterval time.Duration
}

// RedisConfig holds connection settings for the optional redis backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:           getenv("JANSEVA_ADDR", ":8080"),
		PersistBackend: getenv("JANSEVA_PERSIST_BACKEND", "file"),
		DataFile:       getenv("JANSEVA_DATA_FILE", "submissions.json"),
		PostgresDSN:    os.Getenv("JANSEVA_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("JANSEVA_REDIS_URL"),
			PoolSize:     getint("JANSEVA_REDIS_POOL_SIZE", 10),
			MinIdleConns: getint("JANSEVA_REDIS_MIN_IDLE", 2),
			DialTimeout:  getduration("JANSEVA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getduration("JANSEVA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getduration("JANSEVA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers: getlist("JANSEVA_KAFKA_BROKERS"),
		KafkaTopic:   getenv("JANSEVA_KAFKA_TOPIC", "janseva.submission-status"),
		// Use a default for development - must be overridden in production.
		JWTSigningKey:     getenv("JANSEVA_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		StrictTransitions: os.Getenv("JANSEVA_STRICT_TRANSITIONS") == "true",
		AllowRegression:   os.Getenv("JANSEVA_ALLOW_REGRESSION") == "true",
		EnrichURL:         os.Getenv("JANSEVA_ENRICH_URL"),
		EnrichTimeout:     getduration("JANSEVA_ENRICH_TIMEOUT", 6*time.Second),
		AnalyticsInterval: getduration("JANSEVA_ANALYTICS_INTERVAL", 30*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getlist(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
