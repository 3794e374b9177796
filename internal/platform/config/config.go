package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Reference-data backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

// Config is the process configuration, read once from the environment so main
// stays lean.
type Config struct {
	RefData        RefDataConfig
	Redis          RedisConfig
	Audit          AuditConfig
	Log            LogConfig
	MaxConcurrency int
}

// RefDataConfig selects and tunes the reference-data backend.
type RefDataConfig struct {
	Backend     string
	SeedPath    string
	URL         string
	Timeout     time.Duration
	DatabaseURL string
	// CacheTTL of zero disables the read-through cache.
	CacheTTL time.Duration
}

// RedisConfig configures the optional Redis cache backend. An empty URL means
// the in-process cache is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig selects audit sinks. With neither brokers nor a database URL,
// events stay in memory.
type AuditConfig struct {
	KafkaBrokers []string
	Topic        string
	DatabaseURL  string
}

type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (Config, error) {
	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		RefData: RefDataConfig{
			Backend:     envOr("CASEBRIDGE_REFDATA_BACKEND", BackendMemory),
			SeedPath:    os.Getenv("CASEBRIDGE_REFDATA_SEED"),
			URL:         os.Getenv("CASEBRIDGE_REFDATA_URL"),
			Timeout:     duration("CASEBRIDGE_REFDATA_TIMEOUT", 5*time.Second),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			CacheTTL:    duration("CASEBRIDGE_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: AuditConfig{
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:        envOr("CASEBRIDGE_AUDIT_TOPIC", "casebridge.audit"),
			DatabaseURL:  os.Getenv("AUDIT_DATABASE_URL"),
		},
		Log: LogConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "text"),
		},
		MaxConcurrency: integer("CASEBRIDGE_MAX_CONCURRENCY", 8),
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and missing settings for the chosen one.
func (c Config) Validate() error {
	var errs []error
	switch c.RefData.Backend {
	case BackendMemory:
		if c.RefData.SeedPath == "" {
			errs = append(errs, errors.New("CASEBRIDGE_REFDATA_SEED is required for the memory backend"))
		}
	case BackendPostgres:
		if c.RefData.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendHTTP:
		if c.RefData.URL == "" {
			errs = append(errs, errors.New("CASEBRIDGE_REFDATA_URL is required for the http backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown reference data backend %q", c.RefData.Backend))
	}
	if c.RefData.Timeout <= 0 {
		errs = append(errs, errors.New("CASEBRIDGE_REFDATA_TIMEOUT must be positive"))
	}
	if c.RefData.CacheTTL < 0 {
		errs = append(errs, errors.New("CASEBRIDGE_CACHE_TTL must not be negative"))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, errors.New("CASEBRIDGE_MAX_CONCURRENCY must be at least 1"))
	}
	if len(c.Audit.KafkaBrokers) > 0 && c.Audit.Topic == "" {
		errs = append(errs, errors.New("CASEBRIDGE_AUDIT_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
