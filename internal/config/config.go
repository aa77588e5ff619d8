package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/catalogsearch/pkg/config"
	"github.com/utafrali/catalogsearch/pkg/database"
	"github.com/utafrali/catalogsearch/pkg/tracing"
)

// Source backends for hydration.
const (
	SourceProductAPI = "product-api"
	SourcePostgres   = "postgres"
)

// Idempotency backends for the event consumer.
const (
	IdempotencyMemory = "memory"
	IdempotencyRedis  = "redis"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// Browser access to the public routes
	CORSOrigins []string      `env:"SEARCH_CORS_ORIGINS" envSeparator:","`
	CacheMaxAge time.Duration `env:"SEARCH_CACHE_MAX_AGE" envDefault:"30s"`

	// Per-client limit on search and suggest; 0 disables it
	RateLimitRPS   float64 `env:"SEARCH_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"SEARCH_RATE_LIMIT_BURST" envDefault:"40"`

	// Source of truth for hydration (product-api or postgres)
	Source            string `env:"SEARCH_SOURCE" envDefault:"product-api"`
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8001"`

	Postgres database.PostgresConfig
	Redis    database.RedisConfig

	// Index freshness
	StalenessTTL    time.Duration `env:"SEARCH_STALENESS_TTL" envDefault:"15m"`
	RefreshInterval time.Duration `env:"SEARCH_REFRESH_INTERVAL" envDefault:"0s"`
	HydrateOnStart  bool          `env:"SEARCH_HYDRATE_ON_START" envDefault:"true"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"search-service"`

	IdempotencyBackend string        `env:"SEARCH_IDEMPOTENCY_BACKEND" envDefault:"memory"`
	IdempotencyTTL     time.Duration `env:"SEARCH_IDEMPOTENCY_TTL" envDefault:"24h"`

	// Admin routes
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Tracing.ServiceName = "search-service"
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	switch c.Source {
	case SourceProductAPI:
		u, err := url.Parse(c.ProductServiceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid PRODUCT_SERVICE_URL: %q", c.ProductServiceURL)
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("invalid SEARCH_SOURCE: %q (want %s or %s)", c.Source, SourceProductAPI, SourcePostgres)
	}

	if c.CacheMaxAge < 0 {
		return fmt.Errorf("SEARCH_CACHE_MAX_AGE must not be negative, got %s", c.CacheMaxAge)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.StalenessTTL <= 0 {
		return fmt.Errorf("SEARCH_STALENESS_TTL must be positive, got %s", c.StalenessTTL)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("SEARCH_REFRESH_INTERVAL must not be negative, got %s", c.RefreshInterval)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	switch c.IdempotencyBackend {
	case IdempotencyMemory, IdempotencyRedis:
	default:
		return fmt.Errorf("invalid SEARCH_IDEMPOTENCY_BACKEND: %q", c.IdempotencyBackend)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.Tracing.SampleRate)
	}
	return nil
}
