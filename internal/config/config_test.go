package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, SourceProductAPI, cfg.Source)
	assert.Equal(t, "http://localhost:8001", cfg.ProductServiceURL)
	assert.Equal(t, 15*time.Minute, cfg.StalenessTTL)
	assert.Zero(t, cfg.RefreshInterval)
	assert.True(t, cfg.HydrateOnStart)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.CacheMaxAge)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "search-service", cfg.KafkaGroupID)
	assert.Equal(t, IdempotencyMemory, cfg.IdempotencyBackend)
	assert.Equal(t, "product_db", cfg.Postgres.DBName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "search-service", cfg.Tracing.ServiceName)
	assert.Equal(t, "development", cfg.Tracing.Environment)
}

func TestLoad_FromEnvVars(t *testing.T) {
	setEnvs(t, map[string]string{
		"SEARCH_SOURCE":              "postgres",
		"POSTGRES_HOST":              "db.internal",
		"SEARCH_STALENESS_TTL":       "5m",
		"SEARCH_REFRESH_INTERVAL":    "10m",
		"KAFKA_ENABLED":              "true",
		"KAFKA_BROKERS":              "k1:9092,k2:9092",
		"SEARCH_IDEMPOTENCY_BACKEND": "redis",
		"ENVIRONMENT":                "production",
		"SEARCH_CORS_ORIGINS":        "https://shop.example.com,https://m.shop.example.com",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, cfg.Source)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5*time.Minute, cfg.StalenessTTL)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, IdempotencyRedis, cfg.IdempotencyBackend)
	assert.Equal(t, "production", cfg.Tracing.Environment)
	assert.Equal(t, []string{"https://shop.example.com", "https://m.shop.example.com"}, cfg.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
		want string
	}{
		{"port", map[string]string{"SEARCH_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"source", map[string]string{"SEARCH_SOURCE": "elastic"}, "invalid SEARCH_SOURCE"},
		{"product url", map[string]string{"PRODUCT_SERVICE_URL": "not a url"}, "invalid PRODUCT_SERVICE_URL"},
		{"ttl", map[string]string{"SEARCH_STALENESS_TTL": "0s"}, "SEARCH_STALENESS_TTL"},
		{"cache", map[string]string{"SEARCH_CACHE_MAX_AGE": "-5s"}, "SEARCH_CACHE_MAX_AGE"},
		{"rate", map[string]string{"SEARCH_RATE_LIMIT_RPS": "-1"}, "SEARCH_RATE_LIMIT_RPS"},
		{"burst", map[string]string{"SEARCH_RATE_LIMIT_BURST": "0"}, "SEARCH_RATE_LIMIT_BURST"},
		{"refresh", map[string]string{"SEARCH_REFRESH_INTERVAL": "-1m"}, "SEARCH_REFRESH_INTERVAL"},
		{"idempotency", map[string]string{"SEARCH_IDEMPOTENCY_BACKEND": "disk"}, "SEARCH_IDEMPOTENCY_BACKEND"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2"}, "OTEL_SAMPLE_RATE"},
		{"parse", map[string]string{"SEARCH_STALENESS_TTL": "soon"}, "load search config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.envs)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_PostgresSourceIgnoresProductURL(t *testing.T) {
	setEnvs(t, map[string]string{
		"SEARCH_SOURCE":       "postgres",
		"PRODUCT_SERVICE_URL": "not a url",
	})

	_, err := Load()
	assert.NoError(t, err)
}
