// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RateLimitConfig provides per-IP limits for the evaluation endpoints.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// RedisConfig provides the connection used by the evaluation cache.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// PhysicsConfig provides settings for the heat-loss physics engine.
type PhysicsConfig interface {
	GetPhysicsAPIURL() string
	GetPhysicsAPIKey() string
	GetPhysicsTimeout() time.Duration
	IsPhysicsEnabled() bool
}

// HeatLossConfig provides tuning for evaluation storage and background jobs.
type HeatLossConfig interface {
	GetHeatLossCacheTTL() time.Duration
	GetSnapshotRetention() time.Duration
	GetSnapshotCleanupInterval() time.Duration
	GetStaleScanInterval() time.Duration
	GetRecalculateConcurrency() int
}

// StreamConfig provides the Kafka topic heat-loss events are mirrored to.
type StreamConfig interface {
	GetKafkaBrokers() []string
	GetHeatLossEventsTopic() string
	IsEventStreamEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RateLimitRPS            float64
	RateLimitBurst          int
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	PhysicsAPIURL           string
	PhysicsAPIKey           string
	PhysicsTimeout          time.Duration
	HeatLossCacheTTL        time.Duration
	SnapshotRetention       time.Duration
	SnapshotCleanupInterval time.Duration
	StaleScanInterval       time.Duration
	RecalculateConcurrency  int
	KafkaBrokers            []string
	HeatLossEventsTopic     string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) IsRedisEnabled() bool      { return c.RedisURL != "" }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// PhysicsConfig implementation
func (c *Config) GetPhysicsAPIURL() string         { return c.PhysicsAPIURL }
func (c *Config) GetPhysicsAPIKey() string         { return c.PhysicsAPIKey }
func (c *Config) GetPhysicsTimeout() time.Duration { return c.PhysicsTimeout }
func (c *Config) IsPhysicsEnabled() bool           { return c.PhysicsAPIURL != "" }

// HeatLossConfig implementation
func (c *Config) GetHeatLossCacheTTL() time.Duration        { return c.HeatLossCacheTTL }
func (c *Config) GetSnapshotRetention() time.Duration       { return c.SnapshotRetention }
func (c *Config) GetSnapshotCleanupInterval() time.Duration { return c.SnapshotCleanupInterval }
func (c *Config) GetStaleScanInterval() time.Duration       { return c.StaleScanInterval }
func (c *Config) GetRecalculateConcurrency() int            { return c.RecalculateConcurrency }

// StreamConfig implementation
func (c *Config) GetKafkaBrokers() []string      { return c.KafkaBrokers }
func (c *Config) GetHeatLossEventsTopic() string { return c.HeatLossEventsTopic }
func (c *Config) IsEventStreamEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.HeatLossEventsTopic != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitRPS:            mustFloat(getEnv("RATE_LIMIT_RPS", "5")),
		RateLimitBurst:          mustInt(getEnv("RATE_LIMIT_BURST", "20")),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		PhysicsAPIURL:           strings.TrimRight(getEnv("PHYSICS_API_URL", ""), "/"),
		PhysicsAPIKey:           getEnv("PHYSICS_API_KEY", ""),
		PhysicsTimeout:          mustDuration(getEnv("PHYSICS_TIMEOUT", "10s")),
		HeatLossCacheTTL:        mustDuration(getEnv("HEATLOSS_CACHE_TTL", "24h")),
		SnapshotRetention:       time.Duration(mustInt(getEnv("HEATLOSS_SNAPSHOT_RETENTION_DAYS", "180"))) * 24 * time.Hour,
		SnapshotCleanupInterval: mustDuration(getEnv("HEATLOSS_SNAPSHOT_CLEANUP_INTERVAL", "6h")),
		StaleScanInterval:       mustDuration(getEnv("HEATLOSS_STALE_SCAN_INTERVAL", "1m")),
		RecalculateConcurrency:  mustInt(getEnv("HEATLOSS_RECALCULATE_CONCURRENCY", "4")),
		KafkaBrokers:            splitCSV(getEnv("KAFKA_BROKERS", "")),
		HeatLossEventsTopic:     strings.TrimSpace(getEnv("HEATLOSS_EVENTS_TOPIC", "heatloss.events")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.PhysicsTimeout <= 0 {
		return nil, fmt.Errorf("PHYSICS_TIMEOUT must be a positive duration")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
