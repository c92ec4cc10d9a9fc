// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"heatsurvey_backend/internal/events"
	"heatsurvey_backend/platform/config"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/metrics"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.RateLimitConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP, JWT and rate limits).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// Components are optional dependencies. A failing component reports the
	// service as degraded without failing the health check.
	Components map[string]HealthChecker
	// Metrics serves /metrics and records request metrics. Optional.
	Metrics *metrics.Metrics
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
