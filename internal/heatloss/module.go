// Package heatloss provides the heat-loss confidence bounded context module.
// This file defines the module that encapsulates all heat-loss setup.
package heatloss

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"heatsurvey_backend/internal/events"
	"heatsurvey_backend/internal/heatloss/cache"
	"heatsurvey_backend/internal/heatloss/handler"
	"heatsurvey_backend/internal/heatloss/physics"
	"heatsurvey_backend/internal/heatloss/repository"
	"heatsurvey_backend/internal/heatloss/service"
	"heatsurvey_backend/internal/heatloss/stream"
	"heatsurvey_backend/internal/heatloss/transport"
	apphttp "heatsurvey_backend/internal/http"
	"heatsurvey_backend/platform/config"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/metrics"
	"heatsurvey_backend/platform/validator"
)

// Config combines the settings the module reads.
type Config interface {
	config.PhysicsConfig
	config.RedisConfig
	config.HeatLossConfig
	config.StreamConfig
}

// Module is the heat-loss bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	rdb     *redis.Client
	stream  *stream.Publisher
	health  map[string]apphttp.HealthChecker
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewModule creates and initializes the heat-loss module. The physics engine
// and the Redis cache are optional; without physics only payloads that carry
// raw results can be evaluated.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg Config, m *metrics.Metrics, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, fmt.Errorf("heat-loss validators: %w", err)
	}

	repo := repository.New(pool)
	health := make(map[string]apphttp.HealthChecker)
	opts := service.Options{
		Bus:         bus,
		Metrics:     m,
		Concurrency: cfg.GetRecalculateConcurrency(),
	}

	if cfg.IsPhysicsEnabled() {
		client := physics.New(cfg.GetPhysicsAPIURL(), cfg.GetPhysicsAPIKey(), cfg.GetPhysicsTimeout(), log, m)
		opts.Physics = client
		health["physics"] = client
		log.Info("physics engine client initialized", "url", cfg.GetPhysicsAPIURL())
	} else {
		log.Info("physics engine disabled: PHYSICS_API_URL not configured")
	}

	var rdb *redis.Client
	if cfg.IsRedisEnabled() {
		client, err := cache.NewClient(cfg)
		if err != nil {
			log.Warn("evaluation cache disabled", "error", err)
		} else {
			rdb = client
			evalCache := cache.New(rdb, cfg.GetHeatLossCacheTTL())
			opts.Cache = evalCache
			health["cache"] = evalCache
		}
	} else {
		log.Info("evaluation cache disabled: REDIS_URL not configured")
	}

	var publisher *stream.Publisher
	if cfg.IsEventStreamEnabled() {
		p, err := stream.New(cfg.GetKafkaBrokers(), cfg.GetHeatLossEventsTopic(), log)
		if err != nil {
			return nil, fmt.Errorf("heat-loss event stream: %w", err)
		}
		publisher = p
		log.Info("heat-loss event stream enabled", "topic", cfg.GetHeatLossEventsTopic())
	}

	svc := service.New(repo, val, log, opts)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
		rdb:     rdb,
		stream:  publisher,
		health:  health,
		metrics: m,
		log:     log,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "heatloss"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for background jobs.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// HealthChecks returns the optional collaborators that are configured, for
// degraded-mode reporting on the health endpoint.
func (m *Module) HealthChecks() map[string]apphttp.HealthChecker {
	return m.health
}

// SetEnqueuer enables asynchronous recalculation.
func (m *Module) SetEnqueuer(enqueuer service.RecalculationEnqueuer) {
	m.service.SetEnqueuer(enqueuer)
}

// Close releases the cache connection and flushes the event stream.
func (m *Module) Close() error {
	var errs []error
	if m.rdb != nil {
		errs = append(errs, m.rdb.Close())
	}
	if m.stream != nil {
		errs = append(errs, m.stream.Close())
	}
	return errors.Join(errs...)
}

// RegisterRoutes mounts heat-loss routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	limited := ctx.RateLimiter.RateLimit()

	ctx.Protected.GET("/heat-loss/field-confidence", m.handler.FieldConfidence)
	ctx.Protected.POST("/heat-loss/evaluate", limited, m.handler.Evaluate)

	surveys := ctx.Protected.Group("/surveys/:id/heat-loss")
	surveys.GET("", m.handler.GetLatest)
	surveys.GET("/history", m.handler.ListHistory)
	surveys.POST("/evaluate", limited, m.handler.EvaluateSurvey)
	surveys.POST("/recalculate", limited, m.handler.Recalculate)

	ctx.Admin.POST("/heat-loss/recalculate", limited, m.handler.RecalculateBatch)
}

// RegisterHandlers subscribes the module to its own events and, when
// configured, mirrors them to Kafka.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ValidationStateChanged{}.EventName(), m)
	if m.stream != nil {
		m.stream.Subscribe(bus)
	}
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ValidationStateChanged:
		m.metrics.StateChange(e.From, e.To)
		m.log.WithContext(ctx).Info("validation state changed",
			"surveyId", e.SurveyID, "from", e.From, "to", e.To, "reason", e.Reason)
		return nil
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
