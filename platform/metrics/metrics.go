// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the heat-loss evaluation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heatsurvey"

// Metrics owns a private registry so tests and multiple binaries never clash
// on the global one. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	evaluationsTotal  *prometheus.CounterVec
	resultConfidence  prometheus.Histogram
	stateChanges      *prometheus.CounterVec
	physicsDuration   prometheus.Histogram
	physicsErrors     prometheus.Counter
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	jobsTotal         *prometheus.CounterVec
}

// New creates and registers every collector, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heatloss_evaluations_total",
			Help:      "Heat-loss evaluations by resulting validation state.",
		}, []string{"state"}),
		resultConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "heatloss_result_confidence",
			Help:      "Whole-house confidence of each evaluation (0-100).",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		stateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heatloss_validation_state_changes_total",
			Help:      "Validation state transitions between consecutive evaluations.",
		}, []string{"from", "to"}),
		physicsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "physics_request_duration_seconds",
			Help:      "Histogram of physics engine request durations.",
			Buckets:   prometheus.DefBuckets,
		}),
		physicsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physics_request_errors_total",
			Help:      "Total failed physics engine requests.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heatloss_cache_hits_total",
			Help:      "Evaluation cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "heatloss_cache_misses_total",
			Help:      "Evaluation cache misses.",
		}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Background tasks processed by type and outcome.",
		}, []string{"task", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.evaluationsTotal,
		m.resultConfidence,
		m.stateChanges,
		m.physicsDuration,
		m.physicsErrors,
		m.cacheHits,
		m.cacheMisses,
		m.jobsTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency keyed by the matched route
// template, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Evaluation records one completed evaluation.
func (m *Metrics) Evaluation(state string, confidence int) {
	if m == nil {
		return
	}
	m.evaluationsTotal.WithLabelValues(state).Inc()
	m.resultConfidence.Observe(float64(confidence))
}

// StateChange records a validation state transition.
func (m *Metrics) StateChange(from, to string) {
	if m == nil {
		return
	}
	m.stateChanges.WithLabelValues(from, to).Inc()
}

// PhysicsRequest records one call to the physics engine.
func (m *Metrics) PhysicsRequest(duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.physicsDuration.Observe(duration.Seconds())
	if !success {
		m.physicsErrors.Inc()
	}
}

// CacheHit records an evaluation cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss records an evaluation cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// Job records the outcome of a background task.
func (m *Metrics) Job(task string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.jobsTotal.WithLabelValues(task, outcome).Inc()
}
