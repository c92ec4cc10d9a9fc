package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/surveys/:id/heat-loss", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/surveys/"+id+"/heat-loss", nil))
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/surveys/:id/heat-loss", "200"))
	if got != 2 {
		t.Fatalf("expected 2 requests on the route template, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.Evaluation("READY", 85)
	m.Evaluation("PROVISIONAL", 40)
	m.Evaluation("READY", 90)
	m.StateChange("PROVISIONAL", "READY")
	m.Job("heatloss.recalculate", errors.New("boom"))
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()

	if got := testutil.ToFloat64(m.evaluationsTotal.WithLabelValues("READY")); got != 2 {
		t.Fatalf("expected 2 READY evaluations, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobsTotal.WithLabelValues("heatloss.recalculate", "error")); got != 1 {
		t.Fatalf("expected 1 failed job, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses); got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.Evaluation("INCOMPLETE", 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `heatsurvey_heatloss_evaluations_total{state="INCOMPLETE"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", w.Body.String())
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Evaluation("READY", 90)
	m.CacheHit()
	m.Job("x", nil)
}
