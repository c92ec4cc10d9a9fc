package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"heatsurvey_backend/internal/heatloss/repository"
	"heatsurvey_backend/internal/heatloss/service"
	"heatsurvey_backend/internal/heatloss/transport"
	"heatsurvey_backend/platform/apperr"
	"heatsurvey_backend/platform/httpkit"
	"heatsurvey_backend/platform/logger"
	"heatsurvey_backend/platform/validator"
)

// emptyRepo knows no surveys and no snapshots.
type emptyRepo struct{}

func (emptyRepo) LoadSurveyInputs(context.Context, uuid.UUID, uuid.UUID) (repository.SurveyInputs, error) {
	return repository.SurveyInputs{}, apperr.NotFound("survey not found")
}

func (emptyRepo) ListStaleSurveys(context.Context, int) ([]repository.SurveyRef, error) {
	return nil, nil
}

func (emptyRepo) CreateSnapshot(context.Context, repository.CreateSnapshotParams) (repository.Snapshot, error) {
	return repository.Snapshot{}, apperr.Internal("read only")
}

func (emptyRepo) GetLatestSnapshot(context.Context, uuid.UUID, uuid.UUID) (repository.Snapshot, error) {
	return repository.Snapshot{}, apperr.NotFound("no evaluation recorded for survey")
}

func (emptyRepo) ListSnapshots(context.Context, uuid.UUID, uuid.UUID, int) ([]repository.Snapshot, error) {
	return nil, nil
}

func (emptyRepo) DeleteSnapshotsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newRouter(t *testing.T, authenticated bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	if err := transport.RegisterValidators(val); err != nil {
		t.Fatalf("register validators: %v", err)
	}
	svc := service.New(emptyRepo{}, val, logger.NewWithWriter("test", io.Discard), service.Options{})
	h := New(svc, val)

	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set(httpkit.ContextUserIDKey, uuid.New())
			c.Set(httpkit.ContextTenantIDKey, uuid.New())
			c.Next()
		})
	}
	r.GET("/heat-loss/field-confidence", h.FieldConfidence)
	r.POST("/heat-loss/evaluate", h.Evaluate)
	r.GET("/surveys/:id/heat-loss", h.GetLatest)
	r.GET("/surveys/:id/heat-loss/history", h.ListHistory)
	r.POST("/surveys/:id/heat-loss/recalculate", h.Recalculate)
	r.POST("/heat-loss/recalculate", h.RecalculateBatch)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const readyPayload = `{
	"rooms": [{"id": "r1", "name": "Living room", "floorAreaM2": 20, "volumeM3": 50, "ceilingHeightM": 2.5, "geometrySource": "lidar_scan"}],
	"surfaces": [{"id": "w1", "roomId": "r1", "orientation": "N", "areaM2": 10, "constructionType": "cavity_filled",
		"calculatedUValue": 0.3, "classification": "EXTERNAL", "source": "manual_measurement"}],
	"results": [{"roomId": "r1", "totalLossW": 900, "adequacy": [{"flowTempC": 55, "adequate": true, "requiredW": 900, "ratedW": 1100}]}]
}`

func TestEvaluateReady(t *testing.T) {
	w := do(newRouter(t, true), http.MethodPost, "/heat-loss/evaluate", readyPayload)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp transport.EvaluationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ValidationState != "READY" || !resp.IsFinal {
		t.Fatalf("expected READY, got %s (%s)", resp.ValidationState, resp.ValidationReason)
	}
	if resp.Rooms[0].Adequacy["55"] != "ok" {
		t.Fatalf("expected ok at 55, got %v", resp.Rooms[0].Adequacy)
	}
	if resp.ResultConfidence != 76 {
		t.Fatalf("expected 76, got %d", resp.ResultConfidence)
	}
}

func TestEvaluateStates(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		state string
	}{
		{"no rooms", `{"rooms": []}`, "INCOMPLETE"},
		{"bad geometry", `{"rooms": [{"id": "r1", "floorAreaM2": 0, "volumeM3": 30, "geometrySource": "lidar_scan"}],
			"results": [{"roomId": "r1", "totalLossW": 100}]}`, "INCOMPLETE"},
		{"assumed room", `{"rooms": [{"id": "r1", "floorAreaM2": 10, "volumeM3": 25, "geometrySource": "assumed"}],
			"results": [{"roomId": "r1", "totalLossW": 100}]}`, "PROVISIONAL"},
	}

	r := newRouter(t, true)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/heat-loss/evaluate", tc.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp transport.EvaluationResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.ValidationState != tc.state {
				t.Fatalf("expected %s, got %s", tc.state, resp.ValidationState)
			}
		})
	}
}

func TestEvaluateRejectsMalformedJSON(t *testing.T) {
	w := do(newRouter(t, true), http.MethodPost, "/heat-loss/evaluate", `{"rooms": [`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestEvaluateUntrackedFlowTemp(t *testing.T) {
	payload := `"rooms": [{"id": "r1", "floorAreaM2": 10, "volumeM3": 25}],
		"results": [{"roomId": "r1", "totalLossW": 100, "adequacy": [{"flowTempC": 60, "requiredW": 100}]}]}`

	w := do(newRouter(t, true), http.MethodPost, "/heat-loss/evaluate", "{"+payload)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for lenient payload, got %d: %s", w.Code, w.Body.String())
	}
	var resp transport.EvaluationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Rooms[0].Adequacy["45"] != "unknown" || len(resp.Rooms[0].Adequacy) != 3 {
		t.Fatalf("untracked setpoint should be dropped, got %v", resp.Rooms[0].Adequacy)
	}

	w = do(newRouter(t, true), http.MethodPost, "/heat-loss/evaluate", `{"strict": true, `+payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 in strict mode, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "results[0].adequacy[0].flowTempC") {
		t.Fatalf("expected detail for flowTempC, got %s", w.Body.String())
	}
}

func TestEvaluateStrictRejectsUnknownSource(t *testing.T) {
	body := `{"strict": true, "rooms": [{"id": "r1", "floorAreaM2": 10, "volumeM3": 25, "geometrySource": "guess"}],
		"results": [{"roomId": "r1", "totalLossW": 100}]}`
	w := do(newRouter(t, true), http.MethodPost, "/heat-loss/evaluate", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rooms[0].geometrySource") {
		t.Fatalf("expected detail for geometrySource, got %s", w.Body.String())
	}
}

func TestEvaluateInvalidGeometryWithoutPhysics(t *testing.T) {
	body := `{"rooms": [{"id": "r1", "floorAreaM2": 0, "volumeM3": 25, "geometrySource": "lidar_scan"}]}`
	w := do(newRouter(t, true), http.MethodPost, "/heat-loss/evaluate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp transport.EvaluationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ValidationState != "INCOMPLETE" {
		t.Fatalf("expected INCOMPLETE, got %s", resp.ValidationState)
	}
}

func TestEvaluateRequiresAuthentication(t *testing.T) {
	w := do(newRouter(t, false), http.MethodPost, "/heat-loss/evaluate", readyPayload)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestFieldConfidence(t *testing.T) {
	r := newRouter(t, true)

	w := do(r, http.MethodGet, "/heat-loss/field-confidence?source=manual_measurement&recencyDays=1095", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp transport.FieldConfidenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// three years old: 20% penalty on 70
	if resp.Score != 56 || resp.Color != "amber" {
		t.Fatalf("expected 56/amber, got %d/%s", resp.Score, resp.Color)
	}

	if w := do(r, http.MethodGet, "/heat-loss/field-confidence", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without source, got %d", w.Code)
	}
}

func TestGetLatest(t *testing.T) {
	r := newRouter(t, true)

	if w := do(r, http.MethodGet, "/surveys/not-a-uuid/heat-loss", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/surveys/"+uuid.NewString()+"/heat-loss", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListHistoryRejectsLimit(t *testing.T) {
	w := do(newRouter(t, true), http.MethodGet, "/surveys/"+uuid.NewString()+"/heat-loss/history?limit=500", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRecalculateWithoutQueue(t *testing.T) {
	w := do(newRouter(t, true), http.MethodPost, "/surveys/"+uuid.NewString()+"/heat-loss/recalculate", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRecalculateBatchReportsFailures(t *testing.T) {
	id := uuid.NewString()
	w := do(newRouter(t, true), http.MethodPost, "/heat-loss/recalculate", `{"surveyIds": ["`+id+`"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp transport.RecalculateBatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Error != "survey not found" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}

	if w := do(newRouter(t, true), http.MethodPost, "/heat-loss/recalculate", `{"surveyIds": []}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", w.Code)
	}
}
