package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"heatsurvey_backend/internal/heatloss/service"
	"heatsurvey_backend/internal/heatloss/transport"
	"heatsurvey_backend/platform/httpkit"
	"heatsurvey_backend/platform/validator"
)

// Handler handles HTTP requests for heat-loss evaluation.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSurveyID  = "invalid survey id"
)

// New creates a new heat-loss handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// FieldConfidence scores a single captured value.
// GET /api/v1/heat-loss/field-confidence
func (h *Handler) FieldConfidence(c *gin.Context) {
	var req transport.FieldConfidenceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	httpkit.OK(c, h.svc.FieldConfidence(req))
}

// Evaluate scores a survey posted in full. Nothing is stored.
// POST /api/v1/heat-loss/evaluate
func (h *Handler) Evaluate(c *gin.Context) {
	var req transport.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	result, err := h.svc.EvaluatePayload(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// EvaluateSurvey evaluates a stored survey and records a snapshot.
// POST /api/v1/surveys/:id/heat-loss/evaluate
func (h *Handler) EvaluateSurvey(c *gin.Context) {
	tenantID, surveyID, ok := h.surveyScope(c)
	if !ok {
		return
	}

	result, err := h.svc.EvaluateSurvey(c.Request.Context(), tenantID, surveyID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetLatest returns the most recent evaluation of a survey.
// GET /api/v1/surveys/:id/heat-loss
func (h *Handler) GetLatest(c *gin.Context) {
	tenantID, surveyID, ok := h.surveyScope(c)
	if !ok {
		return
	}

	result, err := h.svc.GetLatest(c.Request.Context(), tenantID, surveyID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListHistory lists stored evaluations of a survey.
// GET /api/v1/surveys/:id/heat-loss/history
func (h *Handler) ListHistory(c *gin.Context) {
	var req transport.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	tenantID, surveyID, ok := h.surveyScope(c)
	if !ok {
		return
	}

	result, err := h.svc.ListHistory(c.Request.Context(), tenantID, surveyID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Recalculate schedules a background evaluation.
// POST /api/v1/surveys/:id/heat-loss/recalculate
func (h *Handler) Recalculate(c *gin.Context) {
	tenantID, surveyID, ok := h.surveyScope(c)
	if !ok {
		return
	}

	result, err := h.svc.EnqueueRecalculation(c.Request.Context(), tenantID, surveyID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Accepted(c, result)
}

// RecalculateBatch evaluates several surveys synchronously.
// POST /api/v1/admin/heat-loss/recalculate
func (h *Handler) RecalculateBatch(c *gin.Context) {
	var req transport.RecalculateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	httpkit.OK(c, h.svc.RecalculateMany(c.Request.Context(), tenantID, req.SurveyIDs))
}

func (h *Handler) surveyScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSurveyID, nil)
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, surveyID, true
}
