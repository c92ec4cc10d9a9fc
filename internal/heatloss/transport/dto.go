package transport

import (
	"time"

	"github.com/google/uuid"
)

// Requests

// EvaluateRequest carries a complete survey for stateless evaluation. When
// Results is empty the physics engine is asked for them.
type EvaluateRequest struct {
	Rooms    []RoomInput        `json:"rooms" validate:"dive"`
	Surfaces []SurfaceInput     `json:"surfaces" validate:"dive"`
	Emitters []EmitterInput     `json:"emitters" validate:"dive"`
	Results  []RawHeatLossInput `json:"results" validate:"dive"`
	Audit    []AuditEntry       `json:"auditTrail,omitempty" validate:"dive"`
	Design   *DesignConditions  `json:"designConditions,omitempty"`
	Strict   bool               `json:"strict"`
}

type RoomInput struct {
	ID                  string   `json:"id" validate:"required,max=100"`
	Name                string   `json:"name" validate:"max=200"`
	FloorAreaM2         float64  `json:"floorAreaM2"`
	VolumeM3            float64  `json:"volumeM3"`
	CeilingHeightM      float64  `json:"ceilingHeightM" validate:"gte=0"`
	GeometrySource      string   `json:"geometrySource" validate:"max=50"`
	GeometryRecencyDays *int     `json:"geometryRecencyDays,omitempty" validate:"omitempty,gte=0"`
	DesiredTempC        *float64 `json:"desiredTempC,omitempty" validate:"omitempty,gte=5,lte=30"`
	AirChangeSource     string   `json:"airChangeSource,omitempty" validate:"max=50"`
}

type SurfaceInput struct {
	ID               string   `json:"id" validate:"required,max=100"`
	RoomID           string   `json:"roomId" validate:"required,max=100"`
	Orientation      string   `json:"orientation" validate:"max=20"`
	AreaM2           float64  `json:"areaM2" validate:"gte=0"`
	ConstructionType string   `json:"constructionType" validate:"max=100"`
	MeasuredUValue   *float64 `json:"measuredUValue,omitempty" validate:"omitempty,gte=0"`
	CalculatedUValue *float64 `json:"calculatedUValue,omitempty" validate:"omitempty,gte=0"`
	Classification   string   `json:"classification" validate:"max=50"`
	Source           string   `json:"source" validate:"max=50"`
	RecencyDays      *int     `json:"recencyDays,omitempty" validate:"omitempty,gte=0"`
	ConfidenceTier   string   `json:"confidenceTier,omitempty" validate:"max=50"`
}

type EmitterInput struct {
	ID              string  `json:"id" validate:"required,max=100"`
	RoomID          string  `json:"roomId" validate:"required,max=100"`
	RatedOutputW    float64 `json:"ratedOutputW" validate:"gte=0"`
	ReferenceDeltaT float64 `json:"referenceDeltaT" validate:"gte=0"`
}

type RawHeatLossInput struct {
	RoomID           string          `json:"roomId" validate:"required,max=100"`
	FabricLossW      float64         `json:"fabricLossW"`
	VentilationLossW float64         `json:"ventilationLossW"`
	ThermalBridgingW float64         `json:"thermalBridgingW"`
	TotalLossW       float64         `json:"totalLossW"`
	Adequacy         []SetpointInput `json:"adequacy" validate:"dive"`
}

type SetpointInput struct {
	FlowTempC  int      `json:"flowTempC"`
	Adequate   *bool    `json:"adequate,omitempty"`
	RequiredW  float64  `json:"requiredW" validate:"gte=0"`
	RatedW     float64  `json:"ratedW" validate:"gte=0"`
	ShortfallW *float64 `json:"shortfallW,omitempty"`
}

// DesignConditions are forwarded to the physics engine.
type DesignConditions struct {
	OutdoorTempC      float64 `json:"outdoorTempC" validate:"gte=-40,lte=20"`
	AirChangesPerHour float64 `json:"airChangesPerHour" validate:"gte=0,lte=10"`
}

// AuditEntry records where one input value came from.
type AuditEntry struct {
	Field          string    `json:"field" validate:"required"`
	Value          string    `json:"value"`
	Source         string    `json:"source"`
	ConfidenceTier string    `json:"confidenceTier"`
	Timestamp      time.Time `json:"timestamp"`
	Notes          string    `json:"notes,omitempty"`
}

type FieldConfidenceRequest struct {
	Source      string `form:"source" validate:"required,max=50"`
	RecencyDays *int   `form:"recencyDays" validate:"omitempty,gte=0"`
}

type HistoryRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

type RecalculateBatchRequest struct {
	SurveyIDs []uuid.UUID `json:"surveyIds" validate:"required,min=1,max=200,unique"`
}

// Responses

type FieldConfidenceResponse struct {
	Source      string `json:"source"`
	RecencyDays *int   `json:"recencyDays,omitempty"`
	Score       int    `json:"score"`
	Color       string `json:"color"`
}

type EvaluationResponse struct {
	ID                 *uuid.UUID               `json:"id,omitempty"`
	SurveyID           *uuid.UUID               `json:"surveyId,omitempty"`
	ResultConfidence   int                      `json:"resultConfidence"`
	ResultColor        string                   `json:"resultColor"`
	TotalHeatLossW     float64                  `json:"totalHeatLossW"`
	ValidationState    string                   `json:"validationState"`
	ValidationReason   string                   `json:"validationReason"`
	IsFinal            bool                     `json:"isFinal"`
	LowConfidenceRooms []string                 `json:"lowConfidenceRooms"`
	Rooms              []RoomEvaluationResponse `json:"rooms"`
	AuditTrail         []AuditEntry             `json:"auditTrail,omitempty"`
	EvaluatedAt        time.Time                `json:"evaluatedAt"`
}

type RoomEvaluationResponse struct {
	RoomID         string                  `json:"roomId"`
	Name           string                  `json:"name"`
	HeatLossW      float64                 `json:"heatLossW"`
	Confidence     int                     `json:"confidence"`
	Color          string                  `json:"color"`
	RiskFlags      []string                `json:"riskFlags"`
	Adequacy       map[string]string       `json:"adequacy"`
	Orphaned       bool                    `json:"orphaned,omitempty"`
	Breakdown      RoomBreakdownResponse   `json:"breakdown"`
	Actions        []UpgradeActionResponse `json:"actions"`
	NextBestAction string                  `json:"nextBestAction"`
}

type RoomBreakdownResponse struct {
	Geometry      int `json:"geometry"`
	ExternalWalls int `json:"externalWalls"`
	Glazing       int `json:"glazing"`
	Other         int `json:"other"`
}

type UpgradeActionResponse struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Label            string   `json:"label"`
	Reason           string   `json:"reason"`
	EstimatedSeconds int      `json:"estimatedSeconds"`
	TargetFlags      []string `json:"targetFlags"`
	Priority         int      `json:"priority"`
}

type EvaluationHistoryResponse struct {
	Items []EvaluationSummaryResponse `json:"items"`
}

// EvaluationSummaryResponse is a snapshot without per-room detail.
type EvaluationSummaryResponse struct {
	ID               uuid.UUID `json:"id"`
	ResultConfidence int       `json:"resultConfidence"`
	ValidationState  string    `json:"validationState"`
	ValidationReason string    `json:"validationReason"`
	TotalHeatLossW   float64   `json:"totalHeatLossW"`
	EvaluatedAt      time.Time `json:"evaluatedAt"`
}

type RecalculateResponse struct {
	SurveyID uuid.UUID `json:"surveyId"`
	Status   string    `json:"status"`
}

type RecalculateBatchResponse struct {
	Results []RecalculateResult `json:"results"`
}

type RecalculateResult struct {
	SurveyID         uuid.UUID `json:"surveyId"`
	ValidationState  string    `json:"validationState,omitempty"`
	ResultConfidence *int      `json:"resultConfidence,omitempty"`
	Error            string    `json:"error,omitempty"`
}
