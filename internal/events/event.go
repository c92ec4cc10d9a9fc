// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"github.com/google/uuid"

	"heatsurvey_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Heat-Loss Domain Events
// =============================================================================

// HeatLossEvaluated is published after an evaluation snapshot is stored.
type HeatLossEvaluated struct {
	BaseEvent
	EvaluationID     uuid.UUID `json:"evaluationId"`
	SurveyID         uuid.UUID `json:"surveyId"`
	OrganizationID   uuid.UUID `json:"organizationId"`
	ValidationState  string    `json:"validationState"`
	ResultConfidence int       `json:"resultConfidence"`
	TotalHeatLossW   float64   `json:"totalHeatLossW"`
	RoomCount        int       `json:"roomCount"`
}

func (e HeatLossEvaluated) EventName() string { return "heatloss.evaluated" }

// ValidationStateChanged is published when a survey moves between
// INCOMPLETE, PROVISIONAL and READY. From is empty on the first evaluation.
type ValidationStateChanged struct {
	BaseEvent
	SurveyID       uuid.UUID `json:"surveyId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Reason         string    `json:"reason"`
}

func (e ValidationStateChanged) EventName() string { return "heatloss.validation_state.changed" }
