package service

import (
	"context"

	"github.com/google/uuid"

	"heatsurvey_backend/internal/heatloss/physics"
	"heatsurvey_backend/internal/heatloss/transport"
)

// PhysicsClient produces raw per-room heat losses.
type PhysicsClient interface {
	Calculate(ctx context.Context, req physics.Request) (*physics.Result, error)
}

// EvaluationCache holds the latest evaluation of each survey.
type EvaluationCache interface {
	Get(ctx context.Context, orgID, surveyID uuid.UUID) (*transport.EvaluationResponse, bool, error)
	Set(ctx context.Context, orgID, surveyID uuid.UUID, resp transport.EvaluationResponse) error
	Invalidate(ctx context.Context, orgID, surveyID uuid.UUID) error
}

// RecalculationEnqueuer schedules a background evaluation of a survey.
type RecalculationEnqueuer interface {
	EnqueueRecalculation(ctx context.Context, orgID, surveyID uuid.UUID) error
}
