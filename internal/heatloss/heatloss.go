// Package heatloss provides the heat-loss confidence bounded context.
// This file defines the public interfaces exposed to other domains.
package heatloss

import (
	"context"

	"github.com/google/uuid"

	"heatsurvey_backend/internal/heatloss/service"
)

// Recalculator is what background workers need to re-evaluate a survey.
type Recalculator interface {
	Recalculate(ctx context.Context, orgID, surveyID uuid.UUID) error
}

var _ Recalculator = (*service.Service)(nil)
