package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskHeatLossRecalculate = "heatloss.recalculate"

type HeatLossRecalculatePayload struct {
	SurveyID       string `json:"surveyId"`
	OrganizationID string `json:"organizationId"`
}

// IDs parses both identifiers.
func (p HeatLossRecalculatePayload) IDs() (orgID, surveyID uuid.UUID, err error) {
	orgID, err = uuid.Parse(p.OrganizationID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("organization id: %w", err)
	}
	surveyID, err = uuid.Parse(p.SurveyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("survey id: %w", err)
	}
	return orgID, surveyID, nil
}

func NewHeatLossRecalculateTask(payload HeatLossRecalculatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHeatLossRecalculate, data), nil
}

func ParseHeatLossRecalculatePayload(task *asynq.Task) (HeatLossRecalculatePayload, error) {
	var payload HeatLossRecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HeatLossRecalculatePayload{}, err
	}
	return payload, nil
}
