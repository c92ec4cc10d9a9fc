package service

import (
	"encoding/json"
	"fmt"

	"heatsurvey_backend/internal/heatloss/confidence"
	"heatsurvey_backend/internal/heatloss/repository"
	"heatsurvey_backend/internal/heatloss/transport"
)

func toRoomInputs(rows []repository.Room) []transport.RoomInput {
	out := make([]transport.RoomInput, 0, len(rows))
	for _, r := range rows {
		desired := r.DesiredTempC
		out = append(out, transport.RoomInput{
			ID:                  r.ID,
			Name:                r.Name,
			FloorAreaM2:         r.FloorAreaM2,
			VolumeM3:            r.VolumeM3,
			CeilingHeightM:      r.CeilingHeightM,
			GeometrySource:      r.GeometrySource,
			GeometryRecencyDays: r.GeometryRecencyDays,
			DesiredTempC:        &desired,
			AirChangeSource:     r.AirChangeSource,
		})
	}
	return out
}

func toSurfaceInputs(rows []repository.Surface) []transport.SurfaceInput {
	out := make([]transport.SurfaceInput, 0, len(rows))
	for _, s := range rows {
		out = append(out, transport.SurfaceInput{
			ID:               s.ID,
			RoomID:           s.RoomID,
			Orientation:      s.Orientation,
			AreaM2:           s.AreaM2,
			ConstructionType: s.ConstructionType,
			MeasuredUValue:   s.MeasuredUValue,
			CalculatedUValue: s.CalculatedUValue,
			Classification:   s.Classification,
			Source:           s.Source,
			RecencyDays:      s.RecencyDays,
			ConfidenceTier:   s.ConfidenceTier,
		})
	}
	return out
}

func toEmitterInputs(rows []repository.Emitter) []transport.EmitterInput {
	out := make([]transport.EmitterInput, 0, len(rows))
	for _, e := range rows {
		out = append(out, transport.EmitterInput{
			ID:              e.ID,
			RoomID:          e.RoomID,
			RatedOutputW:    e.RatedOutputW,
			ReferenceDeltaT: e.ReferenceDeltaT,
		})
	}
	return out
}

// fromSnapshot rebuilds the response stored in a snapshot.
func fromSnapshot(snap repository.Snapshot) (transport.EvaluationResponse, error) {
	var rooms []transport.RoomEvaluationResponse
	if len(snap.Rooms) > 0 {
		if err := json.Unmarshal(snap.Rooms, &rooms); err != nil {
			return transport.EvaluationResponse{}, fmt.Errorf("decode snapshot rooms: %w", err)
		}
	}
	var audit []transport.AuditEntry
	if len(snap.AuditTrail) > 0 {
		if err := json.Unmarshal(snap.AuditTrail, &audit); err != nil {
			return transport.EvaluationResponse{}, fmt.Errorf("decode snapshot audit trail: %w", err)
		}
	}
	if rooms == nil {
		rooms = []transport.RoomEvaluationResponse{}
	}

	low := []string{}
	if snap.ValidationState != string(confidence.StateIncomplete) {
		for _, r := range rooms {
			if !r.Orphaned && confidence.IsLowConfidence(r.Confidence) {
				low = append(low, r.RoomID)
			}
		}
	}

	id := snap.ID
	surveyID := snap.SurveyID
	return transport.EvaluationResponse{
		ID:                 &id,
		SurveyID:           &surveyID,
		ResultConfidence:   snap.Confidence,
		ResultColor:        string(confidence.ConfidenceToColor(snap.Confidence)),
		TotalHeatLossW:     snap.TotalHeatLossW,
		ValidationState:    snap.ValidationState,
		ValidationReason:   snap.ValidationReason,
		IsFinal:            snap.ValidationState == string(confidence.StateReady),
		LowConfidenceRooms: low,
		Rooms:              rooms,
		AuditTrail:         audit,
		EvaluatedAt:        snap.CreatedAt.UTC(),
	}, nil
}

func toSummary(snap repository.Snapshot) transport.EvaluationSummaryResponse {
	return transport.EvaluationSummaryResponse{
		ID:               snap.ID,
		ResultConfidence: snap.Confidence,
		ValidationState:  snap.ValidationState,
		ValidationReason: snap.ValidationReason,
		TotalHeatLossW:   snap.TotalHeatLossW,
		EvaluatedAt:      snap.CreatedAt.UTC(),
	}
}
