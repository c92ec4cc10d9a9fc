package transport

import (
	"strconv"
	"time"

	"heatsurvey_backend/internal/heatloss/confidence"
	"heatsurvey_backend/platform/sanitize"
)

const (
	defaultDesiredTempC = 21.0

	maxNameRunes  = 200
	maxValueRunes = 200
	maxNoteRunes  = 2000
)

// ToEvaluationInput converts a request into engine input. Unknown source and
// classification tokens are kept as their lowest-trust values.
func ToEvaluationInput(req EvaluateRequest) confidence.EvaluationInput {
	in := confidence.EvaluationInput{
		Rooms:    make([]confidence.Room, 0, len(req.Rooms)),
		Surfaces: make([]confidence.Surface, 0, len(req.Surfaces)),
		Emitters: make([]confidence.Emitter, 0, len(req.Emitters)),
		Losses:   make([]confidence.RawRoomHeatLoss, 0, len(req.Results)),
	}
	for _, r := range req.Rooms {
		in.Rooms = append(in.Rooms, ToRoom(r))
	}
	for _, s := range req.Surfaces {
		in.Surfaces = append(in.Surfaces, ToSurface(s))
	}
	for _, e := range req.Emitters {
		in.Emitters = append(in.Emitters, confidence.Emitter{
			ID:              e.ID,
			RoomID:          e.RoomID,
			RatedOutputW:    e.RatedOutputW,
			ReferenceDeltaT: e.ReferenceDeltaT,
		})
	}
	for _, l := range req.Results {
		in.Losses = append(in.Losses, ToRawHeatLoss(l))
	}
	return in
}

func ToRoom(r RoomInput) confidence.Room {
	desired := defaultDesiredTempC
	if r.DesiredTempC != nil {
		desired = *r.DesiredTempC
	}
	room := confidence.Room{
		ID:                  r.ID,
		Name:                sanitize.Label(r.Name, maxNameRunes),
		FloorAreaM2:         r.FloorAreaM2,
		VolumeM3:            r.VolumeM3,
		CeilingHeightM:      r.CeilingHeightM,
		GeometrySource:      confidence.ParseSourceType(r.GeometrySource),
		GeometryRecencyDays: r.GeometryRecencyDays,
		DesiredTempC:        desired,
	}
	if r.AirChangeSource != "" {
		room.AirChangeSource = confidence.ParseSourceType(r.AirChangeSource)
	}
	return room
}

func ToSurface(s SurfaceInput) confidence.Surface {
	return confidence.Surface{
		ID:               s.ID,
		RoomID:           s.RoomID,
		Orientation:      s.Orientation,
		AreaM2:           s.AreaM2,
		ConstructionType: s.ConstructionType,
		MeasuredUValue:   s.MeasuredUValue,
		CalculatedUValue: s.CalculatedUValue,
		Classification:   confidence.ParseSurfaceClass(s.Classification),
		Source:           confidence.ParseSourceType(s.Source),
		RecencyDays:      s.RecencyDays,
		ConfidenceTier:   s.ConfidenceTier,
	}
}

// ToRawHeatLoss converts one physics result. Setpoints outside the tracked
// flow temperatures are dropped.
func ToRawHeatLoss(l RawHeatLossInput) confidence.RawRoomHeatLoss {
	out := confidence.RawRoomHeatLoss{
		RoomID:           l.RoomID,
		FabricLossW:      l.FabricLossW,
		VentilationLossW: l.VentilationLossW,
		ThermalBridgingW: l.ThermalBridgingW,
		TotalLossW:       l.TotalLossW,
	}
	if len(l.Adequacy) == 0 {
		return out
	}
	out.Adequacy = make(map[confidence.FlowTemp]confidence.SetpointAdequacy, len(l.Adequacy))
	for _, sp := range l.Adequacy {
		ft := confidence.FlowTemp(sp.FlowTempC)
		if !isTrackedFlowTemp(ft) {
			continue
		}
		out.Adequacy[ft] = confidence.SetpointAdequacy{
			Adequate:   sp.Adequate,
			RequiredW:  sp.RequiredW,
			RatedW:     sp.RatedW,
			ShortfallW: sp.ShortfallW,
		}
	}
	return out
}

// FromEvaluation renders engine output.
func FromEvaluation(ev confidence.Evaluation, audit []AuditEntry, evaluatedAt time.Time) EvaluationResponse {
	rooms := make([]RoomEvaluationResponse, 0, len(ev.Rooms))
	for _, r := range ev.Rooms {
		rooms = append(rooms, fromRoomEvaluation(r))
	}
	low := ev.Validation.LowConfidenceRooms
	if low == nil {
		low = []string{}
	}
	return EvaluationResponse{
		ResultConfidence:   ev.ResultConfidence,
		ResultColor:        string(ev.ResultColor),
		TotalHeatLossW:     ev.TotalHeatLossW,
		ValidationState:    string(ev.Validation.State),
		ValidationReason:   ev.Validation.Reason,
		IsFinal:            ev.Validation.IsFinal(),
		LowConfidenceRooms: low,
		Rooms:              rooms,
		AuditTrail:         audit,
		EvaluatedAt:        evaluatedAt.UTC(),
	}
}

func fromRoomEvaluation(r confidence.RoomEvaluation) RoomEvaluationResponse {
	s := r.Summary
	adequacy := make(map[string]string, len(s.Adequacy))
	for ft, outcome := range s.Adequacy {
		adequacy[strconv.Itoa(int(ft))] = string(outcome)
	}
	actions := make([]UpgradeActionResponse, 0, len(r.Actions))
	for _, a := range r.Actions {
		actions = append(actions, UpgradeActionResponse{
			ID:               a.ID,
			Type:             string(a.Type),
			Label:            a.Label,
			Reason:           a.Reason,
			EstimatedSeconds: a.EstimatedSeconds,
			TargetFlags:      flagStrings(a.TargetFlags),
			Priority:         a.Priority,
		})
	}
	return RoomEvaluationResponse{
		RoomID:     s.RoomID,
		Name:       s.Name,
		HeatLossW:  s.HeatLossW,
		Confidence: s.Confidence,
		Color:      string(s.Color),
		RiskFlags:  flagStrings(s.RiskFlags),
		Adequacy:   adequacy,
		Orphaned:   s.Orphaned,
		Breakdown: RoomBreakdownResponse{
			Geometry:      r.Breakdown.Geometry,
			ExternalWalls: r.Breakdown.ExternalWalls,
			Glazing:       r.Breakdown.Glazing,
			Other:         r.Breakdown.Other,
		},
		Actions:        actions,
		NextBestAction: r.NextBestAction,
	}
}

func flagStrings(flags []confidence.RiskFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, string(f))
	}
	return out
}

// CleanAudit strips markup from the free-text parts of an audit trail. The
// input is not modified.
func CleanAudit(entries []AuditEntry) []AuditEntry {
	if entries == nil {
		return nil
	}
	out := make([]AuditEntry, len(entries))
	for i, e := range entries {
		e.Field = sanitize.Label(e.Field, maxNameRunes)
		e.Value = sanitize.Label(e.Value, maxValueRunes)
		e.Source = sanitize.Label(e.Source, maxNameRunes)
		e.ConfidenceTier = sanitize.Label(e.ConfidenceTier, maxNameRunes)
		e.Notes = sanitize.Note(e.Notes, maxNoteRunes)
		out[i] = e
	}
	return out
}

func isTrackedFlowTemp(ft confidence.FlowTemp) bool {
	for _, tracked := range confidence.TrackedFlowTemps {
		if ft == tracked {
			return true
		}
	}
	return false
}
