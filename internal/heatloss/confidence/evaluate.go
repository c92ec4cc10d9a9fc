package confidence

// orphanRoomName labels a summary synthesized for an unknown room id.
const orphanRoomName = "Unknown room"

// orphanRiskFlags is the flag set carried by a fallback summary. A room the
// survey never captured has no recorded envelope, so the recommender asks
// for a scan instead of offering nothing.
var orphanRiskFlags = []RiskFlag{FlagMissingExternalWalls}

// EvaluationInput is everything one evaluation pass reads.
type EvaluationInput struct {
	Rooms    []Room
	Surfaces []Surface
	Emitters []Emitter
	Losses   []RawRoomHeatLoss
}

// RoomEvaluation bundles a room summary with its recommendations.
type RoomEvaluation struct {
	Summary        RoomSummary
	Breakdown      RoomBreakdown
	Actions        []UpgradeAction
	NextBestAction string
}

// Evaluation is the complete engine output for one survey.
type Evaluation struct {
	Rooms            []RoomEvaluation
	ResultConfidence int
	ResultColor      Color
	TotalHeatLossW   float64
	Validation       Validation
}

// Evaluate runs every stage of the engine over one survey. Rooms are
// reported in input order, followed by any raw results that reference rooms
// not in the room list. Raw results sharing a room id are summed into one
// entry. An orphaned room is shown with confidence 0 but, having no computed
// score, is weighted at the neutral 50 in the whole-house confidence.
func Evaluate(in EvaluationInput) Evaluation {
	byRoom := make(map[string]int, len(in.Rooms))
	scores := make(map[string]RoomScore, len(in.Rooms))
	for _, r := range in.Rooms {
		rs := RoomConfidence(r, in.Surfaces)
		scores[r.ID] = rs
		byRoom[r.ID] = rs.Score
	}

	losses := mergeLosses(in.Losses)
	lossByRoom := make(map[string]RawRoomHeatLoss, len(losses))
	for _, l := range losses {
		lossByRoom[l.RoomID] = l
	}

	rooms := make([]RoomEvaluation, 0, len(in.Rooms)+len(losses))
	known := make(map[string]bool, len(in.Rooms))
	for _, r := range in.Rooms {
		known[r.ID] = true
		loss, ok := lossByRoom[r.ID]
		if !ok {
			loss = RawRoomHeatLoss{RoomID: r.ID}
		}
		loss.Adequacy = fillRatedOutput(r, in.Emitters, loss.Adequacy)
		rooms = append(rooms, evaluateRoom(SummarizeRoom(r, scores[r.ID], loss), scores[r.ID].Breakdown, in.Surfaces))
	}

	for _, l := range losses {
		if known[l.RoomID] {
			continue
		}
		known[l.RoomID] = true
		rooms = append(rooms, evaluateRoom(OrphanSummary(l), RoomBreakdown{}, in.Surfaces))
	}

	result := ResultConfidence(losses, byRoom)
	return Evaluation{
		Rooms:            rooms,
		ResultConfidence: result,
		ResultColor:      ConfidenceToColor(result),
		TotalHeatLossW:   TotalHeatLoss(losses),
		Validation:       ValidationStateFor(in.Rooms, in.Surfaces, byRoom),
	}
}

// InputValidation classifies a survey from its captured data alone. The
// validation state does not depend on heat-loss figures, so callers can
// check it before asking for them.
func InputValidation(in EvaluationInput) Validation {
	byRoom := make(map[string]int, len(in.Rooms))
	for _, r := range in.Rooms {
		byRoom[r.ID] = RoomConfidence(r, in.Surfaces).Score
	}
	return ValidationStateFor(in.Rooms, in.Surfaces, byRoom)
}

// SummarizeRoom builds the presentation view of a known room.
func SummarizeRoom(r Room, score RoomScore, loss RawRoomHeatLoss) RoomSummary {
	return RoomSummary{
		RoomID:     r.ID,
		Name:       r.Name,
		HeatLossW:  loss.TotalLossW,
		Confidence: score.Score,
		Color:      score.Color,
		RiskFlags:  score.RiskFlags,
		Adequacy:   ClassifyAdequacy(loss.Adequacy),
	}
}

// OrphanSummary synthesizes a summary for a raw result whose room is not in
// the room list: confidence 0, red, flagged as missing external walls.
func OrphanSummary(loss RawRoomHeatLoss) RoomSummary {
	flags := make([]RiskFlag, len(orphanRiskFlags))
	copy(flags, orphanRiskFlags)
	return RoomSummary{
		RoomID:     loss.RoomID,
		Name:       orphanRoomName,
		HeatLossW:  loss.TotalLossW,
		Confidence: 0,
		Color:      ColorRed,
		RiskFlags:  flags,
		Adequacy:   ClassifyAdequacy(loss.Adequacy),
		Orphaned:   true,
	}
}

func evaluateRoom(summary RoomSummary, breakdown RoomBreakdown, surfaces []Surface) RoomEvaluation {
	actions := UpgradeActions(summary.RoomID, summary.RiskFlags, surfaces)
	return RoomEvaluation{
		Summary:        summary,
		Breakdown:      breakdown,
		Actions:        actions,
		NextBestAction: NextBestActionMessage(summary.RiskFlags, actions),
	}
}

// fillRatedOutput supplies the rated emitter output for setpoints where the
// physics engine reported a requirement but no rating. The input map is not
// modified.
func fillRatedOutput(r Room, emitters []Emitter, adequacy map[FlowTemp]SetpointAdequacy) map[FlowTemp]SetpointAdequacy {
	if len(adequacy) == 0 {
		return adequacy
	}
	out := make(map[FlowTemp]SetpointAdequacy, len(adequacy))
	for ft, a := range adequacy {
		if a.RatedW == 0 && a.Adequate == nil && a.ShortfallW == nil && a.RequiredW > 0 {
			a.RatedW = RoomRatedOutput(r.ID, emitters, MeanWaterToAirDeltaT(ft, r.DesiredTempC))
		}
		out[ft] = a
	}
	return out
}

// mergeLosses folds raw results that share a room id into one, in order of
// first appearance. Losses are summed; for adequacy a later setpoint entry
// replaces an earlier one. The input is not modified.
func mergeLosses(losses []RawRoomHeatLoss) []RawRoomHeatLoss {
	out := make([]RawRoomHeatLoss, 0, len(losses))
	index := make(map[string]int, len(losses))
	for _, l := range losses {
		i, seen := index[l.RoomID]
		if !seen {
			index[l.RoomID] = len(out)
			out = append(out, l)
			continue
		}
		merged := out[i]
		merged.FabricLossW += l.FabricLossW
		merged.VentilationLossW += l.VentilationLossW
		merged.ThermalBridgingW += l.ThermalBridgingW
		merged.TotalLossW += l.TotalLossW
		if len(l.Adequacy) > 0 {
			adequacy := make(map[FlowTemp]SetpointAdequacy, len(merged.Adequacy)+len(l.Adequacy))
			for ft, a := range merged.Adequacy {
				adequacy[ft] = a
			}
			for ft, a := range l.Adequacy {
				adequacy[ft] = a
			}
			merged.Adequacy = adequacy
		}
		out[i] = merged
	}
	return out
}
