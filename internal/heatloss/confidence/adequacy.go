package confidence

import "math"

// AdequacyOutcome classifies emitter sufficiency at one flow temperature.
type AdequacyOutcome string

const (
	AdequacyOK          AdequacyOutcome = "ok"
	AdequacyUpsize      AdequacyOutcome = "upsize"
	AdequacyMajorUpsize AdequacyOutcome = "major_upsize"
	AdequacyUnknown     AdequacyOutcome = "unknown"
)

// MajorUpsizeThresholdW separates swapping a panel size from re-engineering
// the emitter circuit. A shortfall of exactly this much is still an upsize.
const MajorUpsizeThresholdW = 500.0

const (
	// defaultReferenceDeltaT is the EN 442 rating condition (75/65/20 °C).
	defaultReferenceDeltaT = 50.0
	// radiatorExponent is the EN 442 output exponent for panel radiators.
	radiatorExponent = 1.3
)

// ClassifySetpoint classifies a single setpoint. present is false when the
// physics engine returned nothing for it. An explicit "not adequate" verdict
// is never reported as ok: without a positive shortfall it is unknown.
func ClassifySetpoint(a SetpointAdequacy, present bool) AdequacyOutcome {
	if !present {
		return AdequacyUnknown
	}
	if a.Adequate != nil && *a.Adequate {
		return AdequacyOK
	}

	shortfall, known := setpointShortfall(a)
	switch {
	case !known:
		return AdequacyUnknown
	case shortfall <= 0 && a.Adequate != nil:
		return AdequacyUnknown
	case shortfall <= 0:
		return AdequacyOK
	case shortfall > MajorUpsizeThresholdW:
		return AdequacyMajorUpsize
	default:
		return AdequacyUpsize
	}
}

// setpointShortfall prefers the reported shortfall and falls back to
// required minus rated output when either figure is present.
func setpointShortfall(a SetpointAdequacy) (float64, bool) {
	if a.ShortfallW != nil {
		return *a.ShortfallW, true
	}
	if a.RequiredW > 0 || a.RatedW > 0 {
		return a.RequiredW - a.RatedW, true
	}
	return 0, false
}

// ClassifyAdequacy classifies every tracked flow temperature independently.
func ClassifyAdequacy(bySetpoint map[FlowTemp]SetpointAdequacy) map[FlowTemp]AdequacyOutcome {
	out := make(map[FlowTemp]AdequacyOutcome, len(TrackedFlowTemps))
	for _, ft := range TrackedFlowTemps {
		a, ok := bySetpoint[ft]
		out[ft] = ClassifySetpoint(a, ok)
	}
	return out
}

// RatedOutputAt corrects an emitter's rated output to another mean
// water-to-air temperature difference.
func RatedOutputAt(e Emitter, deltaT float64) float64 {
	ref := e.ReferenceDeltaT
	if ref <= 0 {
		ref = defaultReferenceDeltaT
	}
	if deltaT <= 0 || e.RatedOutputW <= 0 {
		return 0
	}
	return e.RatedOutputW * math.Pow(deltaT/ref, radiatorExponent)
}

// RoomRatedOutput sums the corrected output of a room's emitters.
func RoomRatedOutput(roomID string, emitters []Emitter, deltaT float64) float64 {
	var total float64
	for _, e := range emitters {
		if e.RoomID == roomID {
			total += RatedOutputAt(e, deltaT)
		}
	}
	return total
}

// MeanWaterToAirDeltaT approximates ΔT for a flow temperature, assuming the
// conventional return drop for that flow temperature.
func MeanWaterToAirDeltaT(flow FlowTemp, roomTempC float64) float64 {
	drop := 5.0
	if flow >= Flow75 {
		drop = 10.0
	}
	mean := float64(flow) - drop/2
	return math.Max(0, mean-roomTempC)
}
