package confidence

import "math"

const (
	scoreDirectInstrument = 95
	scoreManual           = 70
	scoreRemoteImagery    = 50
	scoreTableLookup      = 40
	scoreAssumed          = 20

	// staleAfterDays is the age beyond which a reading starts losing trust.
	staleAfterDays = 365
	// penaltyPerYear is the fraction lost per year beyond the first.
	penaltyPerYear = 0.10
	// maxRecencyPenalty caps degradation at half the base score.
	maxRecencyPenalty = 0.50

	greenThreshold = 80
	amberThreshold = 50
)

// BaseScore is the undegraded trust score for a provenance tier.
func BaseScore(source SourceType) int {
	switch source {
	case SourceLidarScan, SourceLaserMeasure, SourceThermalCamera, SourceBorescope:
		return scoreDirectInstrument
	case SourceManualMeasurement:
		return scoreManual
	case SourceSatelliteImagery:
		return scoreRemoteImagery
	case SourceTableLookup:
		return scoreTableLookup
	case SourceAssumed:
		return scoreAssumed
	default:
		return scoreAssumed
	}
}

// RecencyPenalty returns the fraction of the base score lost for a value
// recencyDays old. Values up to a year old are not penalized.
func RecencyPenalty(recencyDays *int) float64 {
	if recencyDays == nil || *recencyDays <= staleAfterDays {
		return 0
	}
	yearsOverOne := float64(*recencyDays)/staleAfterDays - 1
	return math.Min(maxRecencyPenalty, penaltyPerYear*yearsOverOne)
}

// FieldConfidence scores a single value by provenance and age, in [0,100].
func FieldConfidence(source SourceType, recencyDays *int) int {
	base := float64(BaseScore(source))
	score := base * (1 - RecencyPenalty(recencyDays))
	return clampScore(int(math.Round(score)))
}

// ConfidenceToColor maps a score onto the traffic-light scale.
func ConfidenceToColor(score int) Color {
	switch {
	case score >= greenThreshold:
		return ColorGreen
	case score >= amberThreshold:
		return ColorAmber
	default:
		return ColorRed
	}
}

// IsLowConfidence reports whether score falls in the red band.
func IsLowConfidence(score int) bool {
	return score < amberThreshold
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
