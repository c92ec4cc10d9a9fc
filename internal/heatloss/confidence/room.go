package confidence

import "math"

// Component weights of the room rollup. External walls and glazing dominate
// real heat-loss variance, so their provenance dominates the room score.
const (
	weightGeometry      = 0.20
	weightExternalWalls = 0.40
	weightGlazing       = 0.30
	weightOther         = 0.10

	// missingExternalWallScore is forced when a room has no external surface.
	missingExternalWallScore = 20

	otherScoreUnheatedAdjacent = 60
	otherScoreDefault          = 80
)

// GlazingPolicy derives a glazing score for a room.
type GlazingPolicy func(externalWallScore int) int

// GlazingMirrorsExternalWalls is the approximation in force until glazing is
// captured as its own surface type: the glazing score equals the
// external-wall score.
var GlazingMirrorsExternalWalls GlazingPolicy = func(externalWallScore int) int {
	return externalWallScore
}

// RoomBreakdown exposes the four component scores behind a room score.
type RoomBreakdown struct {
	Geometry      int
	ExternalWalls int
	Glazing       int
	Other         int
}

// RoomScore is the result of RoomConfidence.
type RoomScore struct {
	Score     int
	Color     Color
	RiskFlags []RiskFlag
	Breakdown RoomBreakdown
}

// RoomConfidence rolls a room's geometry, wall, glazing and adjacency
// provenance up into one score. Surfaces belonging to other rooms are
// ignored.
func RoomConfidence(room Room, surfaces []Surface) RoomScore {
	var flags []RiskFlag

	geometry := FieldConfidence(room.GeometrySource, room.GeometryRecencyDays)
	if IsLowConfidence(geometry) {
		flags = append(flags, FlagGeometryAssumed)
	}

	external, externalFlags := externalWallScore(room.ID, surfaces)
	flags = append(flags, externalFlags...)

	glazing := GlazingMirrorsExternalWalls(external)
	if IsLowConfidence(glazing) {
		flags = append(flags, FlagGlazingAssumed)
	}

	other := otherScoreDefault
	if hasUnheatedAdjacent(room.ID, surfaces) {
		other = otherScoreUnheatedAdjacent
		flags = append(flags, FlagUnheatedAdjacentModel)
	}

	if room.AirChangeSource != "" && IsLowConfidence(FieldConfidence(room.AirChangeSource, nil)) {
		flags = append(flags, FlagACHAssumed)
	}

	weighted := float64(geometry)*weightGeometry +
		float64(external)*weightExternalWalls +
		float64(glazing)*weightGlazing +
		float64(other)*weightOther
	score := clampScore(int(math.Round(weighted)))

	return RoomScore{
		Score:     score,
		Color:     ConfidenceToColor(score),
		RiskFlags: normalizeFlags(flags),
		Breakdown: RoomBreakdown{
			Geometry:      geometry,
			ExternalWalls: external,
			Glazing:       glazing,
			Other:         other,
		},
	}
}

// externalWallScore averages field confidence over a room's external
// surfaces. Surfaces with an unrecognized classification count as external
// at the lowest trust.
func externalWallScore(roomID string, surfaces []Surface) (int, []RiskFlag) {
	var (
		sum         int
		count       int
		constructed = true
	)
	for _, s := range surfaces {
		if s.RoomID != roomID {
			continue
		}
		switch s.Classification {
		case SurfaceExternal:
			sum += FieldConfidence(s.Source, s.RecencyDays)
			count++
			if constructionAssumed(s) {
				constructed = false
			}
		case SurfacePartyWall, SurfaceUnheatedAdjacent, SurfaceInternal:
			continue
		default:
			sum += scoreAssumed
			count++
			constructed = false
		}
	}

	if count == 0 {
		return missingExternalWallScore, []RiskFlag{FlagMissingExternalWalls}
	}

	score := clampScore(int(math.Round(float64(sum) / float64(count))))
	if !constructed {
		return score, []RiskFlag{FlagWallConstructionAssumed}
	}
	return score, nil
}

// constructionAssumed reports whether an external surface's build-up was
// guessed rather than established.
func constructionAssumed(s Surface) bool {
	if !s.HasUValue() {
		return true
	}
	switch s.Source {
	case SourceAssumed, SourceTableLookup:
		return true
	case SourceLidarScan, SourceLaserMeasure, SourceThermalCamera, SourceBorescope,
		SourceManualMeasurement, SourceSatelliteImagery:
		return false
	default:
		return true
	}
}

func hasUnheatedAdjacent(roomID string, surfaces []Surface) bool {
	for _, s := range surfaces {
		if s.RoomID == roomID && s.Classification == SurfaceUnheatedAdjacent {
			return true
		}
	}
	return false
}

// SurfacesForRoom returns the surfaces owned by roomID, in input order.
func SurfacesForRoom(roomID string, surfaces []Surface) []Surface {
	out := make([]Surface, 0)
	for _, s := range surfaces {
		if s.RoomID == roomID {
			out = append(out, s)
		}
	}
	return out
}
