// Package confidence scores how far a heat-loss result can be trusted.
//
// Everything in this package is a pure function of its arguments: no I/O,
// no clock, no shared state. Callers may invoke it from any goroutine.
package confidence

import "strings"

// SourceType is the provenance of a measured or assumed value.
type SourceType string

const (
	SourceLidarScan         SourceType = "lidar_scan"
	SourceLaserMeasure      SourceType = "laser_measure"
	SourceThermalCamera     SourceType = "thermal_camera"
	SourceBorescope         SourceType = "borescope"
	SourceManualMeasurement SourceType = "manual_measurement"
	SourceSatelliteImagery  SourceType = "satellite_imagery"
	SourceTableLookup       SourceType = "table_lookup"
	SourceAssumed           SourceType = "assumed"
	// SourceUnknown is any token outside the closed set. It is scored as an
	// assumption.
	SourceUnknown SourceType = "unknown"
)

var knownSources = map[SourceType]struct{}{
	SourceLidarScan:         {},
	SourceLaserMeasure:      {},
	SourceThermalCamera:     {},
	SourceBorescope:         {},
	SourceManualMeasurement: {},
	SourceSatelliteImagery:  {},
	SourceTableLookup:       {},
	SourceAssumed:           {},
}

// ParseSourceType normalizes a wire token. Unrecognized tokens become
// SourceUnknown.
func ParseSourceType(raw string) SourceType {
	s := SourceType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownSources[s]; ok {
		return s
	}
	return SourceUnknown
}

// IsKnown reports whether s is a member of the closed provenance set.
func (s SourceType) IsKnown() bool {
	_, ok := knownSources[s]
	return ok
}

// SurfaceClass classifies what is on the other side of a surface.
type SurfaceClass string

const (
	SurfaceExternal         SurfaceClass = "EXTERNAL"
	SurfacePartyWall        SurfaceClass = "PARTY_WALL"
	SurfaceUnheatedAdjacent SurfaceClass = "UNHEATED_ADJACENT"
	SurfaceInternal         SurfaceClass = "INTERNAL"
	SurfaceUnknown          SurfaceClass = "UNKNOWN"
)

// ParseSurfaceClass normalizes a wire token. Unrecognized tokens become
// SurfaceUnknown.
func ParseSurfaceClass(raw string) SurfaceClass {
	switch c := SurfaceClass(strings.ToUpper(strings.TrimSpace(raw))); c {
	case SurfaceExternal, SurfacePartyWall, SurfaceUnheatedAdjacent, SurfaceInternal:
		return c
	default:
		return SurfaceUnknown
	}
}

// RiskFlag names a reason a room's heat-loss figure should be treated with
// caution. Flags are derived on every evaluation and never stored as truth.
type RiskFlag string

const (
	FlagGeometryAssumed         RiskFlag = "GEOMETRY_ASSUMED"
	FlagWallConstructionAssumed RiskFlag = "WALL_CONSTRUCTION_ASSUMED"
	FlagGlazingAssumed          RiskFlag = "GLAZING_ASSUMED"
	FlagUnheatedAdjacentModel   RiskFlag = "UNHEATED_ADJACENT_MODEL"
	FlagACHAssumed              RiskFlag = "ACH_ASSUMED"
	FlagMissingExternalWalls    RiskFlag = "MISSING_EXTERNAL_WALLS"
)

// flagOrder is the canonical emission order for flag sets.
var flagOrder = []RiskFlag{
	FlagMissingExternalWalls,
	FlagGeometryAssumed,
	FlagWallConstructionAssumed,
	FlagGlazingAssumed,
	FlagUnheatedAdjacentModel,
	FlagACHAssumed,
}

// normalizeFlags de-duplicates flags and returns them in canonical order.
func normalizeFlags(flags []RiskFlag) []RiskFlag {
	seen := make(map[RiskFlag]bool, len(flags))
	for _, f := range flags {
		seen[f] = true
	}
	out := make([]RiskFlag, 0, len(seen))
	for _, f := range flagOrder {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out
}

// HasFlag reports whether flags contains f.
func HasFlag(flags []RiskFlag, f RiskFlag) bool {
	for _, candidate := range flags {
		if candidate == f {
			return true
		}
	}
	return false
}

// Color is the traffic-light rendering of a score.
type Color string

const (
	ColorGreen Color = "green"
	ColorAmber Color = "amber"
	ColorRed   Color = "red"
)

// Room is a surveyed space.
type Room struct {
	ID                  string
	Name                string
	FloorAreaM2         float64
	VolumeM3            float64
	CeilingHeightM      float64
	GeometrySource      SourceType
	GeometryRecencyDays *int
	DesiredTempC        float64
	// AirChangeSource is optional. When empty the airtightness provenance
	// is not assessed.
	AirChangeSource SourceType
}

// Surface is a wall, floor or ceiling element belonging to a room.
type Surface struct {
	ID               string
	RoomID           string
	Orientation      string
	AreaM2           float64
	ConstructionType string
	MeasuredUValue   *float64
	CalculatedUValue *float64
	Classification   SurfaceClass
	Source           SourceType
	RecencyDays      *int
	ConfidenceTier   string
}

// HasUValue reports whether either U-value is present.
func (s Surface) HasUValue() bool {
	return s.MeasuredUValue != nil || s.CalculatedUValue != nil
}

// Emitter is a radiator or other heat emitter.
type Emitter struct {
	ID           string
	RoomID       string
	RatedOutputW float64
	// ReferenceDeltaT is the mean water-to-air temperature difference the
	// rated output was measured at. Zero means the EN 442 default of 50 K.
	ReferenceDeltaT float64
}

// FlowTemp is a design flow temperature in °C.
type FlowTemp int

const (
	Flow45 FlowTemp = 45
	Flow55 FlowTemp = 55
	Flow75 FlowTemp = 75
)

// TrackedFlowTemps are the setpoints every summary reports on.
var TrackedFlowTemps = []FlowTemp{Flow45, Flow55, Flow75}

// SetpointAdequacy is the physics engine's emitter verdict at one flow
// temperature.
type SetpointAdequacy struct {
	Adequate   *bool
	RequiredW  float64
	RatedW     float64
	ShortfallW *float64
}

// RawRoomHeatLoss is the physics engine's output for one room. RoomID may
// reference a room that is not in the current room list.
type RawRoomHeatLoss struct {
	RoomID           string
	FabricLossW      float64
	VentilationLossW float64
	ThermalBridgingW float64
	TotalLossW       float64
	Adequacy         map[FlowTemp]SetpointAdequacy
}

// RoomSummary is the presentation-ready view of one room.
type RoomSummary struct {
	RoomID     string
	Name       string
	HeatLossW  float64
	Confidence int
	Color      Color
	RiskFlags  []RiskFlag
	Adequacy   map[FlowTemp]AdequacyOutcome
	// Orphaned marks a summary synthesized for a raw result whose room is
	// not in the room list.
	Orphaned bool
}
