package confidence

import (
	"reflect"
	"testing"
)

func uval(v float64) *float64 { return &v }

func measuredRoom(id string) Room {
	return Room{
		ID:             id,
		Name:           "Living room",
		FloorAreaM2:    20,
		VolumeM3:       50,
		CeilingHeightM: 2.5,
		GeometrySource: SourceLidarScan,
		DesiredTempC:   21,
	}
}

func externalWall(id, roomID string, source SourceType, u *float64) Surface {
	return Surface{
		ID:               id,
		RoomID:           roomID,
		Orientation:      "N",
		AreaM2:           10,
		ConstructionType: "cavity_filled",
		CalculatedUValue: u,
		Classification:   SurfaceExternal,
		Source:           source,
	}
}

func TestRoomConfidenceWeightedRollup(t *testing.T) {
	room := measuredRoom("r1")
	surfaces := []Surface{
		externalWall("w1", "r1", SourceManualMeasurement, uval(0.55)),
		externalWall("w2", "r1", SourceManualMeasurement, uval(0.55)),
	}

	got := RoomConfidence(room, surfaces)

	// 95*0.2 + 70*0.4 + 70*0.3 + 80*0.1
	if got.Score != 76 {
		t.Fatalf("expected score 76, got %d", got.Score)
	}
	if got.Color != ColorAmber {
		t.Fatalf("expected amber, got %s", got.Color)
	}
	if len(got.RiskFlags) != 0 {
		t.Fatalf("expected no flags, got %v", got.RiskFlags)
	}
	want := RoomBreakdown{Geometry: 95, ExternalWalls: 70, Glazing: 70, Other: 80}
	if got.Breakdown != want {
		t.Fatalf("expected breakdown %+v, got %+v", want, got.Breakdown)
	}
}

func TestRoomConfidenceGreenWithMixedInstruments(t *testing.T) {
	room := measuredRoom("r1")
	surfaces := []Surface{
		externalWall("w1", "r1", SourceThermalCamera, uval(0.3)),
		externalWall("w2", "r1", SourceManualMeasurement, uval(0.3)),
	}

	got := RoomConfidence(room, surfaces)
	if got.Breakdown.ExternalWalls != 83 {
		t.Fatalf("expected external wall score 83, got %d", got.Breakdown.ExternalWalls)
	}
	if got.Score != 85 || got.Color != ColorGreen {
		t.Fatalf("expected 85/green, got %d/%s", got.Score, got.Color)
	}
}

func TestRoomConfidenceMissingExternalWalls(t *testing.T) {
	room := measuredRoom("r1")
	room.GeometrySource = SourceAssumed

	surfaces := []Surface{
		{ID: "p1", RoomID: "r1", Classification: SurfacePartyWall, Source: SourceLidarScan, CalculatedUValue: uval(0.5)},
		{ID: "i1", RoomID: "r1", Classification: SurfaceInternal, Source: SourceLidarScan},
	}

	got := RoomConfidence(room, surfaces)

	wantFlags := []RiskFlag{FlagMissingExternalWalls, FlagGeometryAssumed, FlagGlazingAssumed}
	if !reflect.DeepEqual(got.RiskFlags, wantFlags) {
		t.Fatalf("expected flags %v, got %v", wantFlags, got.RiskFlags)
	}
	if got.Breakdown.ExternalWalls != 20 {
		t.Fatalf("expected forced external score 20, got %d", got.Breakdown.ExternalWalls)
	}
	// 20*0.2 + 20*0.4 + 20*0.3 + 80*0.1
	if got.Score != 26 || got.Color != ColorRed {
		t.Fatalf("expected 26/red, got %d/%s", got.Score, got.Color)
	}
}

func TestRoomConfidenceMissingExternalWallsAlwaysFlagged(t *testing.T) {
	room := measuredRoom("r1")
	others := []Surface{
		externalWall("w-other", "r2", SourceLidarScan, uval(0.2)),
		{ID: "u1", RoomID: "r1", Classification: SurfaceUnheatedAdjacent, Source: SourceLidarScan},
	}

	got := RoomConfidence(room, others)
	if !HasFlag(got.RiskFlags, FlagMissingExternalWalls) {
		t.Fatalf("expected MISSING_EXTERNAL_WALLS, got %v", got.RiskFlags)
	}
}

func TestRoomConfidenceWallConstructionAssumed(t *testing.T) {
	cases := []struct {
		name    string
		surface Surface
	}{
		{"no u-value", externalWall("w1", "r1", SourceManualMeasurement, nil)},
		{"assumed provenance", externalWall("w1", "r1", SourceAssumed, uval(1.5))},
		{"table lookup", externalWall("w1", "r1", SourceTableLookup, uval(1.5))},
		{"unknown provenance", externalWall("w1", "r1", SourceUnknown, uval(1.5))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RoomConfidence(measuredRoom("r1"), []Surface{tc.surface})
			if !HasFlag(got.RiskFlags, FlagWallConstructionAssumed) {
				t.Fatalf("expected WALL_CONSTRUCTION_ASSUMED, got %v", got.RiskFlags)
			}
		})
	}
}

func TestRoomConfidenceMeasuredUValueSatisfiesConstruction(t *testing.T) {
	wall := externalWall("w1", "r1", SourceBorescope, nil)
	wall.MeasuredUValue = uval(0.35)

	got := RoomConfidence(measuredRoom("r1"), []Surface{wall})
	if HasFlag(got.RiskFlags, FlagWallConstructionAssumed) {
		t.Fatalf("measured U-value should satisfy construction, got %v", got.RiskFlags)
	}
}

func TestRoomConfidenceAssumedWallsDragGlazing(t *testing.T) {
	got := RoomConfidence(measuredRoom("r1"), []Surface{
		externalWall("w1", "r1", SourceAssumed, uval(2.1)),
	})

	wantFlags := []RiskFlag{FlagWallConstructionAssumed, FlagGlazingAssumed}
	if !reflect.DeepEqual(got.RiskFlags, wantFlags) {
		t.Fatalf("expected flags %v, got %v", wantFlags, got.RiskFlags)
	}
	if got.Breakdown.Glazing != got.Breakdown.ExternalWalls {
		t.Fatalf("glazing %d should mirror external walls %d", got.Breakdown.Glazing, got.Breakdown.ExternalWalls)
	}
	// 95*0.2 + 20*0.4 + 20*0.3 + 80*0.1
	if got.Score != 41 {
		t.Fatalf("expected 41, got %d", got.Score)
	}
}

func TestRoomConfidenceUnheatedAdjacent(t *testing.T) {
	surfaces := []Surface{
		externalWall("w1", "r1", SourceManualMeasurement, uval(0.5)),
		{ID: "g1", RoomID: "r1", Classification: SurfaceUnheatedAdjacent, Source: SourceManualMeasurement},
	}

	got := RoomConfidence(measuredRoom("r1"), surfaces)
	if got.Breakdown.Other != 60 {
		t.Fatalf("expected other score 60, got %d", got.Breakdown.Other)
	}
	if got.Score != 74 {
		t.Fatalf("expected 74, got %d", got.Score)
	}
	if !reflect.DeepEqual(got.RiskFlags, []RiskFlag{FlagUnheatedAdjacentModel}) {
		t.Fatalf("expected only UNHEATED_ADJACENT_MODEL, got %v", got.RiskFlags)
	}
}

func TestRoomConfidenceUnknownClassificationIsLowestTrust(t *testing.T) {
	odd := externalWall("w1", "r1", SourceLidarScan, uval(0.2))
	odd.Classification = ParseSurfaceClass("conservatory")

	got := RoomConfidence(measuredRoom("r1"), []Surface{odd})
	if got.Breakdown.ExternalWalls != 20 {
		t.Fatalf("expected lowest trust 20, got %d", got.Breakdown.ExternalWalls)
	}
	if !HasFlag(got.RiskFlags, FlagWallConstructionAssumed) {
		t.Fatalf("expected WALL_CONSTRUCTION_ASSUMED, got %v", got.RiskFlags)
	}
	if HasFlag(got.RiskFlags, FlagMissingExternalWalls) {
		t.Fatal("unknown classification should not count as missing walls")
	}
}

func TestRoomConfidenceAirChangeProvenance(t *testing.T) {
	room := measuredRoom("r1")
	surfaces := []Surface{externalWall("w1", "r1", SourceManualMeasurement, uval(0.5))}

	before := RoomConfidence(room, surfaces)
	room.AirChangeSource = SourceAssumed
	after := RoomConfidence(room, surfaces)

	if !HasFlag(after.RiskFlags, FlagACHAssumed) {
		t.Fatalf("expected ACH_ASSUMED, got %v", after.RiskFlags)
	}
	if before.Score != after.Score {
		t.Fatalf("airtightness provenance must not move the score: %d vs %d", before.Score, after.Score)
	}
}

func TestRoomConfidenceIsDeterministic(t *testing.T) {
	room := measuredRoom("r1")
	room.GeometryRecencyDays = days(900)
	surfaces := []Surface{
		externalWall("w1", "r1", SourceTableLookup, nil),
		externalWall("w2", "r1", SourceSatelliteImagery, uval(1.0)),
		{ID: "u1", RoomID: "r1", Classification: SurfaceUnheatedAdjacent},
	}

	first := RoomConfidence(room, surfaces)
	for i := 0; i < 50; i++ {
		if next := RoomConfidence(room, surfaces); !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, next)
		}
	}
}
