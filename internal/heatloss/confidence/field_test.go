package confidence

import "testing"

func days(n int) *int { return &n }

func TestFieldConfidenceBaseScores(t *testing.T) {
	cases := []struct {
		source SourceType
		want   int
	}{
		{SourceLidarScan, 95},
		{SourceLaserMeasure, 95},
		{SourceThermalCamera, 95},
		{SourceBorescope, 95},
		{SourceManualMeasurement, 70},
		{SourceSatelliteImagery, 50},
		{SourceTableLookup, 40},
		{SourceAssumed, 20},
		{SourceUnknown, 20},
		{SourceType("drone_guess"), 20},
	}

	for _, tc := range cases {
		if got := FieldConfidence(tc.source, nil); got != tc.want {
			t.Errorf("FieldConfidence(%q, nil) = %d, want %d", tc.source, got, tc.want)
		}
	}
}

func TestFieldConfidenceRecencyPenalty(t *testing.T) {
	cases := []struct {
		name   string
		source SourceType
		age    *int
		want   int
	}{
		{"fresh", SourceManualMeasurement, days(0), 70},
		{"exactly one year", SourceManualMeasurement, days(365), 70},
		{"two years", SourceManualMeasurement, days(730), 63},
		{"three years", SourceManualMeasurement, days(1095), 56},
		{"capped at half", SourceLidarScan, days(365 * 40), 48},
		{"assumed capped", SourceAssumed, days(5000), 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FieldConfidence(tc.source, tc.age); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestFieldConfidenceAgeNeverDegradesBelowHalf(t *testing.T) {
	sources := []SourceType{
		SourceLidarScan, SourceManualMeasurement, SourceSatelliteImagery,
		SourceTableLookup, SourceAssumed, SourceUnknown,
	}
	for _, source := range sources {
		fresh := FieldConfidence(source, days(0))
		old := FieldConfidence(source, days(730))
		if old > fresh {
			t.Errorf("%s: 730-day score %d exceeds fresh score %d", source, old, fresh)
		}
		ancient := FieldConfidence(source, days(100000))
		if ancient*2 < BaseScore(source)-1 {
			t.Errorf("%s: ancient score %d degraded below half of base %d", source, ancient, BaseScore(source))
		}
	}
}

func TestConfidenceToColorBoundaries(t *testing.T) {
	for score := 0; score <= 100; score++ {
		got := ConfidenceToColor(score)
		var want Color
		switch {
		case score >= 80:
			want = ColorGreen
		case score >= 50:
			want = ColorAmber
		default:
			want = ColorRed
		}
		if got != want {
			t.Fatalf("ConfidenceToColor(%d) = %s, want %s", score, got, want)
		}
	}

	if ConfidenceToColor(79) != ColorAmber || ConfidenceToColor(80) != ColorGreen {
		t.Fatal("green boundary must sit exactly at 80")
	}
	if ConfidenceToColor(49) != ColorRed || ConfidenceToColor(50) != ColorAmber {
		t.Fatal("amber boundary must sit exactly at 50")
	}
}

func TestParseSourceTypeFallsBackToUnknown(t *testing.T) {
	if got := ParseSourceType("  LiDAR_Scan "); got != SourceLidarScan {
		t.Fatalf("expected lidar_scan, got %q", got)
	}
	if got := ParseSourceType("guesswork"); got != SourceUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
	if SourceUnknown.IsKnown() {
		t.Fatal("unknown must not be part of the closed set")
	}
}
