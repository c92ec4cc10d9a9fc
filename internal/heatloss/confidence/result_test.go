package confidence

import "testing"

func TestResultConfidenceSingleRoomIsThatRoom(t *testing.T) {
	losses := []RawRoomHeatLoss{{RoomID: "r1", TotalLossW: 1234}}
	if got := ResultConfidence(losses, map[string]int{"r1": 73}); got != 73 {
		t.Fatalf("expected 73, got %d", got)
	}
}

func TestResultConfidenceWeightedByHeatLoss(t *testing.T) {
	losses := []RawRoomHeatLoss{
		{RoomID: "small", TotalLossW: 1000},
		{RoomID: "big", TotalLossW: 3000},
	}
	got := ResultConfidence(losses, map[string]int{"small": 90, "big": 30})
	if got != 45 {
		t.Fatalf("expected 45, got %d", got)
	}
}

func TestResultConfidenceMissingRoomIsNeutral(t *testing.T) {
	losses := []RawRoomHeatLoss{
		{RoomID: "a", TotalLossW: 1000},
		{RoomID: "ghost", TotalLossW: 1000},
	}
	if got := ResultConfidence(losses, map[string]int{"a": 80}); got != 65 {
		t.Fatalf("expected 65, got %d", got)
	}
}

func TestResultConfidenceZeroTotal(t *testing.T) {
	if got := ResultConfidence(nil, nil); got != 0 {
		t.Fatalf("expected 0 for no rooms, got %d", got)
	}
	losses := []RawRoomHeatLoss{{RoomID: "a"}, {RoomID: "b"}}
	if got := ResultConfidence(losses, map[string]int{"a": 90, "b": 90}); got != 0 {
		t.Fatalf("expected 0 for zero total, got %d", got)
	}
}

func TestTotalHeatLoss(t *testing.T) {
	losses := []RawRoomHeatLoss{{TotalLossW: 800.5}, {TotalLossW: 199.5}}
	if got := TotalHeatLoss(losses); got != 1000 {
		t.Fatalf("expected 1000, got %v", got)
	}
}
