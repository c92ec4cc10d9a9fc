package confidence

import (
	"strings"
	"testing"
)

func rooms(ids ...string) []Room {
	out := make([]Room, 0, len(ids))
	for _, id := range ids {
		out = append(out, Room{ID: id, Name: id, FloorAreaM2: 12, VolumeM3: 30})
	}
	return out
}

func TestValidationStateNoRooms(t *testing.T) {
	got := ValidationStateFor([]Room{}, []Surface{}, map[string]int{})
	if got.State != StateIncomplete {
		t.Fatalf("expected INCOMPLETE, got %s", got.State)
	}
	if got.IsFinal() {
		t.Fatal("INCOMPLETE must not be final")
	}
}

func TestValidationStateInvalidGeometryBeatsConfidence(t *testing.T) {
	cases := []struct {
		name  string
		patch func(*Room)
	}{
		{"zero floor area", func(r *Room) { r.FloorAreaM2 = 0 }},
		{"negative volume", func(r *Room) { r.VolumeM3 = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs := rooms("a", "b", "c")
			tc.patch(&rs[1])
			conf := map[string]int{"a": 95, "b": 95, "c": 95}

			got := ValidationStateFor(rs, nil, conf)
			if got.State != StateIncomplete {
				t.Fatalf("expected INCOMPLETE, got %s", got.State)
			}
			if !strings.Contains(got.Reason, "b") {
				t.Fatalf("reason should name the room, got %q", got.Reason)
			}
		})
	}
}

func TestValidationStateMajorityLow(t *testing.T) {
	got := ValidationStateFor(rooms("a", "b", "c"), nil, map[string]int{"a": 30, "b": 49, "c": 90})
	if got.State != StateProvisional {
		t.Fatalf("expected PROVISIONAL, got %s", got.State)
	}
	if !strings.Contains(got.Reason, "2 of 3") {
		t.Fatalf("unexpected reason %q", got.Reason)
	}
	if len(got.LowConfidenceRooms) != 2 {
		t.Fatalf("expected 2 low rooms, got %v", got.LowConfidenceRooms)
	}
}

func TestValidationStateSingleLowRoomBlocksReady(t *testing.T) {
	got := ValidationStateFor(rooms("a", "b", "c", "d"), nil, map[string]int{"a": 95, "b": 88, "c": 81, "d": 49})
	if got.State != StateProvisional {
		t.Fatalf("expected PROVISIONAL, got %s", got.State)
	}
	if len(got.LowConfidenceRooms) != 1 || got.LowConfidenceRooms[0] != "d" {
		t.Fatalf("expected [d], got %v", got.LowConfidenceRooms)
	}
}

func TestValidationStateReady(t *testing.T) {
	got := ValidationStateFor(rooms("a", "b"), nil, map[string]int{"a": 50, "b": 80})
	if got.State != StateReady {
		t.Fatalf("expected READY, got %s (%s)", got.State, got.Reason)
	}
	if !got.IsFinal() {
		t.Fatal("READY must be final")
	}
}

func TestValidationStateMissingConfidenceIsLow(t *testing.T) {
	got := ValidationStateFor(rooms("a", "b"), nil, map[string]int{"a": 90})
	if got.State != StateProvisional {
		t.Fatalf("expected PROVISIONAL, got %s", got.State)
	}
}
