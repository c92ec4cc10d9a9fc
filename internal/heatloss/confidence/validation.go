package confidence

import "fmt"

// ValidationState gates whether a result set may be presented as final.
type ValidationState string

const (
	StateIncomplete  ValidationState = "INCOMPLETE"
	StateProvisional ValidationState = "PROVISIONAL"
	StateReady       ValidationState = "READY"
)

// Validation is the outcome of ValidationStateFor.
type Validation struct {
	State              ValidationState
	Reason             string
	LowConfidenceRooms []string
}

// IsFinal reports whether consumers may treat the results as final. Only
// READY qualifies.
func (v Validation) IsFinal() bool {
	return v.State == StateReady
}

// ValidationStateFor classifies a result set. Rules are applied in order:
// no rooms, invalid geometry, majority low confidence, any low confidence.
// A room missing from confidences counts as low confidence.
func ValidationStateFor(rooms []Room, _ []Surface, confidences map[string]int) Validation {
	if len(rooms) == 0 {
		return Validation{State: StateIncomplete, Reason: "no rooms surveyed"}
	}

	for _, r := range rooms {
		if r.FloorAreaM2 <= 0 || r.VolumeM3 <= 0 {
			return Validation{
				State:  StateIncomplete,
				Reason: fmt.Sprintf("room %q has invalid geometry", displayName(r)),
			}
		}
	}

	low := make([]string, 0)
	for _, r := range rooms {
		conf, ok := confidences[r.ID]
		if !ok || IsLowConfidence(conf) {
			low = append(low, r.ID)
		}
	}

	switch {
	case len(low)*2 > len(rooms):
		return Validation{
			State:              StateProvisional,
			Reason:             fmt.Sprintf("%d of %d rooms have low confidence", len(low), len(rooms)),
			LowConfidenceRooms: low,
		}
	case len(low) > 0:
		return Validation{
			State:              StateProvisional,
			Reason:             fmt.Sprintf("%d room(s) below confidence threshold", len(low)),
			LowConfidenceRooms: low,
		}
	default:
		return Validation{State: StateReady, Reason: "all rooms meet confidence threshold", LowConfidenceRooms: low}
	}
}

func displayName(r Room) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
