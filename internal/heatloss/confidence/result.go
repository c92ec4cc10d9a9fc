package confidence

import "math"

// neutralRoomConfidence stands in for a room with no computed confidence.
const neutralRoomConfidence = 50

// TotalHeatLoss sums TotalLossW across all raw results.
func TotalHeatLoss(losses []RawRoomHeatLoss) float64 {
	var total float64
	for _, l := range losses {
		total += l.TotalLossW
	}
	return total
}

// ResultConfidence is the whole-house score: each room's confidence weighted
// by its share of total heat loss. A zero or negative total yields 0.
func ResultConfidence(losses []RawRoomHeatLoss, byRoom map[string]int) int {
	total := TotalHeatLoss(losses)
	if total <= 0 {
		return 0
	}

	var weighted float64
	for _, l := range losses {
		conf, ok := byRoom[l.RoomID]
		if !ok {
			conf = neutralRoomConfidence
		}
		weighted += float64(conf) * (l.TotalLossW / total)
	}
	return clampScore(int(math.Round(weighted)))
}
