package forecast

import (
	"strconv"
	"time"
)

// leadTimeDemand sums the predicted quantity of the first leadDays points
// dated strictly after anchor. points must be sorted by date.
func leadTimeDemand(points []Point, anchor time.Time, leadDays int) float64 {
	var sum float64
	taken := 0
	for _, p := range points {
		if taken == leadDays {
			break
		}
		if p.Date.After(anchor) {
			sum += p.PredictedQuantity
			taken++
		}
	}
	return sum
}

// recommend derives safety stock and reorder point from raw lead-time
// demand. The reorder point is the float sum of the two rounded parts, so
// ReorderPoint == LeadTimeDemand + SafetyStock holds exactly.
func recommend(productID string, rawDemand, safetyFactor float64) Recommendation {
	ltd := round2(rawDemand)
	safety := round2(ltd * safetyFactor)

	return Recommendation{
		ProductID:      productID,
		LeadTimeDemand: ltd,
		SafetyStock:    safety,
		ReorderPoint:   ltd + safety,
	}
}

// round2 rounds to two decimals using the exact binary value of v, ties to
// even. 10.005 is stored just below the tie and rounds to 10.0.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}
