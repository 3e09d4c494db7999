package redistribution

import "math"

// Sub-score caps. The distance score is bounded by distanceScoreBase at zero distance.
const (
	maxQuantityScore  = 40
	distanceScoreBase = 30.0
	maxDeficitScore   = 30
	maxPriorityScore  = 100
)

// PriorityScore ranks a transfer in [0, 100]: larger transfers, shorter distances
// and deeper deficits score higher. Each sub-score is clamped before summing.
func PriorityScore(quantity int, distanceKm float64, deficit int) int {
	quantityScore := quantity / 10
	if quantityScore > maxQuantityScore {
		quantityScore = maxQuantityScore
	}

	distanceScore := 0
	if d := math.Floor(distanceScoreBase - distanceKm); d > 0 {
		distanceScore = int(d)
	}

	deficitScore := deficit / 5
	if deficitScore > maxDeficitScore {
		deficitScore = maxDeficitScore
	}

	score := quantityScore + distanceScore + deficitScore
	if score > maxPriorityScore {
		score = maxPriorityScore
	}
	if score < 0 {
		score = 0
	}
	return score
}
