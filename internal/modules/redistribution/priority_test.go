package redistribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityScore(t *testing.T) {
	testCases := []struct {
		name     string
		quantity int
		distance float64
		deficit  int
		want     int
	}{
		{"worked example", 80, 10.0, 80, 44},
		{"quantity capped at 40", 1000, 30, 0, 40},
		{"distance beyond 30 km scores zero", 0, 45.2, 0, 0},
		{"distance floored", 0, 9.4, 0, 20},
		{"deficit capped at 30", 0, 30, 500, 30},
		{"maximum at zero distance", 400, 0, 150, 100},
		{"all caps exceeded still 100", 5000, 0, 5000, 100},
		{"small transfer far away", 11, 100, 11, 3},
		{"integer division truncates", 19, 30, 9, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PriorityScore(tc.quantity, tc.distance, tc.deficit))
		})
	}
}

func TestPriorityScore_Bounds(t *testing.T) {
	for qty := 0; qty <= 600; qty += 37 {
		for _, d := range []float64{0, 0.5, 7.3, 29.99, 30, 120} {
			for deficit := -50; deficit <= 300; deficit += 41 {
				score := PriorityScore(qty, d, deficit)
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
			}
		}
	}
}
