package redistribution

import (
	"fmt"
	"math"

	"github.com/ecopath/ecopath/internal/domain"
)

// MinTransferQuantity is the smallest transfer worth proposing; quantities at or below it are skipped
const MinTransferQuantity = 10

// IsSource reports whether a position holds more than 80% of capacity
func IsSource(p domain.InventoryPosition) bool {
	return p.CurrentStock*10 > p.MaxCapacity*8
}

// IsDestination reports whether a position holds less than 1.5x its minimum threshold
func IsDestination(p domain.InventoryPosition) bool {
	return p.CurrentStock*2 < p.MinThreshold*3
}

// Surplus is stock above 70% of capacity (floored), the level a source keeps after a transfer
func Surplus(p domain.InventoryPosition) int {
	return p.CurrentStock - p.MaxCapacity*7/10
}

// Deficit is the shortfall against the minimum threshold, non-positive when none
func Deficit(p domain.InventoryPosition) int {
	return p.MinThreshold - p.CurrentStock
}

// Candidate is a proposed source/destination pairing before it is persisted
type Candidate struct {
	Source      domain.PositionView
	Destination domain.PositionView
	Quantity    int
	Surplus     int
	Deficit     int
	DistanceKm  float64
	Priority    int
}

// Reason renders the human readable justification stored with the recommendation
func (c Candidate) Reason() string {
	return fmt.Sprintf("Transfer %d units from %s (surplus) to %s (deficit). Distance: %.1f km",
		c.Quantity, c.Source.FacilityName, c.Destination.FacilityName, c.DistanceKm)
}

// Match pairs every source with every destination holding the same item.
// Output order follows the snapshot: sources in the outer loop, destinations in the inner.
// A non-finite distance fails the whole run with InternalConsistency.
func Match(snapshot []domain.PositionView) ([]Candidate, error) {
	var sources, destinations []domain.PositionView
	for _, v := range snapshot {
		if IsSource(v.InventoryPosition) {
			sources = append(sources, v)
		}
		if IsDestination(v.InventoryPosition) {
			destinations = append(destinations, v)
		}
	}

	candidates := make([]Candidate, 0)
	for _, src := range sources {
		surplus := Surplus(src.InventoryPosition)

		for _, dst := range destinations {
			if src.ItemID != dst.ItemID || src.FacilityID == dst.FacilityID {
				continue
			}

			deficit := Deficit(dst.InventoryPosition)
			qty := surplus
			if deficit < qty {
				qty = deficit
			}
			if qty <= MinTransferQuantity {
				continue
			}

			distance := HaversineKm(src.Latitude, src.Longitude, dst.Latitude, dst.Longitude)
			if math.IsNaN(distance) || math.IsInf(distance, 0) {
				return nil, domain.NewError(domain.KindInternalConsistency, "redistribution.Match",
					"non-finite distance between %s and %s", src.FacilityID, dst.FacilityID)
			}

			candidates = append(candidates, Candidate{
				Source:      src,
				Destination: dst,
				Quantity:    qty,
				Surplus:     surplus,
				Deficit:     deficit,
				DistanceKm:  distance,
				Priority:    PriorityScore(qty, distance, deficit),
			})
		}
	}

	return candidates, nil
}
