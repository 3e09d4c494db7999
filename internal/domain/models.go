// Package domain provides core domain models and types.
package domain

import "time"

// DateLayout is the storage and wire format for expiry dates
const DateLayout = "2006-01-02"

// Facility is a health facility holding stock. Reference data owned by the facility directory.
type Facility struct {
	ID        string  `json:"facility_id"`
	Name      string  `json:"facility_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Item is a medical supply item
type Item struct {
	ID       string `json:"item_id"`
	Name     string `json:"item_name"`
	Category string `json:"category,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// InventoryPosition is the stock record for one (facility, item) pair.
// CurrentStock is never negative.
type InventoryPosition struct {
	FacilityID   string     `json:"facility_id"`
	ItemID       string     `json:"item_id"`
	CurrentStock int        `json:"current_stock"`
	MinThreshold int        `json:"min_stock_threshold"`
	MaxCapacity  int        `json:"max_stock_capacity"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// PositionView is an inventory position joined with its facility and item metadata.
// It is the row type of an inventory snapshot.
type PositionView struct {
	InventoryPosition
	FacilityName string  `json:"facility_name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ItemName     string  `json:"item_name"`
}

// RecommendationStatus is the lifecycle state of a redistribution recommendation
type RecommendationStatus string

const (
	StatusPending  RecommendationStatus = "PENDING"
	StatusApproved RecommendationStatus = "APPROVED"
	StatusRejected RecommendationStatus = "REJECTED"
)

// Valid reports whether s is a known status
func (s RecommendationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s RecommendationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether s -> next is an edge of the lifecycle.
// Only PENDING -> APPROVED and PENDING -> REJECTED exist.
func (s RecommendationStatus) CanTransitionTo(next RecommendationStatus) bool {
	return s == StatusPending && next.IsTerminal()
}

// Recommendation is a proposed transfer of stock between two facilities
type Recommendation struct {
	ID                    string               `json:"recommendation_id"`
	SourceFacilityID      string               `json:"source_facility_id"`
	DestinationFacilityID string               `json:"destination_facility_id"`
	ItemID                string               `json:"item_id"`
	Quantity              int                  `json:"quantity_to_move"`
	PriorityScore         int                  `json:"priority_score"`
	DistanceKm            float64              `json:"distance_km"`
	Reason                string               `json:"reason"`
	Status                RecommendationStatus `json:"status"`
	SourceStock           int                  `json:"source_current_stock"`      // at generation time
	DestinationStock      int                  `json:"destination_current_stock"` // at generation time
	CreatedAt             time.Time            `json:"created_at"`
	ApprovedBy            string               `json:"approved_by,omitempty"`
	ApprovedAt            *time.Time           `json:"approved_at,omitempty"`
	RejectedBy            string               `json:"rejected_by,omitempty"`
	RejectedAt            *time.Time           `json:"rejected_at,omitempty"`
	RejectionReason       string               `json:"rejection_reason,omitempty"`
}

// RecommendationView is a recommendation with display names and projected stock levels
type RecommendationView struct {
	Recommendation
	SourceFacilityName      string `json:"from_facility_name"`
	DestinationFacilityName string `json:"to_facility_name"`
	ItemName                string `json:"item_name"`
	SourceAfterStock        int    `json:"from_after_stock"`
	DestinationAfterStock   int    `json:"to_after_stock"`
}

// NewRecommendationView projects stock levels after the transfer is applied
func NewRecommendationView(rec Recommendation, sourceName, destinationName, itemName string) RecommendationView {
	return RecommendationView{
		Recommendation:          rec,
		SourceFacilityName:      sourceName,
		DestinationFacilityName: destinationName,
		ItemName:                itemName,
		SourceAfterStock:        rec.SourceStock - rec.Quantity,
		DestinationAfterStock:   rec.DestinationStock + rec.Quantity,
	}
}

// MovementType classifies a stock movement journal entry
type MovementType string

const (
	MovementIn          MovementType = "IN"
	MovementOut         MovementType = "OUT"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementTransferOut MovementType = "TRANSFER_OUT"
)

// Sign returns +1 for movements that add stock and -1 for those that remove it
func (m MovementType) Sign() int {
	switch m {
	case MovementIn, MovementTransferIn:
		return 1
	case MovementOut, MovementTransferOut:
		return -1
	}
	return 0
}

// StockMovement is an append-only journal entry for a stock change
type StockMovement struct {
	ID         string       `json:"movement_id"`
	FacilityID string       `json:"facility_id"`
	ItemID     string       `json:"item_id"`
	Type       MovementType `json:"movement_type"`
	Quantity   int          `json:"quantity"`
	Reference  string       `json:"reference,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
