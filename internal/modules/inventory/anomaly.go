package inventory

import (
	"time"

	"github.com/ecopath/ecopath/internal/domain"
)

// NearExpiryWindowDays flags positions expiring in fewer than this many calendar days
const NearExpiryWindowDays = 30

// AnomalyKind names the category an entry was flagged under
type AnomalyKind string

const (
	AnomalyUnderstocked AnomalyKind = "understocked"
	AnomalyOverstocked  AnomalyKind = "overstocked"
	AnomalyNearExpiry   AnomalyKind = "near_expiry"
)

// AnomalyEntry is one flagged position
type AnomalyEntry struct {
	Kind            AnomalyKind `json:"kind"`
	FacilityID      string      `json:"facility_id"`
	FacilityName    string      `json:"facility_name"`
	ItemID          string      `json:"item_id"`
	ItemName        string      `json:"item_name"`
	CurrentStock    int         `json:"current_stock"`
	MinThreshold    int         `json:"min_stock_threshold,omitempty"`
	MaxCapacity     int         `json:"max_stock_capacity,omitempty"`
	ExpiryDate      string      `json:"expiry_date,omitempty"`
	DaysUntilExpiry *int        `json:"days_until_expiry,omitempty"`
}

// AnomalyReport groups flagged positions by category.
// A position may appear in more than one list and TotalIssues counts it once per list.
type AnomalyReport struct {
	Understocked []AnomalyEntry `json:"understocked"`
	Overstocked  []AnomalyEntry `json:"overstocked"`
	NearExpiry   []AnomalyEntry `json:"near_expiry"`
	TotalIssues  int            `json:"total_issues"`
}

// IsUnderstocked reports stock strictly below the minimum threshold
func IsUnderstocked(p domain.InventoryPosition) bool {
	return p.CurrentStock < p.MinThreshold
}

// IsOverstocked reports stock strictly above 90% of capacity
func IsOverstocked(p domain.InventoryPosition) bool {
	return p.CurrentStock*10 > p.MaxCapacity*9
}

// DaysUntil returns whole calendar days from today to date, negative once date has passed.
// Both are compared as UTC calendar dates so the time of day never matters.
func DaysUntil(today, date time.Time) int {
	t := civilDate(today)
	d := civilDate(date)
	return int(d.Sub(t).Hours() / 24)
}

// civilDate truncates t to its UTC calendar date, the zone expiry dates are stored in.
func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DetectAnomalies classifies every position in snapshot. It has no side effects.
func DetectAnomalies(snapshot []domain.PositionView, today time.Time) AnomalyReport {
	report := AnomalyReport{
		Understocked: make([]AnomalyEntry, 0),
		Overstocked:  make([]AnomalyEntry, 0),
		NearExpiry:   make([]AnomalyEntry, 0),
	}

	for _, v := range snapshot {
		if IsUnderstocked(v.InventoryPosition) {
			e := newEntry(AnomalyUnderstocked, v)
			e.MinThreshold = v.MinThreshold
			report.Understocked = append(report.Understocked, e)
		}
		if IsOverstocked(v.InventoryPosition) {
			e := newEntry(AnomalyOverstocked, v)
			e.MaxCapacity = v.MaxCapacity
			report.Overstocked = append(report.Overstocked, e)
		}
		if v.ExpiryDate != nil {
			days := DaysUntil(today, *v.ExpiryDate)
			if days < NearExpiryWindowDays {
				e := newEntry(AnomalyNearExpiry, v)
				e.ExpiryDate = v.ExpiryDate.Format(domain.DateLayout)
				e.DaysUntilExpiry = &days
				report.NearExpiry = append(report.NearExpiry, e)
			}
		}
	}

	report.TotalIssues = len(report.Understocked) + len(report.Overstocked) + len(report.NearExpiry)
	return report
}

func newEntry(kind AnomalyKind, v domain.PositionView) AnomalyEntry {
	return AnomalyEntry{
		Kind:         kind,
		FacilityID:   v.FacilityID,
		FacilityName: v.FacilityName,
		ItemID:       v.ItemID,
		ItemName:     v.ItemName,
		CurrentStock: v.CurrentStock,
	}
}
