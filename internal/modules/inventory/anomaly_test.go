package inventory

import (
	"testing"
	"time"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view(facility, item string, stock, min, max int, expiry *time.Time) domain.PositionView {
	return domain.PositionView{
		InventoryPosition: domain.InventoryPosition{
			FacilityID:   facility,
			ItemID:       item,
			CurrentStock: stock,
			MinThreshold: min,
			MaxCapacity:  max,
			ExpiryDate:   expiry,
		},
		FacilityName: facility + " name",
		ItemName:     item + " name",
	}
}

func date(s string) *time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestDetectAnomalies_EmptySnapshot(t *testing.T) {
	report := DetectAnomalies(nil, time.Now())

	assert.Empty(t, report.Understocked)
	assert.Empty(t, report.Overstocked)
	assert.Empty(t, report.NearExpiry)
	assert.Equal(t, 0, report.TotalIssues)
	assert.NotNil(t, report.Understocked, "lists serialise as [] not null")
}

func TestDetectAnomalies_Thresholds(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	testCases := []struct {
		name         string
		pos          domain.PositionView
		understocked bool
		overstocked  bool
		nearExpiry   bool
	}{
		{"below min", view("F1", "I1", 99, 100, 1000, nil), true, false, false},
		{"at min", view("F1", "I1", 100, 100, 1000, nil), false, false, false},
		{"exactly 90% of capacity", view("F1", "I1", 900, 100, 1000, nil), false, false, false},
		{"just above 90% of capacity", view("F1", "I1", 901, 100, 1000, nil), false, true, false},
		{"fractional threshold", view("F1", "I1", 10, 1, 11, nil), false, true, false},
		{"no expiry never flagged", view("F1", "I1", 500, 100, 1000, nil), false, false, false},
		{"expires in 29 days", view("F1", "I1", 500, 100, 1000, date("2026-03-30")), false, false, true},
		{"expires in 30 days", view("F1", "I1", 500, 100, 1000, date("2026-03-31")), false, false, false},
		{"already expired", view("F1", "I1", 500, 100, 1000, date("2026-02-01")), false, false, true},
		{"expires today", view("F1", "I1", 500, 100, 1000, date("2026-03-01")), false, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := DetectAnomalies([]domain.PositionView{tc.pos}, today)

			assert.Equal(t, tc.understocked, len(report.Understocked) == 1, "understocked")
			assert.Equal(t, tc.overstocked, len(report.Overstocked) == 1, "overstocked")
			assert.Equal(t, tc.nearExpiry, len(report.NearExpiry) == 1, "near expiry")
		})
	}
}

func TestDetectAnomalies_TotalCountsEachCategory(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Understocked and expiring: counted twice
	snapshot := []domain.PositionView{
		view("F1", "I1", 5, 50, 100, date("2026-03-10")),
		view("F2", "I1", 95, 50, 100, nil),
		view("F3", "I1", 60, 50, 100, nil),
	}

	report := DetectAnomalies(snapshot, today)

	require.Len(t, report.Understocked, 1)
	require.Len(t, report.Overstocked, 1)
	require.Len(t, report.NearExpiry, 1)
	assert.Equal(t, 3, report.TotalIssues)
	assert.Equal(t, len(report.Understocked)+len(report.Overstocked)+len(report.NearExpiry), report.TotalIssues)

	entry := report.NearExpiry[0]
	assert.Equal(t, "F1", entry.FacilityID)
	assert.Equal(t, "2026-03-10", entry.ExpiryDate)
	require.NotNil(t, entry.DaysUntilExpiry)
	assert.Equal(t, 9, *entry.DaysUntilExpiry)
}

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysUntil(late, early))
	assert.Equal(t, -1, DaysUntil(early, late))
	assert.Equal(t, 0, DaysUntil(late, late))
}

func TestDaysUntil_UsesUTCCalendar(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 01:00 on March 2 in Jakarta is still March 1 in UTC
	today := time.Date(2026, 3, 2, 1, 0, 0, 0, jakarta)
	expiry := date("2026-03-31")

	assert.Equal(t, 30, DaysUntil(today, *expiry))

	report := DetectAnomalies([]domain.PositionView{view("CLIN-01", "MED-AMX", 200, 100, 600, expiry)}, today)
	assert.Empty(t, report.NearExpiry, "30 days out is not near expiry")
}
