package testing

import (
	"database/sql"
	"testing"
	"time"
)

// FacilityFixture is a facility row for seeding
type FacilityFixture struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// ItemFixture is an item row for seeding
type ItemFixture struct {
	ID   string
	Name string
}

// PositionFixture is an inventory row for seeding. Expiry is YYYY-MM-DD or empty.
type PositionFixture struct {
	FacilityID string
	ItemID     string
	Stock      int
	Min        int
	Max        int
	Expiry     string
}

// Fixture is a complete data set for one test
type Fixture struct {
	Facilities []FacilityFixture
	Items      []ItemFixture
	Positions  []PositionFixture
}

// NewFacilityFixtures returns three Jakarta-area facilities.
// HOSP-01 and CLIN-01 are about 9.6 km apart; PUSK-01 is 0.9 km from HOSP-01.
func NewFacilityFixtures() []FacilityFixture {
	return []FacilityFixture{
		{ID: "HOSP-01", Name: "RSUD Central Hospital", Lat: -6.2000, Lon: 106.8166},
		{ID: "CLIN-01", Name: "Klinik Timur", Lat: -6.2250, Lon: 106.9000},
		{ID: "PUSK-01", Name: "Puskesmas Menteng", Lat: -6.1950, Lon: 106.8230},
	}
}

// NewItemFixtures returns a small set of medical items
func NewItemFixtures() []ItemFixture {
	return []ItemFixture{
		{ID: "MED-AMX", Name: "Amoxicillin 500mg"},
		{ID: "MED-PCM", Name: "Paracetamol 500mg"},
		{ID: "MED-ORS", Name: "Oral Rehydration Salts"},
	}
}

// NewRedistributionFixture seeds one overstocked and one understocked position of the same item:
// HOSP-01 holds 500/600 Amoxicillin, CLIN-01 holds 20 against a minimum of 100.
func NewRedistributionFixture() Fixture {
	return Fixture{
		Facilities: NewFacilityFixtures(),
		Items:      NewItemFixtures(),
		Positions: []PositionFixture{
			{FacilityID: "HOSP-01", ItemID: "MED-AMX", Stock: 500, Min: 100, Max: 600},
			{FacilityID: "CLIN-01", ItemID: "MED-AMX", Stock: 20, Min: 100, Max: 600},
		},
	}
}

// Seed inserts the fixture rows into db
func Seed(t *testing.T, db *sql.DB, f Fixture) {
	t.Helper()

	now := time.Now().UnixNano()
	for _, fac := range f.Facilities {
		_, err := db.Exec(`INSERT INTO facilities (facility_id, facility_name, latitude, longitude, created_at)
			VALUES (?, ?, ?, ?, ?)`, fac.ID, fac.Name, fac.Lat, fac.Lon, now)
		if err != nil {
			t.Fatalf("Failed to seed facility %s: %v", fac.ID, err)
		}
	}
	for _, it := range f.Items {
		_, err := db.Exec(`INSERT INTO items (item_id, item_name) VALUES (?, ?)`, it.ID, it.Name)
		if err != nil {
			t.Fatalf("Failed to seed item %s: %v", it.ID, err)
		}
	}
	for _, p := range f.Positions {
		var expiry interface{}
		if p.Expiry != "" {
			expiry = p.Expiry
		}
		_, err := db.Exec(`INSERT INTO inventory
			(facility_id, item_id, current_stock, min_stock_threshold, max_stock_capacity, expiry_date, last_updated)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, p.FacilityID, p.ItemID, p.Stock, p.Min, p.Max, expiry, now)
		if err != nil {
			t.Fatalf("Failed to seed position %s/%s: %v", p.FacilityID, p.ItemID, err)
		}
	}
}

// StockOf reads the current stock of a position, failing the test if it is missing
func StockOf(t *testing.T, db *sql.DB, facilityID, itemID string) int {
	t.Helper()

	var stock int
	err := db.QueryRow(`SELECT current_stock FROM inventory WHERE facility_id = ? AND item_id = ?`,
		facilityID, itemID).Scan(&stock)
	if err != nil {
		t.Fatalf("Failed to read stock for %s/%s: %v", facilityID, itemID, err)
	}
	return stock
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
