// Package inventory provides stock positions, the movement journal and anomaly detection.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles facility, item, position and movement persistence
// Database: inventory.db (facilities, items, inventory, stock_movements tables)
type Repository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewRepository creates a new inventory repository
func NewRepository(db database.Querier, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "inventory").Logger(),
	}
}

// WithTx returns a repository bound to tx
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx, log: r.log}
}

const snapshotQuery = `
	SELECT i.facility_id, i.item_id, i.current_stock, i.min_stock_threshold,
		i.max_stock_capacity, i.expiry_date, i.last_updated,
		f.facility_name, f.latitude, f.longitude, m.item_name
	FROM inventory i
	JOIN facilities f ON i.facility_id = f.facility_id
	JOIN items m ON i.item_id = m.item_id`

// ListSnapshot returns every inventory position joined with facility and item metadata,
// ordered by facility then item so callers iterate deterministically.
func (r *Repository) ListSnapshot(ctx context.Context) ([]domain.PositionView, error) {
	const op = "inventory.ListSnapshot"

	rows, err := r.db.QueryContext(ctx, snapshotQuery+` ORDER BY i.facility_id, i.item_id`)
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query inventory")
	}
	defer rows.Close()

	views := make([]domain.PositionView, 0)
	for rows.Next() {
		view, err := scanPositionView(rows)
		if err != nil {
			return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to scan inventory row")
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "error iterating inventory")
	}

	return views, nil
}

// GetPosition returns a single position with its metadata
func (r *Repository) GetPosition(ctx context.Context, facilityID, itemID string) (*domain.PositionView, error) {
	const op = "inventory.GetPosition"

	row := r.db.QueryRowContext(ctx, snapshotQuery+` WHERE i.facility_id = ? AND i.item_id = ?`, facilityID, itemID)
	view, err := scanPositionView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.KindNotFound, op, "no position for facility %s item %s", facilityID, itemID)
	}
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query position")
	}

	return &view, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPositionView(s scanner) (domain.PositionView, error) {
	var v domain.PositionView
	var expiry sql.NullString
	var lastUpdated int64

	err := s.Scan(
		&v.FacilityID,
		&v.ItemID,
		&v.CurrentStock,
		&v.MinThreshold,
		&v.MaxCapacity,
		&expiry,
		&lastUpdated,
		&v.FacilityName,
		&v.Latitude,
		&v.Longitude,
		&v.ItemName,
	)
	if err != nil {
		return v, err
	}

	if expiry.Valid && expiry.String != "" {
		t, err := time.ParseInLocation(domain.DateLayout, expiry.String, time.UTC)
		if err != nil {
			return v, fmt.Errorf("invalid expiry date %q for %s/%s: %w", expiry.String, v.FacilityID, v.ItemID, err)
		}
		v.ExpiryDate = &t
	}
	v.LastUpdated = time.Unix(0, lastUpdated).UTC()

	return v, nil
}

// ListFacilities returns all facilities ordered by id
func (r *Repository) ListFacilities(ctx context.Context) ([]domain.Facility, error) {
	const op = "inventory.ListFacilities"

	rows, err := r.db.QueryContext(ctx, `
		SELECT facility_id, facility_name, latitude, longitude
		FROM facilities
		ORDER BY facility_id
	`)
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query facilities")
	}
	defer rows.Close()

	facilities := make([]domain.Facility, 0)
	for rows.Next() {
		var f domain.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Latitude, &f.Longitude); err != nil {
			return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to scan facility")
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "error iterating facilities")
	}

	return facilities, nil
}

// ListItems returns all medical items ordered by id
func (r *Repository) ListItems(ctx context.Context) ([]domain.Item, error) {
	const op = "inventory.ListItems"

	rows, err := r.db.QueryContext(ctx, `SELECT item_id, item_name, category, unit FROM items ORDER BY item_id`)
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query items")
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.Unit); err != nil {
			return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to scan item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "error iterating items")
	}

	return items, nil
}

// UpsertFacility inserts or replaces facility reference data
func (r *Repository) UpsertFacility(ctx context.Context, f domain.Facility) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO facilities (facility_id, facility_name, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(facility_id) DO UPDATE SET
			facility_name = excluded.facility_name,
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, f.ID, f.Name, f.Latitude, f.Longitude, time.Now().UnixNano())
	if err != nil {
		return domain.WrapError(domain.KindPersistence, "inventory.UpsertFacility", err, "failed to upsert facility %s", f.ID)
	}
	return nil
}

// UpsertItem inserts or replaces item reference data
func (r *Repository) UpsertItem(ctx context.Context, it domain.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (item_id, item_name, category, unit)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			item_name = excluded.item_name,
			category = excluded.category,
			unit = excluded.unit
	`, it.ID, it.Name, it.Category, it.Unit)
	if err != nil {
		return domain.WrapError(domain.KindPersistence, "inventory.UpsertItem", err, "failed to upsert item %s", it.ID)
	}
	return nil
}

// UpsertPosition inserts or replaces a position, including its stock level
func (r *Repository) UpsertPosition(ctx context.Context, p domain.InventoryPosition) error {
	const op = "inventory.UpsertPosition"

	if p.CurrentStock < 0 {
		return domain.NewError(domain.KindValidation, op, "current stock must not be negative, got %d", p.CurrentStock)
	}

	var expiry interface{}
	if p.ExpiryDate != nil {
		expiry = p.ExpiryDate.Format(domain.DateLayout)
	}

	lastUpdated := p.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory
		(facility_id, item_id, current_stock, min_stock_threshold, max_stock_capacity, expiry_date, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(facility_id, item_id) DO UPDATE SET
			current_stock = excluded.current_stock,
			min_stock_threshold = excluded.min_stock_threshold,
			max_stock_capacity = excluded.max_stock_capacity,
			expiry_date = excluded.expiry_date,
			last_updated = excluded.last_updated
	`, p.FacilityID, p.ItemID, p.CurrentStock, p.MinThreshold, p.MaxCapacity, expiry, lastUpdated.UnixNano())
	if err != nil {
		return domain.WrapError(domain.KindPersistence, op, err, "failed to upsert position %s/%s", p.FacilityID, p.ItemID)
	}
	return nil
}

// AdjustStock atomically adds delta to a position's stock and returns the new level.
// The update is a single conditional statement: it fails with InsufficientStock rather
// than letting stock go negative, and with NotFound when the position does not exist.
func (r *Repository) AdjustStock(ctx context.Context, facilityID, itemID string, delta int) (int, error) {
	const op = "inventory.AdjustStock"

	var newStock int
	err := r.db.QueryRowContext(ctx, `
		UPDATE inventory
		SET current_stock = current_stock + ?, last_updated = ?
		WHERE facility_id = ? AND item_id = ? AND current_stock + ? >= 0
		RETURNING current_stock
	`, delta, time.Now().UnixNano(), facilityID, itemID, delta).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, domain.WrapError(domain.KindPersistence, op, err, "failed to adjust stock for %s/%s", facilityID, itemID)
	}

	// Zero rows: tell a missing position apart from a shortfall
	var current int
	err = r.db.QueryRowContext(ctx, `
		SELECT current_stock FROM inventory WHERE facility_id = ? AND item_id = ?
	`, facilityID, itemID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NewError(domain.KindNotFound, op, "no position for facility %s item %s", facilityID, itemID)
	}
	if err != nil {
		return 0, domain.WrapError(domain.KindPersistence, op, err, "failed to read stock for %s/%s", facilityID, itemID)
	}

	return 0, domain.NewError(domain.KindInsufficientStock, op,
		"facility %s holds %d of %s, cannot apply %d", facilityID, current, itemID, delta)
}

// RecordMovement appends an entry to the stock movement journal
func (r *Repository) RecordMovement(ctx context.Context, m domain.StockMovement) error {
	const op = "inventory.RecordMovement"

	if m.Type.Sign() == 0 {
		return domain.NewError(domain.KindValidation, op, "unknown movement type %q", m.Type)
	}
	if m.Quantity <= 0 {
		return domain.NewError(domain.KindValidation, op, "movement quantity must be positive, got %d", m.Quantity)
	}

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_movements
		(movement_id, facility_id, item_id, movement_type, quantity, reference, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.FacilityID, m.ItemID, string(m.Type), m.Quantity, m.Reference, m.Notes, createdAt.UnixNano())
	if err != nil {
		return domain.WrapError(domain.KindPersistence, op, err, "failed to record movement %s", m.ID)
	}
	return nil
}

// MovementFilter narrows ListMovements. Empty fields match everything.
type MovementFilter struct {
	FacilityID string
	ItemID     string
	Limit      int
}

// ListMovements returns journal entries, newest first
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]domain.StockMovement, error) {
	const op = "inventory.ListMovements"

	query := `
		SELECT movement_id, facility_id, item_id, movement_type, quantity, reference, notes, created_at
		FROM stock_movements
		WHERE (? = '' OR facility_id = ?) AND (? = '' OR item_id = ?)
		ORDER BY created_at DESC, movement_id DESC`
	args := []interface{}{filter.FacilityID, filter.FacilityID, filter.ItemID, filter.ItemID}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query movements")
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0)
	for rows.Next() {
		var m domain.StockMovement
		var movementType string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.FacilityID, &m.ItemID, &movementType, &m.Quantity, &m.Reference, &m.Notes, &createdAt); err != nil {
			return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to scan movement")
		}
		m.Type = domain.MovementType(movementType)
		m.CreatedAt = time.Unix(0, createdAt).UTC()
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "error iterating movements")
	}

	return movements, nil
}

// FacilityExists reports whether facility reference data is present
func (r *Repository) FacilityExists(ctx context.Context, facilityID string) (bool, error) {
	return r.exists(ctx, "inventory.FacilityExists", `SELECT 1 FROM facilities WHERE facility_id = ?`, facilityID)
}

// ItemExists reports whether item reference data is present
func (r *Repository) ItemExists(ctx context.Context, itemID string) (bool, error) {
	return r.exists(ctx, "inventory.ItemExists", `SELECT 1 FROM items WHERE item_id = ?`, itemID)
}

func (r *Repository) exists(ctx context.Context, op, query, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to look up %s", id)
	}
	return true, nil
}
