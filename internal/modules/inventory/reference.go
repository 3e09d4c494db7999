package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/ecopath/ecopath/internal/domain"
)

// PositionInput is a full position definition from the facility directory
type PositionInput struct {
	FacilityID   string
	ItemID       string
	CurrentStock int
	MinThreshold int
	MaxCapacity  int
	ExpiryDate   string // YYYY-MM-DD, empty for none
}

// Items returns item reference data
func (s *Service) Items(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListItems(ctx)
}

// SaveFacility validates and stores facility reference data
func (s *Service) SaveFacility(ctx context.Context, f domain.Facility) error {
	const op = "inventory.SaveFacility"

	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	if f.ID == "" || f.Name == "" {
		return domain.NewError(domain.KindValidation, op, "facility id and name are required")
	}
	if f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180 {
		return domain.NewError(domain.KindValidation, op, "coordinates out of range: %.6f, %.6f", f.Latitude, f.Longitude)
	}

	if err := s.repo.UpsertFacility(ctx, f); err != nil {
		return err
	}
	s.log.Info().Str("facility_id", f.ID).Msg("Facility saved")
	return nil
}

// SaveItem validates and stores item reference data
func (s *Service) SaveItem(ctx context.Context, it domain.Item) error {
	const op = "inventory.SaveItem"

	it.ID = strings.TrimSpace(it.ID)
	it.Name = strings.TrimSpace(it.Name)
	if it.ID == "" || it.Name == "" {
		return domain.NewError(domain.KindValidation, op, "item id and name are required")
	}

	if err := s.repo.UpsertItem(ctx, it); err != nil {
		return err
	}
	s.log.Info().Str("item_id", it.ID).Msg("Item saved")
	return nil
}

// SavePosition stores a position for a known facility and item. It overwrites
// the stock level outright and is not journaled; day-to-day changes go through UpdateStock.
func (s *Service) SavePosition(ctx context.Context, in PositionInput) (*domain.PositionView, error) {
	const op = "inventory.SavePosition"

	if in.FacilityID == "" || in.ItemID == "" {
		return nil, domain.NewError(domain.KindValidation, op, "facility and item are required")
	}
	if in.CurrentStock < 0 || in.MinThreshold < 0 || in.MaxCapacity < 0 {
		return nil, domain.NewError(domain.KindValidation, op, "stock, threshold and capacity must not be negative")
	}

	pos := domain.InventoryPosition{
		FacilityID:   in.FacilityID,
		ItemID:       in.ItemID,
		CurrentStock: in.CurrentStock,
		MinThreshold: in.MinThreshold,
		MaxCapacity:  in.MaxCapacity,
		LastUpdated:  s.now(),
	}
	if in.ExpiryDate != "" {
		expiry, err := time.Parse(domain.DateLayout, in.ExpiryDate)
		if err != nil {
			return nil, domain.WrapError(domain.KindValidation, op, err, "expiry date must be YYYY-MM-DD")
		}
		pos.ExpiryDate = &expiry
	}

	if ok, err := s.repo.FacilityExists(ctx, in.FacilityID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.NewError(domain.KindNotFound, op, "facility %s not found", in.FacilityID)
	}
	if ok, err := s.repo.ItemExists(ctx, in.ItemID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.NewError(domain.KindNotFound, op, "item %s not found", in.ItemID)
	}

	if err := s.repo.UpsertPosition(ctx, pos); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("facility_id", in.FacilityID).
		Str("item_id", in.ItemID).
		Int("current_stock", in.CurrentStock).
		Msg("Position saved")

	return s.repo.GetPosition(ctx, in.FacilityID, in.ItemID)
}
