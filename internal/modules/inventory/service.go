package inventory

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StockUpdate is a manual receipt (IN) or issue (OUT) at one position
type StockUpdate struct {
	FacilityID string
	ItemID     string
	Quantity   int
	Type       domain.MovementType
	Notes      string
}

// StockUpdateResult reports the journal entry and the resulting stock level
type StockUpdateResult struct {
	MovementID string `json:"transaction_id"`
	NewStock   int    `json:"new_stock"`
}

// NewMovementID returns a fresh journal entry identifier
func NewMovementID() string {
	return "TRX-" + uuid.New().String()
}

// Service exposes inventory operations to handlers, jobs and other modules
type Service struct {
	db     *database.DB
	repo   *Repository
	events events.Emitter // optional
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new inventory service
func NewService(db *database.DB, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		db:   db,
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("service", "inventory").Logger(),
	}
}

// SetEmitter publishes stock changes to e
func (s *Service) SetEmitter(e events.Emitter) {
	s.events = e
}

// Snapshot returns the full joined inventory
func (s *Service) Snapshot(ctx context.Context) ([]domain.PositionView, error) {
	return s.repo.ListSnapshot(ctx)
}

// Facilities returns facility reference data
func (s *Service) Facilities(ctx context.Context) ([]domain.Facility, error) {
	return s.repo.ListFacilities(ctx)
}

// Movements returns journal entries matching filter
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]domain.StockMovement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// DetectAnomalies reads the current snapshot and classifies it.
// A store failure is returned as DataUnavailable, never as an empty report.
func (s *Service) DetectAnomalies(ctx context.Context) (*AnomalyReport, error) {
	snapshot, err := s.repo.ListSnapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read inventory snapshot")
		return nil, err
	}

	report := DetectAnomalies(snapshot, s.now().UTC())

	s.log.Debug().
		Int("positions", len(snapshot)).
		Int("understocked", len(report.Understocked)).
		Int("overstocked", len(report.Overstocked)).
		Int("near_expiry", len(report.NearExpiry)).
		Msg("Anomaly detection complete")

	return &report, nil
}

// UpdateStock applies a receipt or issue and journals it in one transaction
func (s *Service) UpdateStock(ctx context.Context, update StockUpdate) (*StockUpdateResult, error) {
	const op = "inventory.UpdateStock"

	if update.FacilityID == "" || update.ItemID == "" {
		return nil, domain.NewError(domain.KindValidation, op, "facility and item are required")
	}
	if update.Quantity <= 0 {
		return nil, domain.NewError(domain.KindValidation, op, "quantity must be positive, got %d", update.Quantity)
	}
	if update.Type != domain.MovementIn && update.Type != domain.MovementOut {
		return nil, domain.NewError(domain.KindValidation, op, "type must be IN or OUT, got %q", update.Type)
	}

	notes := update.Notes
	if notes == "" {
		notes = "Stock " + string(update.Type) + " via API"
	}

	result := &StockUpdateResult{MovementID: NewMovementID()}
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)

		newStock, err := repo.AdjustStock(ctx, update.FacilityID, update.ItemID, update.Type.Sign()*update.Quantity)
		if err != nil {
			return err
		}
		result.NewStock = newStock

		return repo.RecordMovement(ctx, domain.StockMovement{
			ID:         result.MovementID,
			FacilityID: update.FacilityID,
			ItemID:     update.ItemID,
			Type:       update.Type,
			Quantity:   update.Quantity,
			Notes:      notes,
			CreatedAt:  s.now(),
		})
	})
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("facility_id", update.FacilityID).
			Str("item_id", update.ItemID).
			Str("type", string(update.Type)).
			Int("quantity", update.Quantity).
			Msg("Stock update failed")
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", result.MovementID).
		Str("facility_id", update.FacilityID).
		Str("item_id", update.ItemID).
		Str("type", string(update.Type)).
		Int("quantity", update.Quantity).
		Int("new_stock", result.NewStock).
		Msg("Stock updated")

	if s.events != nil {
		s.events.EmitTyped("inventory", &events.StockUpdatedData{
			FacilityID:    update.FacilityID,
			ItemID:        update.ItemID,
			MovementType:  string(update.Type),
			Quantity:      update.Quantity,
			NewStock:      result.NewStock,
			TransactionID: result.MovementID,
		})
	}

	return result, nil
}
