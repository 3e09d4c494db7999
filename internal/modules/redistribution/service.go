package redistribution

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/events"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GenerateResult summarises a generation run
type GenerateResult struct {
	GeneratedCount  int                         `json:"recommendations_generated"`
	Recommendations []domain.RecommendationView `json:"recommendations"`
}

// ApprovalResult is the approved recommendation and both stock levels after the transfer
type ApprovalResult struct {
	Recommendation   domain.Recommendation `json:"recommendation"`
	SourceStock      int                   `json:"source_stock"`
	DestinationStock int                   `json:"destination_stock"`
}

// NewRecommendationID returns a fresh recommendation identifier
func NewRecommendationID() string {
	return "REC-" + uuid.New().String()
}

// Service generates, lists, approves and rejects redistribution recommendations
type Service struct {
	db            *database.DB
	inventoryRepo *inventory.Repository
	recRepo       RecommendationRepositoryInterface
	events        events.Emitter // optional
	now           func() time.Time
	log           zerolog.Logger
}

// NewService creates a new redistribution service
func NewService(
	db *database.DB,
	inventoryRepo *inventory.Repository,
	recRepo RecommendationRepositoryInterface,
	log zerolog.Logger,
) *Service {
	return &Service{
		db:            db,
		inventoryRepo: inventoryRepo,
		recRepo:       recRepo,
		now:           time.Now,
		log:           log.With().Str("service", "redistribution").Logger(),
	}
}

// SetEmitter publishes recommendation lifecycle events to e
func (s *Service) SetEmitter(e events.Emitter) {
	s.events = e
}

func (s *Service) emit(data events.EventData) {
	if s.events != nil {
		s.events.EmitTyped("redistribution", data)
	}
}

// Generate matches the current snapshot and persists every candidate as a PENDING recommendation.
// Either all recommendations of a run are stored or none are.
func (s *Service) Generate(ctx context.Context) (*GenerateResult, error) {
	s.log.Info().Msg("Generating redistribution recommendations")

	snapshot, err := s.inventoryRepo.ListSnapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read inventory snapshot")
		return nil, err
	}

	candidates, err := Match(snapshot)
	if err != nil {
		s.log.Error().Err(err).Msg("Matching failed")
		return nil, err
	}

	createdAt := s.now()
	recs := make([]domain.Recommendation, 0, len(candidates))
	views := make([]domain.RecommendationView, 0, len(candidates))
	for _, c := range candidates {
		rec := domain.Recommendation{
			ID:                    NewRecommendationID(),
			SourceFacilityID:      c.Source.FacilityID,
			DestinationFacilityID: c.Destination.FacilityID,
			ItemID:                c.Source.ItemID,
			Quantity:              c.Quantity,
			PriorityScore:         c.Priority,
			DistanceKm:            c.DistanceKm,
			Reason:                c.Reason(),
			Status:                domain.StatusPending,
			SourceStock:           c.Source.CurrentStock,
			DestinationStock:      c.Destination.CurrentStock,
			CreatedAt:             createdAt,
		}
		recs = append(recs, rec)
		views = append(views, domain.NewRecommendationView(rec, c.Source.FacilityName, c.Destination.FacilityName, c.Source.ItemName))

		s.log.Debug().
			Str("recommendation_id", rec.ID).
			Str("from", c.Source.FacilityName).
			Str("to", c.Destination.FacilityName).
			Str("item", c.Source.ItemName).
			Int("quantity", rec.Quantity).
			Int("priority", rec.PriorityScore).
			Msg("Recommendation")
	}

	if err := s.recRepo.CreateBatch(ctx, recs); err != nil {
		s.log.Error().Err(err).Int("count", len(recs)).Msg("Failed to persist recommendations")
		return nil, err
	}

	s.log.Info().
		Int("positions", len(snapshot)).
		Int("generated", len(recs)).
		Msg("Generated redistribution recommendations")

	maxPriority := 0
	for _, rec := range recs {
		if rec.PriorityScore > maxPriority {
			maxPriority = rec.PriorityScore
		}
	}
	s.emit(&events.RecommendationsGeneratedData{Count: len(recs), MaxPriority: maxPriority})

	return &GenerateResult{GeneratedCount: len(recs), Recommendations: views}, nil
}

// ListPending returns PENDING recommendations ordered by priority
func (s *Service) ListPending(ctx context.Context) ([]domain.RecommendationView, error) {
	return s.recRepo.ListPending(ctx)
}

// ListApproved returns approved recommendations, most recent first
func (s *Service) ListApproved(ctx context.Context, limit int) ([]domain.RecommendationView, error) {
	return s.recRepo.ListByStatus(ctx, domain.StatusApproved, limit)
}

// ListRejected returns rejected recommendations, most recent first
func (s *Service) ListRejected(ctx context.Context, limit int) ([]domain.RecommendationView, error) {
	return s.recRepo.ListByStatus(ctx, domain.StatusRejected, limit)
}

// Get returns one recommendation
func (s *Service) Get(ctx context.Context, id string) (*domain.RecommendationView, error) {
	return s.recRepo.GetByID(ctx, id)
}

// CountPending returns the number of recommendations awaiting a decision
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.recRepo.CountPending(ctx)
}

// Approve applies a PENDING recommendation: the status change, both stock adjustments
// and the two journal entries commit together or not at all.
func (s *Service) Approve(ctx context.Context, id, approver string) (*ApprovalResult, error) {
	const op = "redistribution.Approve"

	if id == "" {
		return nil, domain.NewError(domain.KindValidation, op, "recommendation id is required")
	}
	if approver == "" {
		return nil, domain.NewError(domain.KindValidation, op, "approver is required")
	}

	now := s.now()
	result := &ApprovalResult{}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		recRepo := s.recRepo.WithTx(tx)
		invRepo := s.inventoryRepo.WithTx(tx)

		// The guarded write comes first so concurrent approvals queue on the write lock
		rec, err := recRepo.SetStatus(ctx, id, domain.StatusApproved, StatusChange{Actor: approver, At: now})
		if err != nil {
			return err
		}
		result.Recommendation = *rec

		result.SourceStock, err = invRepo.AdjustStock(ctx, rec.SourceFacilityID, rec.ItemID, -rec.Quantity)
		if err != nil {
			return err
		}
		result.DestinationStock, err = invRepo.AdjustStock(ctx, rec.DestinationFacilityID, rec.ItemID, rec.Quantity)
		if err != nil {
			return err
		}

		movements := []domain.StockMovement{
			{
				ID:         inventory.NewMovementID(),
				FacilityID: rec.SourceFacilityID,
				ItemID:     rec.ItemID,
				Type:       domain.MovementTransferOut,
				Quantity:   rec.Quantity,
				Reference:  rec.ID,
				Notes:      "Transfer to " + rec.DestinationFacilityID + " approved by " + approver,
				CreatedAt:  now,
			},
			{
				ID:         inventory.NewMovementID(),
				FacilityID: rec.DestinationFacilityID,
				ItemID:     rec.ItemID,
				Type:       domain.MovementTransferIn,
				Quantity:   rec.Quantity,
				Reference:  rec.ID,
				Notes:      "Transfer from " + rec.SourceFacilityID + " approved by " + approver,
				CreatedAt:  now,
			},
		}
		for _, m := range movements {
			if err := invRepo.RecordMovement(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("recommendation_id", id).Str("approved_by", approver).Msg("Approval failed")
		return nil, err
	}

	s.log.Info().
		Str("recommendation_id", id).
		Str("approved_by", approver).
		Int("quantity", result.Recommendation.Quantity).
		Int("source_stock", result.SourceStock).
		Int("destination_stock", result.DestinationStock).
		Msg("Approved redistribution")

	s.emit(&events.RecommendationApprovedData{
		RecommendationID:      id,
		ItemID:                result.Recommendation.ItemID,
		SourceFacilityID:      result.Recommendation.SourceFacilityID,
		DestinationFacilityID: result.Recommendation.DestinationFacilityID,
		Quantity:              result.Recommendation.Quantity,
		ApprovedBy:            approver,
	})

	return result, nil
}

// Reject closes a PENDING recommendation without touching inventory
func (s *Service) Reject(ctx context.Context, id, actor, reason string) (*domain.Recommendation, error) {
	const op = "redistribution.Reject"

	if id == "" {
		return nil, domain.NewError(domain.KindValidation, op, "recommendation id is required")
	}
	if actor == "" {
		return nil, domain.NewError(domain.KindValidation, op, "rejecting user is required")
	}

	rec, err := s.recRepo.SetStatus(ctx, id, domain.StatusRejected, StatusChange{Actor: actor, Reason: reason, At: s.now()})
	if err != nil {
		s.log.Warn().Err(err).Str("recommendation_id", id).Msg("Rejection failed")
		return nil, err
	}

	s.log.Info().Str("recommendation_id", id).Str("rejected_by", actor).Str("reason", reason).Msg("Rejected redistribution")
	s.emit(&events.RecommendationRejectedData{RecommendationID: id, RejectedBy: actor, Reason: reason})
	return rec, nil
}
