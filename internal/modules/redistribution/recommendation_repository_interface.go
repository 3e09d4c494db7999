package redistribution

import (
	"context"
	"database/sql"
	"time"

	"github.com/ecopath/ecopath/internal/domain"
)

// RecommendationRepositoryInterface defines the contract for recommendation persistence
type RecommendationRepositoryInterface interface {
	// Create persists a new PENDING recommendation
	Create(ctx context.Context, rec domain.Recommendation) error

	// CreateBatch persists all recommendations or none
	CreateBatch(ctx context.Context, recs []domain.Recommendation) error

	// ListPending returns PENDING recommendations by priority, newest first within equal priority
	ListPending(ctx context.Context) ([]domain.RecommendationView, error)

	// ListByStatus returns recommendations in a terminal status, most recently decided first
	ListByStatus(ctx context.Context, status domain.RecommendationStatus, limit int) ([]domain.RecommendationView, error)

	// GetByID returns one recommendation or NotFound
	GetByID(ctx context.Context, id string) (*domain.RecommendationView, error)

	// SetStatus moves a PENDING recommendation to APPROVED or REJECTED.
	// Any other current status fails with InvalidTransition.
	SetStatus(ctx context.Context, id string, next domain.RecommendationStatus, change StatusChange) (*domain.Recommendation, error)

	// CountPending returns the number of PENDING recommendations
	CountPending(ctx context.Context) (int, error)

	// WithTx returns a repository bound to tx
	WithTx(tx *sql.Tx) RecommendationRepositoryInterface
}

// StatusChange records who moved a recommendation out of PENDING, when, and why
type StatusChange struct {
	Actor  string
	Reason string
	At     time.Time
}

// Compile-time check that RecommendationRepository implements RecommendationRepositoryInterface
var _ RecommendationRepositoryInterface = (*RecommendationRepository)(nil)
