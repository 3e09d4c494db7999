package redistribution

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/domain"
	"github.com/rs/zerolog"
)

// RecommendationRepository stores redistribution recommendations
// Database: inventory.db (recommendations table)
type RecommendationRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db database.Querier, log zerolog.Logger) *RecommendationRepository {
	return &RecommendationRepository{
		db:  db,
		log: log.With().Str("repo", "recommendation").Logger(),
	}
}

// WithTx returns a repository bound to tx
func (r *RecommendationRepository) WithTx(tx *sql.Tx) RecommendationRepositoryInterface {
	return &RecommendationRepository{db: tx, log: r.log}
}

const insertRecommendation = `
	INSERT INTO recommendations
	(recommendation_id, source_facility_id, destination_facility_id, item_id,
	 quantity_to_move, priority_score, distance_km, reason, status,
	 source_current_stock, destination_current_stock, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Create persists a new PENDING recommendation
func (r *RecommendationRepository) Create(ctx context.Context, rec domain.Recommendation) error {
	const op = "recommendations.Create"

	if rec.Status != domain.StatusPending {
		return domain.NewError(domain.KindValidation, op, "new recommendations must be PENDING, got %s", rec.Status)
	}

	_, err := r.db.ExecContext(ctx, insertRecommendation,
		rec.ID,
		rec.SourceFacilityID,
		rec.DestinationFacilityID,
		rec.ItemID,
		rec.Quantity,
		rec.PriorityScore,
		rec.DistanceKm,
		rec.Reason,
		string(rec.Status),
		rec.SourceStock,
		rec.DestinationStock,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return domain.WrapError(domain.KindPersistence, op, err, "failed to insert recommendation %s", rec.ID)
	}
	return nil
}

// CreateBatch persists all recommendations in one transaction. When the repository is
// already bound to a transaction the caller owns atomicity.
func (r *RecommendationRepository) CreateBatch(ctx context.Context, recs []domain.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	conn, ok := r.db.(*sql.DB)
	if !ok {
		for _, rec := range recs {
			if err := r.Create(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}

	err := database.WithTransaction(ctx, conn, func(tx *sql.Tx) error {
		txRepo := &RecommendationRepository{db: tx, log: r.log}
		for _, rec := range recs {
			if err := txRepo.Create(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == "" {
			return domain.WrapError(domain.KindPersistence, "recommendations.CreateBatch", err, "failed to persist %d recommendations", len(recs))
		}
		return err
	}

	r.log.Debug().Int("count", len(recs)).Msg("Stored recommendation batch")
	return nil
}

const selectRecommendationView = `
	SELECT r.recommendation_id, r.source_facility_id, r.destination_facility_id, r.item_id,
		r.quantity_to_move, r.priority_score, r.distance_km, r.reason, r.status,
		r.source_current_stock, r.destination_current_stock, r.created_at,
		r.approved_by, r.approved_at, r.rejected_by, r.rejected_at, r.rejection_reason,
		COALESCE(fs.facility_name, ''), COALESCE(fd.facility_name, ''), COALESCE(m.item_name, '')
	FROM recommendations r
	LEFT JOIN facilities fs ON r.source_facility_id = fs.facility_id
	LEFT JOIN facilities fd ON r.destination_facility_id = fd.facility_id
	LEFT JOIN items m ON r.item_id = m.item_id`

// ListPending returns PENDING recommendations ordered by priority descending,
// then creation time descending, then id descending.
func (r *RecommendationRepository) ListPending(ctx context.Context) ([]domain.RecommendationView, error) {
	return r.queryViews(ctx, "recommendations.ListPending", selectRecommendationView+`
		WHERE r.status = 'PENDING'
		ORDER BY r.priority_score DESC, r.created_at DESC, r.recommendation_id DESC`)
}

// ListByStatus returns APPROVED recommendations by approval time or REJECTED ones by rejection time
func (r *RecommendationRepository) ListByStatus(ctx context.Context, status domain.RecommendationStatus, limit int) ([]domain.RecommendationView, error) {
	const op = "recommendations.ListByStatus"

	var order string
	switch status {
	case domain.StatusPending:
		return r.ListPending(ctx)
	case domain.StatusApproved:
		order = `r.approved_at DESC, r.recommendation_id DESC`
	case domain.StatusRejected:
		order = `r.rejected_at DESC, r.recommendation_id DESC`
	default:
		return nil, domain.NewError(domain.KindValidation, op, "unknown status %q", status)
	}

	query := selectRecommendationView + ` WHERE r.status = ? ORDER BY ` + order
	args := []interface{}{string(status)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return r.queryViews(ctx, op, query, args...)
}

// GetByID returns a recommendation with display names
func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*domain.RecommendationView, error) {
	const op = "recommendations.GetByID"

	row := r.db.QueryRowContext(ctx, selectRecommendationView+` WHERE r.recommendation_id = ?`, id)
	view, err := scanRecommendationView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.KindNotFound, op, "recommendation %s not found", id)
	}
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query recommendation %s", id)
	}
	return &view, nil
}

// SetStatus performs the guarded PENDING -> next transition as a single conditional UPDATE.
// When no row changes a follow-up read distinguishes NotFound from InvalidTransition.
func (r *RecommendationRepository) SetStatus(ctx context.Context, id string, next domain.RecommendationStatus, change StatusChange) (*domain.Recommendation, error) {
	const op = "recommendations.SetStatus"

	if !domain.StatusPending.CanTransitionTo(next) {
		return nil, domain.NewError(domain.KindInvalidTransition, op, "cannot transition to %s", next)
	}

	at := change.At
	if at.IsZero() {
		at = time.Now()
	}

	var query string
	var args []interface{}
	switch next {
	case domain.StatusApproved:
		query = `UPDATE recommendations SET status = 'APPROVED', approved_by = ?, approved_at = ?
			WHERE recommendation_id = ? AND status = 'PENDING'`
		args = []interface{}{change.Actor, at.UnixNano(), id}
	case domain.StatusRejected:
		query = `UPDATE recommendations SET status = 'REJECTED', rejected_by = ?, rejected_at = ?, rejection_reason = ?
			WHERE recommendation_id = ? AND status = 'PENDING'`
		args = []interface{}{change.Actor, at.UnixNano(), change.Reason, id}
	}

	row := r.db.QueryRowContext(ctx, query+` RETURNING `+recommendationColumns, args...)
	rec, err := scanRecommendation(row)
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.KindPersistence, op, err, "failed to update recommendation %s", id)
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM recommendations WHERE recommendation_id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.KindNotFound, op, "recommendation %s not found", id)
	}
	if err != nil {
		return nil, domain.WrapError(domain.KindPersistence, op, err, "failed to read recommendation %s", id)
	}

	return nil, domain.NewError(domain.KindInvalidTransition, op, "recommendation %s is %s, not PENDING", id, current)
}

// CountPending returns the number of PENDING recommendations
func (r *RecommendationRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recommendations WHERE status = 'PENDING'`).Scan(&n)
	if err != nil {
		return 0, domain.WrapError(domain.KindDataUnavailable, "recommendations.CountPending", err, "failed to count pending recommendations")
	}
	return n, nil
}

func (r *RecommendationRepository) queryViews(ctx context.Context, op, query string, args ...interface{}) ([]domain.RecommendationView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to query recommendations")
	}
	defer rows.Close()

	views := make([]domain.RecommendationView, 0)
	for rows.Next() {
		view, err := scanRecommendationView(rows)
		if err != nil {
			return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "failed to scan recommendation")
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindDataUnavailable, op, err, "error iterating recommendations")
	}

	return views, nil
}

const recommendationColumns = `recommendation_id, source_facility_id, destination_facility_id, item_id,
	quantity_to_move, priority_score, distance_km, reason, status,
	source_current_stock, destination_current_stock, created_at,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason`

type scanner interface {
	Scan(dest ...interface{}) error
}

// recommendationRow holds the nullable columns shared by both scan paths
type recommendationRow struct {
	rec             domain.Recommendation
	status          string
	createdAt       int64
	approvedBy      sql.NullString
	approvedAt      sql.NullInt64
	rejectedBy      sql.NullString
	rejectedAt      sql.NullInt64
	rejectionReason sql.NullString
}

func (row *recommendationRow) dest() []interface{} {
	return []interface{}{
		&row.rec.ID,
		&row.rec.SourceFacilityID,
		&row.rec.DestinationFacilityID,
		&row.rec.ItemID,
		&row.rec.Quantity,
		&row.rec.PriorityScore,
		&row.rec.DistanceKm,
		&row.rec.Reason,
		&row.status,
		&row.rec.SourceStock,
		&row.rec.DestinationStock,
		&row.createdAt,
		&row.approvedBy,
		&row.approvedAt,
		&row.rejectedBy,
		&row.rejectedAt,
		&row.rejectionReason,
	}
}

func (row *recommendationRow) finish() domain.Recommendation {
	rec := row.rec
	rec.Status = domain.RecommendationStatus(row.status)
	rec.CreatedAt = time.Unix(0, row.createdAt).UTC()
	rec.ApprovedBy = row.approvedBy.String
	rec.RejectedBy = row.rejectedBy.String
	rec.RejectionReason = row.rejectionReason.String
	if row.approvedAt.Valid {
		t := time.Unix(0, row.approvedAt.Int64).UTC()
		rec.ApprovedAt = &t
	}
	if row.rejectedAt.Valid {
		t := time.Unix(0, row.rejectedAt.Int64).UTC()
		rec.RejectedAt = &t
	}
	return rec
}

func scanRecommendation(s scanner) (domain.Recommendation, error) {
	var row recommendationRow
	if err := s.Scan(row.dest()...); err != nil {
		return domain.Recommendation{}, err
	}
	return row.finish(), nil
}

func scanRecommendationView(s scanner) (domain.RecommendationView, error) {
	var row recommendationRow
	var sourceName, destinationName, itemName string

	dest := append(row.dest(), &sourceName, &destinationName, &itemName)
	if err := s.Scan(dest...); err != nil {
		return domain.RecommendationView{}, err
	}

	return domain.NewRecommendationView(row.finish(), sourceName, destinationName, itemName), nil
}
