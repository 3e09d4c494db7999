package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	report *inventory.AnomalyReport
	err    error
}

func (s stubDetector) DetectAnomalies(ctx context.Context) (*inventory.AnomalyReport, error) {
	return s.report, s.err
}

type stubLister struct {
	recs []domain.RecommendationView
	err  error
}

func (s stubLister) ListPending(ctx context.Context) ([]domain.RecommendationView, error) {
	return s.recs, s.err
}

func rec(priority, qty int, distance float64) domain.RecommendationView {
	return domain.RecommendationView{Recommendation: domain.Recommendation{
		PriorityScore: priority,
		Quantity:      qty,
		DistanceKm:    distance,
	}}
}

func TestComputePendingStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, PendingStats{}, ComputePendingStats(nil))
	})

	t.Run("single recommendation has zero deviation", func(t *testing.T) {
		stats := ComputePendingStats([]domain.RecommendationView{rec(44, 80, 9.6)})
		assert.Equal(t, 44.0, stats.MeanPriority)
		assert.Equal(t, 0.0, stats.StdDevPriority)
		assert.InDelta(t, 9.6, stats.MeanDistanceKm, 1e-9)
		assert.Equal(t, 80.0, stats.TotalQuantity)
		assert.Equal(t, 0, stats.HighPriority)
	})

	t.Run("several", func(t *testing.T) {
		stats := ComputePendingStats([]domain.RecommendationView{
			rec(40, 20, 2),
			rec(60, 30, 4),
			rec(80, 50, 6),
		})
		assert.InDelta(t, 60.0, stats.MeanPriority, 1e-9)
		assert.InDelta(t, 20.0, stats.StdDevPriority, 1e-9)
		assert.InDelta(t, 4.0, stats.MeanDistanceKm, 1e-9)
		assert.Equal(t, 100.0, stats.TotalQuantity)
		assert.Equal(t, 2, stats.HighPriority)
	})
}

func TestService_Summary(t *testing.T) {
	report := &inventory.AnomalyReport{
		Understocked: []inventory.AnomalyEntry{{FacilityID: "CLIN-01"}},
		Overstocked:  []inventory.AnomalyEntry{},
		NearExpiry:   []inventory.AnomalyEntry{{FacilityID: "CLIN-01"}},
		TotalIssues:  2,
	}
	svc := NewService(stubDetector{report: report}, stubLister{recs: []domain.RecommendationView{rec(44, 80, 9.6)}}, zerolog.Nop())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Counts.StockIssues)
	assert.Equal(t, 1, summary.Counts.PendingRedistributions)
	assert.Same(t, report, summary.Anomalies)
	assert.Equal(t, 44.0, summary.Stats.MeanPriority)
}

func TestService_Summary_PropagatesFailure(t *testing.T) {
	unavailable := domain.NewError(domain.KindDataUnavailable, "inventory.ListSnapshot", "store down")

	svc := NewService(stubDetector{err: unavailable}, stubLister{}, zerolog.Nop())
	_, err := svc.Summary(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	svc = NewService(stubDetector{report: &inventory.AnomalyReport{}}, stubLister{err: errors.New("boom")}, zerolog.Nop())
	_, err = svc.Summary(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestService_Summary_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	svc := NewService(stubDetector{report: &inventory.AnomalyReport{}}, stubLister{err: errors.New("boom")}, log)
	_, err := svc.Summary(context.Background())
	require.Error(t, err)

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"service":"dashboard"`)
	assert.Contains(t, buf.String(), "boom")
}
