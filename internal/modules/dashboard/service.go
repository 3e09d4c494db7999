// Package dashboard combines anomaly and recommendation data into a single summary.
package dashboard

import (
	"context"

	"github.com/ecopath/ecopath/internal/domain"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AnomalyDetector is the part of the inventory service the dashboard needs
type AnomalyDetector interface {
	DetectAnomalies(ctx context.Context) (*inventory.AnomalyReport, error)
}

// PendingLister is the part of the redistribution service the dashboard needs
type PendingLister interface {
	ListPending(ctx context.Context) ([]domain.RecommendationView, error)
}

// Counts are the headline numbers
type Counts struct {
	StockIssues            int `json:"stock_issues"`
	PendingRedistributions int `json:"pending_redistributions"`
}

// PendingStats describes the pending queue
type PendingStats struct {
	MeanPriority   float64 `json:"mean_priority"`
	StdDevPriority float64 `json:"stddev_priority"`
	MeanDistanceKm float64 `json:"mean_distance_km"`
	TotalQuantity  float64 `json:"total_quantity"`
	HighPriority   int     `json:"high_priority"` // score >= HighPriorityThreshold
}

// HighPriorityThreshold is the score from which a pending transfer counts as high priority
const HighPriorityThreshold = 60

// Summary is the dashboard payload
type Summary struct {
	Counts                 Counts                      `json:"summary"`
	Stats                  PendingStats                `json:"pending_stats"`
	Anomalies              *inventory.AnomalyReport    `json:"anomalies"`
	PendingRedistributions []domain.RecommendationView `json:"pending_redistributions"`
}

// Service builds dashboard summaries
type Service struct {
	anomalies AnomalyDetector
	pending   PendingLister
	log       zerolog.Logger
}

// NewService creates a new dashboard service
func NewService(anomalies AnomalyDetector, pending PendingLister, log zerolog.Logger) *Service {
	return &Service{
		anomalies: anomalies,
		pending:   pending,
		log:       log.With().Str("service", "dashboard").Logger(),
	}
}

// Summary gathers anomalies and the pending queue. Either source failing fails the summary.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	report, err := s.anomalies.DetectAnomalies(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to detect anomalies for summary")
		return nil, err
	}

	pending, err := s.pending.ListPending(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list pending redistributions for summary")
		return nil, err
	}

	return &Summary{
		Counts: Counts{
			StockIssues:            report.TotalIssues,
			PendingRedistributions: len(pending),
		},
		Stats:                  ComputePendingStats(pending),
		Anomalies:              report,
		PendingRedistributions: pending,
	}, nil
}

// ComputePendingStats summarises priority and distance across recommendations.
// The standard deviation is zero for fewer than two recommendations.
func ComputePendingStats(recs []domain.RecommendationView) PendingStats {
	var stats PendingStats
	if len(recs) == 0 {
		return stats
	}

	priorities := make([]float64, len(recs))
	distances := make([]float64, len(recs))
	quantities := make([]float64, len(recs))
	for i, r := range recs {
		priorities[i] = float64(r.PriorityScore)
		distances[i] = r.DistanceKm
		quantities[i] = float64(r.Quantity)
		if r.PriorityScore >= HighPriorityThreshold {
			stats.HighPriority++
		}
	}

	if len(recs) > 1 {
		stats.MeanPriority, stats.StdDevPriority = stat.MeanStdDev(priorities, nil)
	} else {
		stats.MeanPriority = priorities[0]
	}
	stats.MeanDistanceKm = stat.Mean(distances, nil)
	stats.TotalQuantity = floats.Sum(quantities)

	return stats
}
