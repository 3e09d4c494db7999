package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/events"
)

const anomalyScanTimeout = time.Minute

// AnomalyScanJob logs the current stock anomalies
type AnomalyScanJob struct {
	log      zerolog.Logger
	detector AnomalyDetector
	events   events.Emitter
}

// NewAnomalyScanJob creates a new AnomalyScanJob
func NewAnomalyScanJob(detector AnomalyDetector) *AnomalyScanJob {
	return &AnomalyScanJob{
		log:      zerolog.Nop(),
		detector: detector,
	}
}

// SetLogger sets the logger for the job
func (j *AnomalyScanJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// SetEmitter publishes scan results that contain issues to e
func (j *AnomalyScanJob) SetEmitter(e events.Emitter) {
	j.events = e
}

// Name returns the job name
func (j *AnomalyScanJob) Name() string {
	return "anomaly_scan"
}

// Run detects anomalies and logs the totals. Near-expiry entries are logged individually.
func (j *AnomalyScanJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), anomalyScanTimeout)
	defer cancel()

	report, err := j.detector.DetectAnomalies(ctx)
	if err != nil {
		return fmt.Errorf("failed to detect anomalies: %w", err)
	}

	event := j.log.Info()
	if report.TotalIssues > 0 {
		event = j.log.Warn()
	}
	event.
		Int("understocked", len(report.Understocked)).
		Int("overstocked", len(report.Overstocked)).
		Int("near_expiry", len(report.NearExpiry)).
		Int("total_issues", report.TotalIssues).
		Msg("Anomaly scan completed")

	if j.events != nil && report.TotalIssues > 0 {
		j.events.EmitTyped("scheduler", &events.AnomaliesDetectedData{
			Understocked: len(report.Understocked),
			Overstocked:  len(report.Overstocked),
			NearExpiry:   len(report.NearExpiry),
			TotalIssues:  report.TotalIssues,
		})
	}

	for _, entry := range report.NearExpiry {
		days := 0
		if entry.DaysUntilExpiry != nil {
			days = *entry.DaysUntilExpiry
		}
		j.log.Warn().
			Str("facility_id", entry.FacilityID).
			Str("item_id", entry.ItemID).
			Int("days_until_expiry", days).
			Msg("Stock nearing expiry")
	}

	return nil
}
