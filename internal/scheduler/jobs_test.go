package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/ecopath/ecopath/internal/events"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/ecopath/ecopath/internal/modules/redistribution"
	"github.com/ecopath/ecopath/internal/reliability"
	testingpkg "github.com/ecopath/ecopath/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls  int
	result *redistribution.GenerateResult
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context) (*redistribution.GenerateResult, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	return s.result, s.err
}

type stubDetector struct {
	report *inventory.AnomalyReport
	err    error
}

func (s *stubDetector) DetectAnomalies(ctx context.Context) (*inventory.AnomalyReport, error) {
	return s.report, s.err
}

type stubBackups struct {
	backupErr     error
	rotateErr     error
	rotated       bool
	retentionDays int
}

func (s *stubBackups) CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error) {
	if s.backupErr != nil {
		return nil, s.backupErr
	}
	return &reliability.BackupInfo{Filename: "ecopath-backup-2026-01-01-000000.tar.gz"}, nil
}

func (s *stubBackups) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	s.rotated = true
	s.retentionDays = retentionDays
	return 0, s.rotateErr
}

func TestGenerateRecommendationsJob(t *testing.T) {
	gen := &stubGenerator{result: &redistribution.GenerateResult{GeneratedCount: 2}}
	job := NewGenerateRecommendationsJob(gen)
	job.SetLogger(zerolog.Nop())

	assert.Equal(t, "generate_recommendations", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, gen.calls)

	gen.err = errors.New("inventory unavailable")
	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory unavailable")
}

func TestAnomalyScanJob(t *testing.T) {
	days := 5
	detector := &stubDetector{report: &inventory.AnomalyReport{
		Understocked: []inventory.AnomalyEntry{},
		Overstocked:  []inventory.AnomalyEntry{},
		NearExpiry: []inventory.AnomalyEntry{
			{Kind: inventory.AnomalyNearExpiry, FacilityID: "HOSP-01", ItemID: "MED-AMX", DaysUntilExpiry: &days},
		},
		TotalIssues: 1,
	}}
	job := NewAnomalyScanJob(detector)
	recorder := &testingpkg.RecordingEmitter{}
	job.SetEmitter(recorder)

	assert.Equal(t, "anomaly_scan", job.Name())
	assert.NoError(t, job.Run())
	assert.Equal(t, []events.EventType{events.AnomaliesDetected}, recorder.Types())

	// A clean scan publishes nothing
	detector.report = &inventory.AnomalyReport{}
	assert.NoError(t, job.Run())
	assert.Len(t, recorder.Events, 1)

	detector.err = errors.New("db down")
	assert.Error(t, job.Run())
}

func TestBackupJob(t *testing.T) {
	t.Run("uploads then rotates", func(t *testing.T) {
		backups := &stubBackups{}
		job := NewBackupJob(backups, 14)
		recorder := &testingpkg.RecordingEmitter{}
		job.SetEmitter(recorder)

		require.NoError(t, job.Run())
		assert.Equal(t, []events.EventType{events.BackupCompleted}, recorder.Types())
		assert.True(t, backups.rotated)
		assert.Equal(t, 14, backups.retentionDays)
	})

	t.Run("rotation failure is not fatal", func(t *testing.T) {
		backups := &stubBackups{rotateErr: errors.New("list failed")}
		assert.NoError(t, NewBackupJob(backups, 30).Run())
	})

	t.Run("upload failure skips rotation", func(t *testing.T) {
		backups := &stubBackups{backupErr: errors.New("bucket unreachable")}
		err := NewBackupJob(backups, 30).Run()
		require.Error(t, err)
		assert.False(t, backups.rotated)
	})
}
