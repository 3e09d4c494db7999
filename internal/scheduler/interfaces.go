package scheduler

import (
	"context"

	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/ecopath/ecopath/internal/modules/redistribution"
	"github.com/ecopath/ecopath/internal/reliability"
)

// RecommendationGenerator is satisfied by *redistribution.Service
type RecommendationGenerator interface {
	Generate(ctx context.Context) (*redistribution.GenerateResult, error)
}

// AnomalyDetector is satisfied by *inventory.Service
type AnomalyDetector interface {
	DetectAnomalies(ctx context.Context) (*inventory.AnomalyReport, error)
}

// BackupServiceInterface is satisfied by *reliability.BackupService
type BackupServiceInterface interface {
	CreateAndUploadBackup(ctx context.Context) (*reliability.BackupInfo, error)
	RotateOldBackups(ctx context.Context, retentionDays int) (int, error)
}

var (
	_ RecommendationGenerator = (*redistribution.Service)(nil)
	_ AnomalyDetector         = (*inventory.Service)(nil)
	_ BackupServiceInterface  = (*reliability.BackupService)(nil)
	_ Job                     = (*reliability.MaintenanceJob)(nil)
)
