package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/config"
	"github.com/ecopath/ecopath/internal/reliability"
	"github.com/ecopath/ecopath/internal/scheduler"
)

// RegisterJobs creates the background jobs and registers them with the scheduler.
// Jobs with an empty schedule are created but never fire.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	jobs := &JobInstances{}

	jobs.GenerateRecommendations = scheduler.NewGenerateRecommendationsJob(container.RedistributionService)
	jobs.GenerateRecommendations.SetLogger(log)
	if err := sched.AddJob(cfg.GenerateSchedule, jobs.GenerateRecommendations); err != nil {
		return nil, fmt.Errorf("failed to register generate job: %w", err)
	}

	jobs.AnomalyScan = scheduler.NewAnomalyScanJob(container.InventoryService)
	jobs.AnomalyScan.SetLogger(log)
	jobs.AnomalyScan.SetEmitter(container.EventBus)
	if err := sched.AddJob(cfg.AnomalyScanSchedule, jobs.AnomalyScan); err != nil {
		return nil, fmt.Errorf("failed to register anomaly scan job: %w", err)
	}

	jobs.Maintenance = reliability.NewMaintenanceJob(cfg.DataDir, log, container.InventoryDB)
	if err := sched.AddJob(cfg.MaintenanceSchedule, jobs.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if container.BackupService != nil {
		jobs.Backup = scheduler.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays)
		jobs.Backup.SetLogger(log)
		jobs.Backup.SetEmitter(container.EventBus)
		if err := sched.AddJob(cfg.Backup.Schedule, jobs.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	container.Scheduler = sched
	return jobs, nil
}
