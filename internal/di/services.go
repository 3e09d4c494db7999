package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/config"
	"github.com/ecopath/ecopath/internal/events"
	"github.com/ecopath/ecopath/internal/modules/dashboard"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/ecopath/ecopath/internal/modules/redistribution"
	"github.com/ecopath/ecopath/internal/reliability"
)

// InitializeServices creates the business logic layer. The backup service is
// only created when a bucket is configured.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.InventoryRepo == nil || container.RecommendationRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}

	container.EventBus = events.NewBus(log)

	container.InventoryService = inventory.NewService(container.InventoryDB, container.InventoryRepo, log)
	container.InventoryService.SetEmitter(container.EventBus)

	container.RedistributionService = redistribution.NewService(
		container.InventoryDB,
		container.InventoryRepo,
		container.RecommendationRepo,
		log,
	)
	container.RedistributionService.SetEmitter(container.EventBus)
	container.DashboardService = dashboard.NewService(
		container.InventoryService,
		container.RedistributionService,
		log,
	)

	if cfg.Backup.Enabled() {
		store, err := reliability.NewS3Client(context.Background(), reliability.S3ClientConfig{
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			Bucket:          cfg.Backup.Bucket,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup client: %w", err)
		}
		container.BackupService = reliability.NewBackupService(store, cfg.BackupStagingDir(), log, container.InventoryDB)
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backups enabled")
	} else {
		log.Info().Msg("Backups disabled (no bucket configured)")
	}

	log.Debug().Msg("Services initialized")
	return nil
}
