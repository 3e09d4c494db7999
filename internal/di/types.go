// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/ecopath/ecopath/internal/database"
	"github.com/ecopath/ecopath/internal/events"
	"github.com/ecopath/ecopath/internal/modules/dashboard"
	"github.com/ecopath/ecopath/internal/modules/inventory"
	"github.com/ecopath/ecopath/internal/modules/redistribution"
	"github.com/ecopath/ecopath/internal/reliability"
	"github.com/ecopath/ecopath/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire and handed to the server and main.
type Container struct {
	// Databases
	InventoryDB *database.DB // Facilities, stock positions, recommendations, movement journal

	// Repositories
	InventoryRepo      *inventory.Repository
	RecommendationRepo redistribution.RecommendationRepositoryInterface

	// Event bus shared by services, jobs and the SSE stream
	EventBus *events.Bus

	// Services
	InventoryService      *inventory.Service
	RedistributionService *redistribution.Service
	DashboardService      *dashboard.Service
	BackupService         *reliability.BackupService // nil when backups are not configured

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs so they can be triggered manually
type JobInstances struct {
	GenerateRecommendations *scheduler.GenerateRecommendationsJob
	AnomalyScan             *scheduler.AnomalyScanJob
	Maintenance             *reliability.MaintenanceJob
	Backup                  *scheduler.BackupJob // nil when backups are not configured
}

// Close releases the databases held by the container
func (c *Container) Close() error {
	if c == nil || c.InventoryDB == nil {
		return nil
	}
	return c.InventoryDB.Close()
}
