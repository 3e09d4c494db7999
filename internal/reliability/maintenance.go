package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/ecopath/ecopath/internal/database"
)

const (
	// CriticalFreeBytes halts maintenance with an error
	CriticalFreeBytes uint64 = 500 * 1000 * 1000
	// LowFreeBytes only warns
	LowFreeBytes uint64 = 5 * 1000 * 1000 * 1000

	maintenanceTimeout = 5 * time.Minute
)

// MaintenanceReport summarises one maintenance pass
type MaintenanceReport struct {
	Databases     []string                   `json:"databases"`
	Stats         map[string]*database.Stats `json:"stats"`
	FreeDiskBytes uint64                     `json:"free_disk_bytes"`
	Duration      time.Duration              `json:"duration"`
}

// MaintenanceJob checks database integrity, truncates WAL files and watches free disk space
type MaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	diskUsage func(path string) (*disk.UsageStat, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job for the given databases
func NewMaintenanceJob(dataDir string, log zerolog.Logger, databases ...*database.DB) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		diskUsage: disk.Usage,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Run executes the job for the scheduler
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), maintenanceTimeout)
	defer cancel()

	_, err := j.RunMaintenance(ctx)
	return err
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// RunMaintenance performs one pass. A failed integrity check or critically low
// disk space is an error; a failed WAL checkpoint is only logged.
func (j *MaintenanceJob) RunMaintenance(ctx context.Context) (*MaintenanceReport, error) {
	j.log.Info().Msg("Starting maintenance")
	startTime := time.Now()

	report := &MaintenanceReport{
		Databases: make([]string, 0, len(j.databases)),
		Stats:     make(map[string]*database.Stats, len(j.databases)),
	}

	for _, db := range j.databases {
		report.Databases = append(report.Databases, db.Name())

		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("CRITICAL: integrity check failed")
			return report, fmt.Errorf("integrity check failed for %s: %w", db.Name(), err)
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}

		stats, err := db.GetStats()
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
			continue
		}
		report.Stats[db.Name()] = stats
		j.log.Info().
			Str("database", db.Name()).
			Int64("size_bytes", stats.SizeBytes).
			Int64("wal_size_bytes", stats.WALSizeBytes).
			Int64("freelist_count", stats.FreelistCount).
			Msg("Database stats")
	}

	free, err := j.checkDiskSpace()
	report.FreeDiskBytes = free
	if err != nil {
		return report, err
	}

	report.Duration = time.Since(startTime)
	j.log.Info().Dur("duration_ms", report.Duration).Msg("Maintenance completed")

	return report, nil
}

func (j *MaintenanceJob) checkDiskSpace() (uint64, error) {
	usage, err := j.diskUsage(j.dataDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", j.dataDir, err)
	}

	availableGB := float64(usage.Free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	switch {
	case usage.Free < CriticalFreeBytes:
		j.log.Error().Float64("available_gb", availableGB).Msg("CRITICAL: insufficient disk space")
		return usage.Free, fmt.Errorf("only %.2f GB free on %s", availableGB, j.dataDir)
	case usage.Free < LowFreeBytes:
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}

	return usage.Free, nil
}
