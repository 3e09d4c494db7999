package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecopath/ecopath/internal/events"
)

const backupTimeout = 30 * time.Minute

// BackupJob uploads a database backup and prunes expired archives
type BackupJob struct {
	log           zerolog.Logger
	backups       BackupServiceInterface
	retentionDays int
	events        events.Emitter
}

// NewBackupJob creates a new BackupJob
func NewBackupJob(backups BackupServiceInterface, retentionDays int) *BackupJob {
	return &BackupJob{
		log:           zerolog.Nop(),
		backups:       backups,
		retentionDays: retentionDays,
	}
}

// SetLogger sets the logger for the job
func (j *BackupJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// SetEmitter publishes completed backups to e
func (j *BackupJob) SetEmitter(e events.Emitter) {
	j.events = e
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run uploads a backup, then rotates. A rotation failure does not fail the job.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	info, err := j.backups.CreateAndUploadBackup(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	j.log.Info().Str("archive", info.Filename).Msg("Scheduled backup uploaded")
	if j.events != nil {
		j.events.EmitTyped("scheduler", &events.BackupCompletedData{Filename: info.Filename, SizeBytes: info.SizeBytes})
	}

	if _, err := j.backups.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	return nil
}
