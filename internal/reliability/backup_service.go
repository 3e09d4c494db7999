// Package reliability keeps the inventory database recoverable: off-site
// backups to an S3-compatible bucket and routine SQLite maintenance.
package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	backupPrefix          = "ecopath-backup-"
	backupSuffix          = ".tar.gz"
	backupTimestampLayout = "2006-01-02-150405"
	metadataFilename      = "backup-metadata.json"
	metadataFormatVersion = "1"

	// MinBackupsToKeep survive rotation regardless of age
	MinBackupsToKeep = 3
)

// Snapshotter produces a consistent copy of a database. *database.DB satisfies it.
type Snapshotter interface {
	Name() string
	VacuumInto(ctx context.Context, dest string) error
}

// BackupMetadata is written into every archive next to the database copies
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes one database file inside an archive
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo describes an archive stored in the bucket
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// BackupService snapshots databases into tar.gz archives and ships them to an ObjectStore
type BackupService struct {
	store      ObjectStore
	databases  []Snapshotter
	stagingDir string
	now        func() time.Time
	mu         sync.Mutex // one backup at a time
	log        zerolog.Logger
}

// NewBackupService creates a backup service staging archives under stagingDir
func NewBackupService(store ObjectStore, stagingDir string, log zerolog.Logger, databases ...Snapshotter) *BackupService {
	return &BackupService{
		store:      store,
		databases:  databases,
		stagingDir: stagingDir,
		now:        time.Now,
		log:        log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUploadBackup snapshots every database, archives the copies with a
// checksum manifest and uploads the archive.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) (*BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info().Int("databases", len(s.databases)).Msg("Starting backup")
	startTime := time.Now()

	if err := os.MkdirAll(s.stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	runDir, err := os.MkdirTemp(s.stagingDir, "run-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging run directory: %w", err)
	}
	defer os.RemoveAll(runDir)

	createdAt := s.now().UTC()
	metadata := BackupMetadata{
		Timestamp: createdAt,
		Version:   metadataFormatVersion,
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}
	files := make([]string, 0, len(s.databases)+1)

	for _, db := range s.databases {
		filename := db.Name() + ".db"
		dbPath := filepath.Join(runDir, filename)

		s.log.Debug().Str("database", db.Name()).Msg("Snapshotting database")
		if err := db.VacuumInto(ctx, dbPath); err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", db.Name(), err)
		}

		info, err := os.Stat(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s snapshot: %w", db.Name(), err)
		}
		checksum, err := fileChecksum(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum %s: %w", db.Name(), err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      db.Name(),
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFilename), metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFilename)

	archiveName := BackupFilename(createdAt)
	archivePath := filepath.Join(runDir, archiveName)
	if err := createArchive(archivePath, runDir, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archiveFile.Close()

	archiveInfo, err := archiveFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	if err := s.store.Upload(ctx, archiveName, archiveFile, archiveInfo.Size()); err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Msg("Backup completed")

	return &BackupInfo{
		Filename:  archiveName,
		Timestamp: createdAt,
		SizeBytes: archiveInfo.Size(),
	}, nil
}

// ListBackups returns the archives in the bucket, newest first.
// Objects whose names do not carry a backup timestamp are ignored.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		timestamp, ok := ParseBackupFilename(obj.Key)
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Skipping object without backup timestamp")
			continue
		}

		backups = append(backups, BackupInfo{
			Filename:  obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.Size,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes archives older than retentionDays, always keeping
// the newest MinBackupsToKeep. A retention of 0 keeps everything.
// It returns the number of archives deleted.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}

	if retentionDays <= 0 || len(backups) <= MinBackupsToKeep {
		s.log.Debug().
			Int("count", len(backups)).
			Int("retention_days", retentionDays).
			Msg("Nothing to rotate")
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, backup := range backups[MinBackupsToKeep:] {
		if !backup.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		s.log.Info().Str("filename", backup.Filename).Time("timestamp", backup.Timestamp).Msg("Deleted old backup")
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")

	return deleted, nil
}

// BackupFilename names the archive created at t
func BackupFilename(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupTimestampLayout) + backupSuffix
}

// ParseBackupFilename extracts the creation time from an archive name
func ParseBackupFilename(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
	t, err := time.Parse(backupTimestampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

// createArchive writes sourceDir/<name> for every name into a gzipped tarball
func createArchive(archivePath, sourceDir string, names []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, name := range names {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, name), name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	if err := gzipWriter.Close(); err != nil {
		return err
	}
	return archiveFile.Sync()
}

func addFileToArchive(tarWriter *tar.Writer, path, nameInArchive string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode().Perm()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
