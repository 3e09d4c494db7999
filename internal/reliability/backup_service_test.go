package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	testingpkg "github.com/ecopath/ecopath/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	modified  map[string]time.Time
	uploadErr error
	deleteErr map[string]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		objects:   make(map[string][]byte),
		modified:  make(map[string]time.Time),
		deleteErr: make(map[string]error),
	}
}

func (m *memoryStore) Upload(ctx context.Context, key string, body io.Reader, size int64) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: got %d want %d", len(data), size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.modified[key] = time.Now()
	return nil
}

func (m *memoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data)), LastModified: m.modified[key]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	if err := m.deleteErr[key]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gz.Close()

	files := make(map[string][]byte)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[header.Name] = content
	}
	return files
}

func TestBackupFilename_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	name := BackupFilename(created)
	assert.Equal(t, "ecopath-backup-2026-03-14-150926.tar.gz", name)

	parsed, ok := ParseBackupFilename(name)
	require.True(t, ok)
	assert.True(t, created.Equal(parsed))

	for _, bad := range []string{"ecopath-backup-latest.tar.gz", "other-2026-03-14-150926.tar.gz", "ecopath-backup-2026-03-14-150926.zip"} {
		_, ok := ParseBackupFilename(bad)
		assert.False(t, ok, bad)
	}
}

func TestCreateAndUploadBackup(t *testing.T) {
	db := testingpkg.NewInventoryDB(t)
	testingpkg.Seed(t, db.Conn(), testingpkg.NewRedistributionFixture())

	store := newMemoryStore()
	staging := t.TempDir()
	svc := NewBackupService(store, staging, zerolog.Nop(), db)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC) }

	info, err := svc.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ecopath-backup-2026-05-01-030000.tar.gz", info.Filename)
	assert.Equal(t, []string{info.Filename}, store.keys())
	assert.Equal(t, int64(len(store.objects[info.Filename])), info.SizeBytes)

	files := readArchive(t, store.objects[info.Filename])
	require.Contains(t, files, "inventory.db")
	require.Contains(t, files, metadataFilename)

	var metadata BackupMetadata
	require.NoError(t, json.Unmarshal(files[metadataFilename], &metadata))
	require.Len(t, metadata.Databases, 1)
	assert.Equal(t, "inventory", metadata.Databases[0].Name)
	assert.Equal(t, int64(len(files["inventory.db"])), metadata.Databases[0].SizeBytes)
	assert.Equal(t, fmt.Sprintf("sha256:%x", sha256.Sum256(files["inventory.db"])), metadata.Databases[0].Checksum)

	// Staging runs are removed after upload
	entries, err := os.ReadDir(staging)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateAndUploadBackup_UploadFailure(t *testing.T) {
	db := testingpkg.NewInventoryDB(t)
	store := newMemoryStore()
	store.uploadErr = errors.New("bucket unreachable")

	svc := NewBackupService(store, t.TempDir(), zerolog.Nop(), db)

	_, err := svc.CreateAndUploadBackup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unreachable")
	assert.Empty(t, store.keys())
}

func TestListBackups_NewestFirstAndSkipsForeignObjects(t *testing.T) {
	store := newMemoryStore()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{now.Add(-48 * time.Hour), now.Add(-2 * time.Hour), now.Add(-24 * time.Hour)} {
		store.objects[BackupFilename(ts)] = []byte("x")
	}
	store.objects["ecopath-backup-notes.txt"] = []byte("ignore me")

	svc := NewBackupService(store, t.TempDir(), zerolog.Nop())
	svc.now = func() time.Time { return now }

	backups, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, int64(2), backups[0].AgeHours)
	assert.Equal(t, int64(24), backups[1].AgeHours)
	assert.Equal(t, int64(48), backups[2].AgeHours)
}

func TestRotateOldBackups(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	seed := func(ages ...int) *memoryStore {
		store := newMemoryStore()
		for _, days := range ages {
			store.objects[BackupFilename(now.AddDate(0, 0, -days))] = []byte("x")
		}
		return store
	}

	t.Run("deletes expired beyond the minimum", func(t *testing.T) {
		store := seed(1, 2, 40, 50, 60)
		svc := NewBackupService(store, t.TempDir(), zerolog.Nop())
		svc.now = func() time.Time { return now }

		deleted, err := svc.RotateOldBackups(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)
		assert.Equal(t, []string{
			BackupFilename(now.AddDate(0, 0, -40)),
			BackupFilename(now.AddDate(0, 0, -2)),
			BackupFilename(now.AddDate(0, 0, -1)),
		}, store.keys())
	})

	t.Run("keeps minimum even when all expired", func(t *testing.T) {
		store := seed(100, 200, 300)
		svc := NewBackupService(store, t.TempDir(), zerolog.Nop())
		svc.now = func() time.Time { return now }

		deleted, err := svc.RotateOldBackups(context.Background(), 30)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Len(t, store.keys(), MinBackupsToKeep)
	})

	t.Run("zero retention keeps everything", func(t *testing.T) {
		store := seed(1, 100, 200, 300, 400)
		svc := NewBackupService(store, t.TempDir(), zerolog.Nop())
		svc.now = func() time.Time { return now }

		deleted, err := svc.RotateOldBackups(context.Background(), 0)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Len(t, store.keys(), 5)
	})

	t.Run("delete failure is skipped", func(t *testing.T) {
		store := seed(1, 2, 3, 40, 50)
		store.deleteErr[BackupFilename(now.AddDate(0, 0, -40))] = errors.New("denied")
		svc := NewBackupService(store, t.TempDir(), zerolog.Nop())
		svc.now = func() time.Time { return now }

		deleted, err := svc.RotateOldBackups(context.Background(), 30)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		assert.Len(t, store.keys(), 4)
	})
}
