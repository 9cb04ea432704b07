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
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/events"
)

const (
	archivePrefix    = "flip-backup-"
	archiveSuffix    = ".tar.gz"
	archiveTimeFmt   = "2006-01-02-150405"
	metadataFile     = "backup-metadata.json"
	minBackupsToKeep = 3
)

// BackupService creates consistent archives of every database and ships them offsite
type BackupService struct {
	databases    map[string]*database.DB
	store        ObjectStore // nil keeps archives local only
	dataDir      string
	eventManager *events.Manager
	log          zerolog.Logger
	now          func() time.Time
}

// BackupMetadata contains metadata about a backup
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata contains metadata about a single database in the backup
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo represents information about a stored backup
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// BackupResult describes one completed backup run
type BackupResult struct {
	Archive   string `json:"archive"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Uploaded  bool   `json:"uploaded"`
}

// NewBackupService creates a new backup service
func NewBackupService(
	databases map[string]*database.DB,
	store ObjectStore,
	dataDir string,
	eventManager *events.Manager,
	log zerolog.Logger,
) *BackupService {
	return &BackupService{
		databases:    databases,
		store:        store,
		dataDir:      dataDir,
		eventManager: eventManager,
		log:          log.With().Str("service", "backup").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// BackupDir is where local archives are kept
func (s *BackupService) BackupDir() string {
	return filepath.Join(s.dataDir, "backups")
}

// CreateBackup writes a tar.gz of every database into the backup directory and
// uploads it when an object store is configured
func (s *BackupService) CreateBackup(ctx context.Context) (*BackupResult, error) {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	if err := os.MkdirAll(s.BackupDir(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	names := s.databaseNames()
	timestamp := s.now()
	metadata := BackupMetadata{
		Timestamp: timestamp,
		Version:   "1",
		Databases: make([]DatabaseMetadata, 0, len(names)),
	}

	files := make([]string, 0, len(names)+1)
	for _, name := range names {
		filename := name + ".db"
		dest := filepath.Join(stagingDir, filename)

		s.log.Debug().Str("database", name).Msg("Backing up database")
		if err := s.databases[name].VacuumInto(dest); err != nil {
			return nil, fmt.Errorf("failed to backup %s: %w", name, err)
		}

		info, err := os.Stat(dest)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s backup: %w", name, err)
		}
		checksum, err := fileChecksum(dest)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate checksum for %s: %w", name, err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFile)

	archiveName := archivePrefix + timestamp.Format(archiveTimeFmt) + archiveSuffix
	archivePath := filepath.Join(s.BackupDir(), archiveName)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	result := &BackupResult{Archive: archiveName, Path: archivePath, SizeBytes: archiveInfo.Size()}

	if s.store != nil {
		archiveFile, err := os.Open(archivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}
		defer archiveFile.Close()

		if err := s.store.Upload(ctx, archiveName, archiveFile, archiveInfo.Size()); err != nil {
			return nil, fmt.Errorf("failed to upload to r2: %w", err)
		}
		result.Uploaded = true
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Bool("uploaded", result.Uploaded).
		Msg("Backup completed successfully")

	return result, nil
}

// ListBackups lists stored backups, newest first. Remote backups are listed when
// an object store is configured, local archives otherwise.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	var objects []StoredObject
	if s.store != nil {
		remote, err := s.store.List(ctx, archivePrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list r2 backups: %w", err)
		}
		objects = remote
	} else {
		local, err := s.listLocal()
		if err != nil {
			return nil, err
		}
		objects = local
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		timestamp, ok := parseArchiveName(obj.Key)
		if !ok {
			s.log.Warn().Str("filename", obj.Key).Msg("Failed to parse timestamp from filename")
			continue
		}
		backups = append(backups, BackupInfo{
			Filename:  obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.SizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups older than the retention period.
// The newest three are always kept; retentionDays == 0 keeps everything.
// Local archives are rotated with the same rule. Returns how many were deleted.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	s.log.Info().Int("retention_days", retentionDays).Msg("Starting backup rotation")

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) <= minBackupsToKeep || retentionDays == 0 {
		s.log.Info().Int("count", len(backups)).Msg("Nothing to rotate")
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for i, backup := range backups {
		if i < minBackupsToKeep || !backup.Timestamp.Before(cutoff) {
			continue
		}

		if err := s.deleteBackup(ctx, backup.Filename); err != nil {
			s.log.Error().
				Err(err).
				Str("filename", backup.Filename).
				Msg("Failed to delete old backup")
			continue
		}

		s.log.Info().
			Str("filename", backup.Filename).
			Time("timestamp", backup.Timestamp).
			Msg("Deleted old backup")
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")

	return deleted, nil
}

// BackupAndRotate runs a backup followed by rotation and emits BACKUP_COMPLETED
func (s *BackupService) BackupAndRotate(ctx context.Context, retentionDays int) (*BackupResult, error) {
	result, err := s.CreateBackup(ctx)
	if err != nil {
		return nil, err
	}

	rotated, err := s.RotateOldBackups(ctx, retentionDays)
	if err != nil {
		// The new archive exists; rotation will catch up next run
		s.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	if s.eventManager != nil {
		s.eventManager.EmitTyped("reliability", &events.BackupCompletedData{
			Key:       result.Archive,
			SizeBytes: result.SizeBytes,
			Rotated:   rotated,
		})
	}
	return result, nil
}

func (s *BackupService) deleteBackup(ctx context.Context, filename string) error {
	if s.store != nil {
		if err := s.store.Delete(ctx, filename); err != nil {
			return err
		}
	}
	if err := os.Remove(filepath.Join(s.BackupDir(), filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove local archive %s: %w", filename, err)
	}
	return nil
}

func (s *BackupService) listLocal() ([]StoredObject, error) {
	entries, err := os.ReadDir(s.BackupDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	objects := make([]StoredObject, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), archivePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, StoredObject{Key: entry.Name(), SizeBytes: info.Size()})
	}
	return objects, nil
}

func (s *BackupService) databaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseArchiveName extracts the timestamp from flip-backup-2026-01-08-143022.tar.gz
func parseArchiveName(filename string) (time.Time, bool) {
	if !strings.HasPrefix(filename, archivePrefix) || !strings.HasSuffix(filename, archiveSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(filename, archivePrefix), archiveSuffix)
	ts, err := time.Parse(archiveTimeFmt, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// fileChecksum calculates SHA256 checksum of a file
func fileChecksum(filePath string) (string, error) {
	file, err := os.Open(filePath)
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

// createArchive writes the named files from sourceDir into a tar.gz at archivePath
func createArchive(archivePath, sourceDir string, filenames []string) (err error) {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := archiveFile.Close(); err == nil {
			err = cerr
		}
	}()

	gzipWriter := gzip.NewWriter(archiveFile)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
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
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
