// Package reliability holds the scheduled jobs that keep the databases healthy,
// verify snapshot integrity and ship backups offsite.
package reliability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// Disk space thresholds in GB
const (
	criticalFreeGB = 0.5
	lowFreeGB      = 2.0
)

// MaintenanceJob checks integrity and truncates the WAL of every database
type MaintenanceJob struct {
	databases map[string]*database.DB
	dataDir   string
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(databases map[string]*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	defer utils.OperationTimer("maintenance", j.log)()
	j.log.Info().Msg("Starting maintenance")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		db := j.databases[name]

		j.log.Debug().Str("database", name).Msg("Running integrity check")
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().
				Str("database", name).
				Err(err).
				Msg("CRITICAL: Database failed integrity check")
			return fmt.Errorf("integrity check failed for %s: %w", name, err)
		}

		// Checkpoint failures are not fatal
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().
				Str("database", name).
				Err(err).
				Msg("WAL checkpoint failed")
		}

		j.logStats(name, db)
	}

	return j.checkDiskSpace()
}

func (j *MaintenanceJob) logStats(name string, db *database.DB) {
	stats, err := db.GetStats()
	if err != nil {
		j.log.Error().
			Str("database", name).
			Err(err).
			Msg("Failed to get metrics")
		return
	}

	j.log.Info().
		Str("database", name).
		Float64("size_mb", float64(stats.SizeBytes)/1024/1024).
		Float64("wal_size_mb", float64(stats.WALSizeBytes)/1024/1024).
		Int64("free_pages", stats.FreelistCount).
		Msg("Database metrics")
}

// checkDiskSpace fails the run when the data directory is nearly full
func (j *MaintenanceJob) checkDiskSpace() error {
	usage, err := disk.Usage(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(usage.Free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	if availableGB < criticalFreeGB {
		j.log.Error().
			Float64("available_gb", availableGB).
			Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("only %.2f GB free in %s", availableGB, j.dataDir)
	}
	if availableGB < lowFreeGB {
		j.log.Warn().
			Float64("available_gb", availableGB).
			Msg("Disk space running low")
	}
	return nil
}

// IntegrityVerifier recomputes snapshot checksums
type IntegrityVerifier interface {
	VerifyIntegrity() (*snapshots.IntegrityReport, error)
}

// SnapshotIntegrityJob verifies that no stored snapshot has been altered
type SnapshotIntegrityJob struct {
	verifier IntegrityVerifier
	log      zerolog.Logger
}

// NewSnapshotIntegrityJob creates a new snapshot integrity job
func NewSnapshotIntegrityJob(verifier IntegrityVerifier, log zerolog.Logger) *SnapshotIntegrityJob {
	return &SnapshotIntegrityJob{
		verifier: verifier,
		log:      log.With().Str("job", "snapshot_integrity").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *SnapshotIntegrityJob) Name() string {
	return "snapshot_integrity"
}

// Run executes the snapshot integrity job
func (j *SnapshotIntegrityJob) Run() error {
	defer utils.OperationTimer("snapshot_integrity", j.log)()

	report, err := j.verifier.VerifyIntegrity()
	if err != nil {
		return fmt.Errorf("failed to verify snapshots: %w", err)
	}

	if len(report.Violations) > 0 {
		return fmt.Errorf("%d of %d snapshots failed checksum verification", len(report.Violations), report.Checked)
	}

	j.log.Info().Int("checked", report.Checked).Msg("Snapshot integrity verified")
	return nil
}

// BackupJob archives every database and rotates old archives
type BackupJob struct {
	service       *BackupService
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		timeout:       30 * time.Minute,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	defer utils.OperationTimer("backup", j.log)()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.service.BackupAndRotate(ctx, j.retentionDays)
	return err
}
