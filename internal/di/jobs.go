package di

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/reliability"
	"github.com/widia-io/widia-flip-sub001/internal/scheduler"
)

// RegisterJobs creates the background jobs and registers them with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	retentionDays := 0
	if cfg.Backup != nil {
		retentionDays = cfg.Backup.RetentionDays
	}

	jobs := &JobInstances{
		Maintenance:       reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log),
		SnapshotIntegrity: reliability.NewSnapshotIntegrityJob(container.SnapshotService, log),
		Backup:            reliability.NewBackupJob(container.BackupService, retentionDays, log),
	}

	schedules := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.MaintenanceSchedule, jobs.Maintenance},
		{cfg.IntegritySchedule, jobs.SnapshotIntegrity},
		{cfg.BackupSchedule, jobs.Backup},
	}
	for _, s := range schedules {
		if err := container.Scheduler.AddJob(s.spec, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", s.job.Name(), err)
		}
	}

	log.Info().Int("jobs", len(schedules)).Msg("Jobs registered")
	return jobs, nil
}
