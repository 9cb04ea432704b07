package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/events"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
	"github.com/widia-io/widia-flip-sub001/internal/modules/settings"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
	"github.com/widia-io/widia-flip-sub001/internal/reliability"
	"github.com/widia-io/widia-flip-sub001/internal/scheduler"
)

// InitializeServices creates the event bus and every service.
// Order matters: settings before properties and rates, rates before analysis,
// analysis before snapshots.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	container.SettingsService = settings.NewService(container.SettingsRepo, container.EventManager, log)
	container.PropertyService = properties.NewService(container.PropertyRepo, container.SettingsService, container.EventManager, log)
	container.RatesService = rates.NewService(container.RatesRepo, container.PropertyRepo, container.SettingsService, container.EventManager, log)
	container.AnalysisService = analysis.NewService(container.AnalysisRepo, container.PropertyRepo, container.RatesService, container.EventManager, log)
	container.SnapshotService = snapshots.NewService(container.SnapshotRepo, container.AnalysisService, container.PropertyRepo, container.EventManager, log)

	var store reliability.ObjectStore
	if cfg.Backup.Enabled() {
		r2, err := reliability.NewR2Client(context.Background(), cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create r2 client: %w", err)
		}
		store = r2
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Offsite backup enabled")
	} else {
		log.Info().Msg("Offsite backup not configured, keeping local archives only")
	}
	container.BackupService = reliability.NewBackupService(container.Databases(), store, cfg.DataDir, container.EventManager, log)

	container.Scheduler = scheduler.New(container.EventManager, log)

	log.Debug().Msg("Services initialized")
	return nil
}
