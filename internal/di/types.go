// Package di provides dependency injection wiring and initialization.
//
// Container holds every long-lived instance. It is built once by Wire and
// passed to the server so handlers share the same services and event bus.
package di

import (
	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/events"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
	"github.com/widia-io/widia-flip-sub001/internal/modules/settings"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
	"github.com/widia-io/widia-flip-sub001/internal/reliability"
	"github.com/widia-io/widia-flip-sub001/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Databases
	AnalysisDB *database.DB // live inputs, rates, payments
	LedgerDB   *database.DB // append-only snapshots

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Repositories
	PropertyRepo *properties.Repository
	SettingsRepo *settings.Repository
	RatesRepo    *rates.Repository
	AnalysisRepo *analysis.Repository
	SnapshotRepo *snapshots.Repository

	// Services
	PropertyService *properties.Service
	SettingsService *settings.Service
	RatesService    *rates.Service
	AnalysisService *analysis.Service
	SnapshotService *snapshots.Service
	BackupService   *reliability.BackupService

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the scheduled jobs so they can be triggered manually
type JobInstances struct {
	Maintenance       scheduler.Job
	SnapshotIntegrity scheduler.Job
	Backup            scheduler.Job
}

// Databases returns the open databases keyed by name
func (c *Container) Databases() map[string]*database.DB {
	dbs := make(map[string]*database.DB, 2)
	if c.AnalysisDB != nil {
		dbs[c.AnalysisDB.Name()] = c.AnalysisDB
	}
	if c.LedgerDB != nil {
		dbs[c.LedgerDB.Name()] = c.LedgerDB
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() {
	for _, db := range c.Databases() {
		db.Close()
	}
}
