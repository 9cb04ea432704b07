package di

import (
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
	"github.com/widia-io/widia-flip-sub001/internal/modules/settings"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
)

// InitializeRepositories creates all repositories on the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) {
	analysisConn := container.AnalysisDB.Conn()

	container.PropertyRepo = properties.NewRepository(analysisConn, log)
	container.SettingsRepo = settings.NewRepository(analysisConn, log)
	container.RatesRepo = rates.NewRepository(analysisConn, log)
	container.AnalysisRepo = analysis.NewRepository(analysisConn, log)

	container.SnapshotRepo = snapshots.NewRepository(container.LedgerDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
}
