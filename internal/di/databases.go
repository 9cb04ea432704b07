package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/database"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// analysis.db - live editable state
	analysisDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, database.NameAnalysis+".db"),
		Profile: database.ProfileStandard,
		Name:    database.NameAnalysis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis database: %w", err)
	}
	container.AnalysisDB = analysisDB

	// ledger.db - snapshot history, maximum durability
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, database.NameLedger+".db"),
		Profile: database.ProfileLedger,
		Name:    database.NameLedger,
	})
	if err != nil {
		analysisDB.Close()
		return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	for _, db := range []*database.DB{analysisDB, ledgerDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized and schemas applied")

	return container, nil
}
