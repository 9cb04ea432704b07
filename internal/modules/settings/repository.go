// Package settings manages workspace-level default rates.
// This file implements the Repository, which handles the workspace_settings table
// in the analysis database.
package settings

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles workspace settings database operations.
//
// Rows are created by the service on first access, so every workspace that
// has been read has a fully populated rate set.
type Repository struct {
	db  *sql.DB        // analysis.db - workspace_settings table
	log zerolog.Logger // Structured logger
}

// NewRepository creates a new workspace settings repository.
//
// Parameters:
//   - db: Database connection to analysis.db
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves the settings of a workspace.
// Returns nil if the workspace has no row yet (not an error).
//
// Parameters:
//   - workspaceID: Workspace identifier
//
// Returns:
//   - *WorkspaceSettings: Settings if found, nil if not found
//   - error: Error if query fails
func (r *Repository) Get(workspaceID string) (*WorkspaceSettings, error) {
	var s WorkspaceSettings
	var updatedAt int64
	err := r.db.QueryRow(`
		SELECT workspace_id, itbi_rate, registry_rate, broker_rate, pj_tax_rate, region, updated_at
		FROM workspace_settings WHERE workspace_id = ?
	`, workspaceID).Scan(&s.WorkspaceID, &s.Rates.ItbiRate, &s.Rates.RegistryRate,
		&s.Rates.BrokerRate, &s.Rates.PJTaxRate, &s.Region, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for workspace %s: %w", workspaceID, err)
	}
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &s, nil
}

// Insert creates the row for a workspace unless one already exists.
// Concurrent bootstraps are harmless: the first writer wins.
//
// Parameters:
//   - settings: Fully populated workspace settings
//
// Returns:
//   - error: Error if database operation fails
func (r *Repository) Insert(settings WorkspaceSettings) error {
	_, err := r.db.Exec(`
		INSERT INTO workspace_settings (workspace_id, itbi_rate, registry_rate, broker_rate, pj_tax_rate, region, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(workspace_id) DO NOTHING
	`, settings.WorkspaceID, settings.Rates.ItbiRate, settings.Rates.RegistryRate,
		settings.Rates.BrokerRate, settings.Rates.PJTaxRate, settings.Region, settings.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert settings for workspace %s: %w", settings.WorkspaceID, err)
	}
	return nil
}

// Update overwrites the rates and region of an existing workspace.
//
// Parameters:
//   - settings: Fully populated workspace settings
//
// Returns:
//   - error: Error if database operation fails
func (r *Repository) Update(settings WorkspaceSettings) error {
	_, err := r.db.Exec(`
		UPDATE workspace_settings
		SET itbi_rate = ?, registry_rate = ?, broker_rate = ?, pj_tax_rate = ?, region = ?, updated_at = ?
		WHERE workspace_id = ?
	`, settings.Rates.ItbiRate, settings.Rates.RegistryRate, settings.Rates.BrokerRate,
		settings.Rates.PJTaxRate, settings.Region, settings.UpdatedAt.Unix(), settings.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to update settings for workspace %s: %w", settings.WorkspaceID, err)
	}
	return nil
}
