// Package properties keeps the engine's minimal directory of properties.
// Property CRUD belongs to the surrounding application; only the fields needed
// to resolve rates and stamp snapshots are mirrored here.
package properties

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// Repository handles the properties table in the analysis database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new properties repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "properties").Logger(),
	}
}

// GetByID returns a property, or nil when it is unknown.
func (r *Repository) GetByID(propertyID string) (*domain.Property, error) {
	var p domain.Property
	var updatedAt int64
	err := r.db.QueryRow(`
		SELECT id, workspace_id, status_pipeline, updated_at FROM properties WHERE id = ?
	`, propertyID).Scan(&p.ID, &p.WorkspaceID, &p.StatusPipeline, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property %s: %w", propertyID, err)
	}
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &p, nil
}

// Upsert inserts or updates a property.
func (r *Repository) Upsert(p domain.Property) error {
	_, err := r.db.Exec(`
		INSERT INTO properties (id, workspace_id, status_pipeline, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			status_pipeline = excluded.status_pipeline,
			updated_at = excluded.updated_at
	`, p.ID, p.WorkspaceID, p.StatusPipeline, p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert property %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a property; analysis rows cascade.
func (r *Repository) Delete(propertyID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM properties WHERE id = ?`, propertyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete property %s: %w", propertyID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of known properties.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM properties`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return n, nil
}
