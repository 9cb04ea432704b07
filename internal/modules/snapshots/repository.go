package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// Repository handles the append-only snapshots table in the ledger database.
// It exposes insert, read and delete; there is deliberately no update path.
type Repository struct {
	db  *sql.DB // ledger.db
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

const recordColumns = `id, property_id, kind, status_pipeline, payload, checksum, roi, net_profit, created_at`

// Insert appends a snapshot row.
func (r *Repository) Insert(rec record) error {
	_, err := r.db.Exec(`
		INSERT INTO snapshots (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.PropertyID, string(rec.Kind), rec.StatusPipeline, rec.Payload, rec.Checksum,
		rec.ROI, rec.NetProfit, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the snapshots of a property and kind, newest first.
func (r *Repository) List(propertyID string, kind domain.AnalysisKind) ([]record, error) {
	rows, err := r.db.Query(`
		SELECT `+recordColumns+` FROM snapshots
		WHERE property_id = ? AND kind = ?
		ORDER BY created_at DESC, rowid DESC
	`, propertyID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for %s: %w", propertyID, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Get returns one snapshot row, or nil when it does not exist.
func (r *Repository) Get(snapshotID string) (*record, error) {
	rows, err := r.db.Query(`SELECT `+recordColumns+` FROM snapshots WHERE id = ?`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", snapshotID, err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// Delete removes one snapshot scoped to its property and kind.
// Returns false when nothing matched.
func (r *Repository) Delete(propertyID string, kind domain.AnalysisKind, snapshotID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM snapshots WHERE id = ? AND property_id = ? AND kind = ?`,
		snapshotID, propertyID, string(kind))
	if err != nil {
		return false, fmt.Errorf("failed to delete snapshot %s: %w", snapshotID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ForEach streams every snapshot row in insertion order.
func (r *Repository) ForEach(fn func(rec record) error) error {
	rows, err := r.db.Query(`SELECT ` + recordColumns + ` FROM snapshots ORDER BY rowid ASC`)
	if err != nil {
		return fmt.Errorf("failed to scan snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the total number of snapshots.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]record, error) {
	recs := make([]record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return recs, nil
}

func scanRecord(rows *sql.Rows) (record, error) {
	var rec record
	var kind string
	var createdAt int64
	if err := rows.Scan(&rec.ID, &rec.PropertyID, &kind, &rec.StatusPipeline, &rec.Payload,
		&rec.Checksum, &rec.ROI, &rec.NetProfit, &createdAt); err != nil {
		return rec, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	rec.Kind = domain.AnalysisKind(kind)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return rec, nil
}
