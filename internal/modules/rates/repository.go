package rates

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// Repository handles property-level rate overrides stored in the analysis database.
//
// Each column is independently nullable; a missing row and a row of NULLs mean
// the same thing: every rate is inherited.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new property rates repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "property_rates").Logger(),
	}
}

// Get returns the custom rates of a property.
// A property without overrides yields an empty PartialRateSet, not an error.
func (r *Repository) Get(propertyID string) (domain.PartialRateSet, error) {
	var itbi, registry, broker, pjTax sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT itbi_rate, registry_rate, broker_rate, pj_tax_rate
		FROM property_rates WHERE property_id = ?
	`, propertyID).Scan(&itbi, &registry, &broker, &pjTax)
	if err == sql.ErrNoRows {
		return domain.PartialRateSet{}, nil
	}
	if err != nil {
		return domain.PartialRateSet{}, fmt.Errorf("failed to get rates for property %s: %w", propertyID, err)
	}

	return domain.PartialRateSet{
		ItbiRate:     nullableFloat(itbi),
		RegistryRate: nullableFloat(registry),
		BrokerRate:   nullableFloat(broker),
		PJTaxRate:    nullableFloat(pjTax),
	}, nil
}

// Upsert replaces the custom rates of a property.
func (r *Repository) Upsert(propertyID string, custom domain.PartialRateSet) error {
	_, err := r.db.Exec(`
		INSERT INTO property_rates (property_id, itbi_rate, registry_rate, broker_rate, pj_tax_rate, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			itbi_rate = excluded.itbi_rate,
			registry_rate = excluded.registry_rate,
			broker_rate = excluded.broker_rate,
			pj_tax_rate = excluded.pj_tax_rate,
			updated_at = excluded.updated_at
	`, propertyID, custom.ItbiRate, custom.RegistryRate, custom.BrokerRate, custom.PJTaxRate, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save rates for property %s: %w", propertyID, err)
	}

	r.log.Debug().Str("property_id", propertyID).Msg("Custom rates saved")
	return nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
