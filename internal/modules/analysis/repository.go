package analysis

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// Repository handles live analysis tables in the analysis database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new analysis repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "analysis").Logger(),
	}
}

// GetOrCreateCash returns the cash inputs of a property, creating an empty row on first access.
func (r *Repository) GetOrCreateCash(propertyID string, now time.Time) (domain.CashInputs, time.Time, error) {
	_, err := r.db.Exec(`
		INSERT INTO cash_analyses (property_id, updated_at) VALUES (?, ?)
		ON CONFLICT(property_id) DO NOTHING
	`, propertyID, now.Unix())
	if err != nil {
		return domain.CashInputs{}, time.Time{}, fmt.Errorf("failed to create cash analysis for %s: %w", propertyID, err)
	}

	var purchase, renovation, other, sale sql.NullFloat64
	var updatedAt int64
	err = r.db.QueryRow(`
		SELECT purchase_price, renovation_cost, other_costs, sale_price, updated_at
		FROM cash_analyses WHERE property_id = ?
	`, propertyID).Scan(&purchase, &renovation, &other, &sale, &updatedAt)
	if err != nil {
		return domain.CashInputs{}, time.Time{}, fmt.Errorf("failed to get cash analysis for %s: %w", propertyID, err)
	}

	return domain.CashInputs{
		PurchasePrice:  nullableFloat(purchase),
		RenovationCost: nullableFloat(renovation),
		OtherCosts:     nullableFloat(other),
		SalePrice:      nullableFloat(sale),
	}, time.Unix(updatedAt, 0).UTC(), nil
}

// SaveCash overwrites the cash inputs of a property.
func (r *Repository) SaveCash(propertyID string, in domain.CashInputs, now time.Time) error {
	_, err := r.db.Exec(`
		UPDATE cash_analyses
		SET purchase_price = ?, renovation_cost = ?, other_costs = ?, sale_price = ?, updated_at = ?
		WHERE property_id = ?
	`, in.PurchasePrice, in.RenovationCost, in.OtherCosts, in.SalePrice, now.Unix(), propertyID)
	if err != nil {
		return fmt.Errorf("failed to save cash analysis for %s: %w", propertyID, err)
	}
	return nil
}

// GetOrCreatePlan returns the financing plan of a property, creating an empty one on first access.
func (r *Repository) GetOrCreatePlan(propertyID string, now time.Time) (*planRow, error) {
	_, err := r.db.Exec(`
		INSERT INTO financing_plans (id, property_id, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(property_id) DO NOTHING
	`, uuid.NewString(), propertyID, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create financing plan for %s: %w", propertyID, err)
	}

	var (
		plan                                       planRow
		purchase, sale, downPayment, cet, interest sql.NullFloat64
		insurance, appraisal, otherFees, remaining sql.NullFloat64
		term                                       sql.NullInt64
		updatedAt                                  int64
	)
	err = r.db.QueryRow(`
		SELECT id, purchase_price, sale_price, down_payment_percent, term_months, cet, interest_rate,
		       insurance, appraisal_fee, other_fees, remaining_debt, updated_at
		FROM financing_plans WHERE property_id = ?
	`, propertyID).Scan(&plan.ID, &purchase, &sale, &downPayment, &term, &cet, &interest,
		&insurance, &appraisal, &otherFees, &remaining, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get financing plan for %s: %w", propertyID, err)
	}

	plan.Inputs = domain.FinancingInputs{
		PurchasePrice:      nullableFloat(purchase),
		SalePrice:          nullableFloat(sale),
		DownPaymentPercent: nullableFloat(downPayment),
		TermMonths:         nullableInt(term),
		CET:                nullableFloat(cet),
		InterestRate:       nullableFloat(interest),
		Insurance:          nullableFloat(insurance),
		AppraisalFee:       nullableFloat(appraisal),
		OtherFees:          nullableFloat(otherFees),
		RemainingDebt:      nullableFloat(remaining),
	}
	plan.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &plan, nil
}

// SavePlanInputs overwrites the terms of a financing plan.
func (r *Repository) SavePlanInputs(planID string, in domain.FinancingInputs, now time.Time) error {
	_, err := r.db.Exec(`
		UPDATE financing_plans
		SET purchase_price = ?, sale_price = ?, down_payment_percent = ?, term_months = ?, cet = ?,
		    interest_rate = ?, insurance = ?, appraisal_fee = ?, other_fees = ?, remaining_debt = ?,
		    updated_at = ?
		WHERE id = ?
	`, in.PurchasePrice, in.SalePrice, in.DownPaymentPercent, in.TermMonths, in.CET,
		in.InterestRate, in.Insurance, in.AppraisalFee, in.OtherFees, in.RemainingDebt,
		now.Unix(), planID)
	if err != nil {
		return fmt.Errorf("failed to save financing plan %s: %w", planID, err)
	}
	return nil
}

// ListPayments returns the payments of a plan ordered by month.
func (r *Repository) ListPayments(planID string) ([]domain.FinancingPayment, error) {
	rows, err := r.db.Query(`
		SELECT id, month_index, amount, created_at
		FROM financing_payments WHERE plan_id = ?
		ORDER BY month_index ASC
	`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for plan %s: %w", planID, err)
	}
	defer rows.Close()

	payments := make([]domain.FinancingPayment, 0)
	for rows.Next() {
		var p domain.FinancingPayment
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.MonthIndex, &p.Amount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// InsertPayment records a payment on the plan the property currently owns.
// The ownership check and the insert share one transaction. A second payment
// for the same month yields ErrDuplicateMonthIndex.
func (r *Repository) InsertPayment(propertyID, planID string, p domain.FinancingPayment) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if err := requirePlan(tx, propertyID, planID); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO financing_payments (id, plan_id, month_index, amount, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, planID, p.MonthIndex, p.Amount, p.CreatedAt.Unix())
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return domain.ErrDuplicateMonthIndex
			}
			return fmt.Errorf("failed to insert payment for plan %s: %w", planID, err)
		}
		return nil
	})
}

// DeletePayment removes a payment and returns it, or nil when it does not belong to the plan.
func (r *Repository) DeletePayment(propertyID, planID, paymentID string) (*domain.FinancingPayment, error) {
	var deleted *domain.FinancingPayment
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if err := requirePlan(tx, propertyID, planID); err != nil {
			return err
		}

		var p domain.FinancingPayment
		var createdAt int64
		err := tx.QueryRow(`
			SELECT id, month_index, amount, created_at FROM financing_payments WHERE id = ? AND plan_id = ?
		`, paymentID, planID).Scan(&p.ID, &p.MonthIndex, &p.Amount, &createdAt)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get payment %s: %w", paymentID, err)
		}
		p.CreatedAt = time.Unix(createdAt, 0).UTC()

		if _, err := tx.Exec(`DELETE FROM financing_payments WHERE id = ?`, paymentID); err != nil {
			return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
		}
		deleted = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func requirePlan(tx *sql.Tx, propertyID, planID string) error {
	var current string
	err := tx.QueryRow(`SELECT id FROM financing_plans WHERE property_id = ?`, propertyID).Scan(&current)
	if err == sql.ErrNoRows || (err == nil && current != planID) {
		return fmt.Errorf("financing plan %s: %w", planID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get financing plan for %s: %w", propertyID, err)
	}
	return nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
