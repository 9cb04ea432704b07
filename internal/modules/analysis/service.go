package analysis

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/events"
	"github.com/widia-io/widia-flip-sub001/internal/modules/calculations"
)

// PropertyLookup resolves a property.
type PropertyLookup interface {
	GetByID(propertyID string) (*domain.Property, error)
}

// RateSource resolves the effective rates of a property at call time.
type RateSource interface {
	EffectiveRates(propertyID string) (domain.RateSet, error)
}

// Service reads and mutates live analysis state and recomputes outputs.
type Service struct {
	repo         *Repository
	properties   PropertyLookup
	rates        RateSource
	eventManager *events.Manager
	locks        *propertyLocks
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a new analysis service
func NewService(repo *Repository, properties PropertyLookup, rates RateSource, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		properties:   properties,
		rates:        rates,
		eventManager: eventManager,
		locks:        newPropertyLocks(),
		log:          log.With().Str("service", "analysis").Logger(),
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// GetCash returns the live cash analysis, creating empty inputs on first access.
func (s *Service) GetCash(propertyID string) (*CashAnalysis, error) {
	if err := s.requireProperty(propertyID); err != nil {
		return nil, err
	}

	inputs, updatedAt, err := s.repo.GetOrCreateCash(propertyID, s.now())
	if err != nil {
		return nil, err
	}
	return s.cashView(propertyID, inputs, updatedAt)
}

// UpdateCash applies a partial update, validates the result and recomputes.
// Re-sending an identical patch leaves the stored state untouched.
func (s *Service) UpdateCash(propertyID string, patch domain.CashPatch) (*CashAnalysis, error) {
	if err := s.requireProperty(propertyID); err != nil {
		return nil, err
	}

	release := s.locks.lock(propertyID)
	defer release()

	current, updatedAt, err := s.repo.GetOrCreateCash(propertyID, s.now())
	if err != nil {
		return nil, err
	}

	next := patch.Apply(current)
	if err := domain.ValidateCashInputs(next); err != nil {
		return nil, err
	}

	if !reflect.DeepEqual(current, next) {
		updatedAt = s.now()
		if err := s.repo.SaveCash(propertyID, next, updatedAt); err != nil {
			return nil, err
		}
	}

	view, err := s.cashView(propertyID, next, updatedAt)
	if err != nil {
		return nil, err
	}

	s.emit(&events.AnalysisUpdatedData{
		PropertyID: propertyID,
		Kind:       string(domain.KindCash),
		IsPartial:  view.Outputs.IsPartial,
		ROI:        view.Outputs.ROI,
		NetProfit:  view.Outputs.NetProfit,
	})
	return view, nil
}

// GetFinancing returns the live financing plan, creating an empty one on first access.
func (s *Service) GetFinancing(propertyID string) (*FinancingAnalysis, error) {
	if err := s.requireProperty(propertyID); err != nil {
		return nil, err
	}

	plan, err := s.repo.GetOrCreatePlan(propertyID, s.now())
	if err != nil {
		return nil, err
	}
	return s.financingView(propertyID, plan)
}

// UpdateFinancing applies a partial update to the financing terms.
func (s *Service) UpdateFinancing(propertyID string, patch domain.FinancingPatch) (*FinancingAnalysis, error) {
	if err := s.requireProperty(propertyID); err != nil {
		return nil, err
	}

	release := s.locks.lock(propertyID)
	defer release()

	plan, err := s.repo.GetOrCreatePlan(propertyID, s.now())
	if err != nil {
		return nil, err
	}

	next := patch.Apply(plan.Inputs)
	if err := domain.ValidateFinancingInputs(next); err != nil {
		return nil, err
	}

	if !reflect.DeepEqual(plan.Inputs, next) {
		plan.UpdatedAt = s.now()
		if err := s.repo.SavePlanInputs(plan.ID, next, plan.UpdatedAt); err != nil {
			return nil, err
		}
		plan.Inputs = next
	}

	view, err := s.financingView(propertyID, plan)
	if err != nil {
		return nil, err
	}

	s.emit(&events.AnalysisUpdatedData{
		PropertyID: propertyID,
		Kind:       string(domain.KindFinancing),
		IsPartial:  view.Outputs.IsPartial,
		ROI:        view.Outputs.ROI,
		NetProfit:  view.Outputs.NetProfit,
	})
	return view, nil
}

// AddPayment records an actually-paid installment on the property's plan.
func (s *Service) AddPayment(propertyID, planID string, req domain.NewPayment) (*FinancingAnalysis, *domain.FinancingPayment, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	release := s.locks.lock(propertyID)
	defer release()

	plan, err := s.planOf(propertyID, planID)
	if err != nil {
		return nil, nil, err
	}

	payment := domain.FinancingPayment{
		ID:         uuid.NewString(),
		MonthIndex: req.MonthIndex,
		Amount:     req.Amount,
		CreatedAt:  s.now(),
	}
	if err := s.repo.InsertPayment(propertyID, plan.ID, payment); err != nil {
		if errors.Is(err, domain.ErrDuplicateMonthIndex) {
			return nil, nil, domain.NewValidationError("month_index",
				fmt.Sprintf("a payment for month %d already exists", req.MonthIndex))
		}
		return nil, nil, err
	}

	view, err := s.financingView(propertyID, plan)
	if err != nil {
		return nil, nil, err
	}

	s.emit(&events.PaymentData{
		PropertyID: propertyID,
		PlanID:     plan.ID,
		PaymentID:  payment.ID,
		MonthIndex: payment.MonthIndex,
		Amount:     payment.Amount,
	})
	return view, &payment, nil
}

// DeletePayment removes a payment from the property's plan.
func (s *Service) DeletePayment(propertyID, planID, paymentID string) (*FinancingAnalysis, error) {
	release := s.locks.lock(propertyID)
	defer release()

	plan, err := s.planOf(propertyID, planID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeletePayment(propertyID, plan.ID, paymentID)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, domain.ErrNotFound)
	}

	view, err := s.financingView(propertyID, plan)
	if err != nil {
		return nil, err
	}

	s.emit(&events.PaymentData{
		PropertyID: propertyID,
		PlanID:     plan.ID,
		PaymentID:  deleted.ID,
		MonthIndex: deleted.MonthIndex,
		Amount:     deleted.Amount,
		Deleted:    true,
	})
	return view, nil
}

// planOf loads the property's plan and checks the URL plan id matches it.
func (s *Service) planOf(propertyID, planID string) (*planRow, error) {
	if err := s.requireProperty(propertyID); err != nil {
		return nil, err
	}
	plan, err := s.repo.GetOrCreatePlan(propertyID, s.now())
	if err != nil {
		return nil, err
	}
	if plan.ID != planID {
		return nil, fmt.Errorf("financing plan %s: %w", planID, domain.ErrNotFound)
	}
	return plan, nil
}

func (s *Service) cashView(propertyID string, inputs domain.CashInputs, updatedAt time.Time) (*CashAnalysis, error) {
	effective, err := s.rates.EffectiveRates(propertyID)
	if err != nil {
		return nil, err
	}
	return &CashAnalysis{
		PropertyID:     propertyID,
		Inputs:         inputs,
		Outputs:        calculations.ComputeCash(inputs, effective),
		EffectiveRates: effective,
		UpdatedAt:      updatedAt,
	}, nil
}

func (s *Service) financingView(propertyID string, plan *planRow) (*FinancingAnalysis, error) {
	effective, err := s.rates.EffectiveRates(propertyID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(plan.ID)
	if err != nil {
		return nil, err
	}
	return &FinancingAnalysis{
		PropertyID:     propertyID,
		PlanID:         plan.ID,
		Inputs:         plan.Inputs,
		Payments:       payments,
		Outputs:        calculations.ComputeFinancing(plan.Inputs, payments, effective),
		EffectiveRates: effective,
		UpdatedAt:      plan.UpdatedAt,
	}, nil
}

func (s *Service) requireProperty(propertyID string) error {
	p, err := s.properties.GetByID(propertyID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("property %s: %w", propertyID, domain.ErrNotFound)
	}
	return nil
}

func (s *Service) emit(data events.EventData) {
	if s.eventManager != nil {
		s.eventManager.EmitTyped("analysis", data)
	}
}
