package snapshots

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/events"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LiveAnalysis provides the current state a capture freezes.
type LiveAnalysis interface {
	GetCash(propertyID string) (*analysis.CashAnalysis, error)
	GetFinancing(propertyID string) (*analysis.FinancingAnalysis, error)
}

// PropertyLookup resolves a property and its pipeline status.
type PropertyLookup interface {
	GetByID(propertyID string) (*domain.Property, error)
}

// Service captures, lists and deletes snapshots.
type Service struct {
	repo         *Repository
	live         LiveAnalysis
	properties   PropertyLookup
	eventManager *events.Manager
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a new snapshot service
func NewService(repo *Repository, live LiveAnalysis, properties PropertyLookup, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		live:         live,
		properties:   properties,
		eventManager: eventManager,
		log:          log.With().Str("service", "snapshots").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Capture dispatches to CaptureCash or CaptureFinancing.
func (s *Service) Capture(propertyID string, kind domain.AnalysisKind) (*CaptureResult, error) {
	switch kind {
	case domain.KindCash:
		return s.CaptureCash(propertyID)
	case domain.KindFinancing:
		return s.CaptureFinancing(propertyID)
	}
	return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown analysis kind %q", kind))
}

// CaptureCash freezes the current cash analysis. Partial analyses are refused.
func (s *Service) CaptureCash(propertyID string) (*CaptureResult, error) {
	property, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}

	live, err := s.live.GetCash(propertyID)
	if err != nil {
		return nil, err
	}
	if live.Outputs.IsPartial {
		return nil, domain.ErrPartialAnalysis
	}

	p := payload[domain.CashInputs, domain.CashOutputs]{
		Inputs:         live.Inputs,
		Outputs:        live.Outputs,
		EffectiveRates: live.EffectiveRates,
	}
	return store(s, property, domain.KindCash, p, live.Outputs.ROI, live.Outputs.NetProfit)
}

// CaptureFinancing freezes the current financing analysis with its payments.
func (s *Service) CaptureFinancing(propertyID string) (*CaptureResult, error) {
	property, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}

	live, err := s.live.GetFinancing(propertyID)
	if err != nil {
		return nil, err
	}
	if live.Outputs.IsPartial {
		return nil, domain.ErrPartialAnalysis
	}

	p := payload[domain.FinancingInputs, domain.FinancingOutputs]{
		Inputs:         live.Inputs,
		Outputs:        live.Outputs,
		EffectiveRates: live.EffectiveRates,
		Payments:       live.Payments,
	}
	return store(s, property, domain.KindFinancing, p, live.Outputs.ROI, live.Outputs.NetProfit)
}

func store[I any, O any](s *Service, property *domain.Property, kind domain.AnalysisKind, p payload[I, O], roi, netProfit float64) (*CaptureResult, error) {
	data, sum, err := encodePayload(p)
	if err != nil {
		return nil, err
	}

	rec := record{
		ID:             uuid.NewString(),
		PropertyID:     property.ID,
		Kind:           kind,
		StatusPipeline: property.StatusPipeline,
		Payload:        data,
		Checksum:       sum,
		ROI:            roi,
		NetProfit:      netProfit,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Insert(rec); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("property_id", property.ID).
		Str("snapshot_id", rec.ID).
		Str("kind", string(kind)).
		Msg("Snapshot captured")
	s.emit(&events.SnapshotData{PropertyID: property.ID, SnapshotID: rec.ID, Kind: string(kind)})

	return &CaptureResult{SnapshotID: rec.ID, CreatedAt: rec.CreatedAt}, nil
}

// ListCash returns the cash snapshots of a property, newest first.
func (s *Service) ListCash(propertyID string) ([]CashSnapshot, error) {
	return list[domain.CashInputs, domain.CashOutputs](s, propertyID, domain.KindCash)
}

// ListFinancing returns the financing snapshots of a property, newest first.
func (s *Service) ListFinancing(propertyID string) ([]FinancingSnapshot, error) {
	return list[domain.FinancingInputs, domain.FinancingOutputs](s, propertyID, domain.KindFinancing)
}

func list[I any, O any](s *Service, propertyID string, kind domain.AnalysisKind) ([]Snapshot[I, O], error) {
	if _, err := s.property(propertyID); err != nil {
		return nil, err
	}

	recs, err := s.repo.List(propertyID, kind)
	if err != nil {
		return nil, err
	}

	out := make([]Snapshot[I, O], 0, len(recs))
	for _, rec := range recs {
		snap, err := toSnapshot[I, O](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

// GetCash returns one cash snapshot by id.
func (s *Service) GetCash(snapshotID string) (*CashSnapshot, error) {
	return get[domain.CashInputs, domain.CashOutputs](s, snapshotID, domain.KindCash)
}

// GetFinancing returns one financing snapshot by id.
func (s *Service) GetFinancing(snapshotID string) (*FinancingSnapshot, error) {
	return get[domain.FinancingInputs, domain.FinancingOutputs](s, snapshotID, domain.KindFinancing)
}

func get[I any, O any](s *Service, snapshotID string, kind domain.AnalysisKind) (*Snapshot[I, O], error) {
	rec, err := s.repo.Get(snapshotID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Kind != kind {
		return nil, fmt.Errorf("snapshot %s: %w", snapshotID, domain.ErrNotFound)
	}
	return toSnapshot[I, O](*rec)
}

// Delete removes one snapshot. Live inputs are never touched.
func (s *Service) Delete(propertyID string, kind domain.AnalysisKind, snapshotID string) error {
	deleted, err := s.repo.Delete(propertyID, kind, snapshotID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("snapshot %s: %w", snapshotID, domain.ErrNotFound)
	}

	s.log.Info().Str("property_id", propertyID).Str("snapshot_id", snapshotID).Msg("Snapshot deleted")
	s.emit(&events.SnapshotData{PropertyID: propertyID, SnapshotID: snapshotID, Kind: string(kind), Deleted: true})
	return nil
}

// Summary compares every snapshot of a property and kind.
func (s *Service) Summary(propertyID string, kind domain.AnalysisKind) (*HistorySummary, error) {
	if _, err := s.property(propertyID); err != nil {
		return nil, err
	}

	recs, err := s.repo.List(propertyID, kind)
	if err != nil {
		return nil, err
	}

	summary := &HistorySummary{PropertyID: propertyID, Kind: kind, Count: len(recs)}
	if len(recs) == 0 {
		return summary, nil
	}

	// recs are newest first; walk them oldest first
	rois := make([]float64, len(recs))
	profits := make([]float64, len(recs))
	for i, rec := range recs {
		rois[len(recs)-1-i] = rec.ROI
		profits[len(recs)-1-i] = rec.NetProfit
	}

	first, latest := recs[len(recs)-1].CreatedAt, recs[0].CreatedAt
	summary.FirstAt = &first
	summary.LatestAt = &latest
	summary.FirstROI = rois[0]
	summary.LatestROI = rois[len(rois)-1]
	summary.ROIChange = summary.LatestROI - summary.FirstROI
	summary.MinROI = floats.Min(rois)
	summary.MaxROI = floats.Max(rois)
	summary.MeanROI = stat.Mean(rois, nil)
	summary.MeanNetProfit = stat.Mean(profits, nil)
	if len(rois) > 1 {
		summary.StdDevROI = stat.StdDev(rois, nil)
	}
	if math.IsNaN(summary.StdDevROI) {
		summary.StdDevROI = 0
	}
	return summary, nil
}

// VerifyIntegrity recomputes every payload checksum and reports mismatches.
func (s *Service) VerifyIntegrity() (*IntegrityReport, error) {
	report := &IntegrityReport{Violations: make([]IntegrityViolation, 0)}

	err := s.repo.ForEach(func(rec record) error {
		report.Checked++
		actual := checksum(rec.Payload)
		if actual == rec.Checksum {
			return nil
		}

		v := IntegrityViolation{
			SnapshotID: rec.ID,
			PropertyID: rec.PropertyID,
			Expected:   rec.Checksum,
			Actual:     actual,
		}
		report.Violations = append(report.Violations, v)

		s.log.Error().
			Str("snapshot_id", rec.ID).
			Str("property_id", rec.PropertyID).
			Msg("Snapshot checksum mismatch")
		s.emit(&events.IntegrityViolationData{
			PropertyID: v.PropertyID,
			SnapshotID: v.SnapshotID,
			Expected:   v.Expected,
			Actual:     v.Actual,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) property(propertyID string) (*domain.Property, error) {
	p, err := s.properties.GetByID(propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %s: %w", propertyID, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Service) emit(data events.EventData) {
	if s.eventManager != nil {
		s.eventManager.EmitTyped("snapshots", data)
	}
}
