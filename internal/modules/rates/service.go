package rates

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/events"
)

// PropertyLookup resolves a property to its workspace.
type PropertyLookup interface {
	GetByID(propertyID string) (*domain.Property, error)
}

// WorkspaceDefaults supplies the workspace-wide default rates, bootstrapping
// them when the workspace has never been configured.
type WorkspaceDefaults interface {
	DefaultRates(workspaceID string) (domain.RateSet, error)
}

// Service resolves and edits property rates.
// Resolution is done on every call so workspace changes reach future
// computations without touching the property.
type Service struct {
	repo         *Repository
	properties   PropertyLookup
	workspaces   WorkspaceDefaults
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new rates service
func NewService(repo *Repository, properties PropertyLookup, workspaces WorkspaceDefaults, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		properties:   properties,
		workspaces:   workspaces,
		eventManager: eventManager,
		log:          log.With().Str("service", "rates").Logger(),
	}
}

// GetRates returns the custom, workspace and effective rates of a property.
func (s *Service) GetRates(propertyID string) (*View, error) {
	property, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}

	custom, err := s.repo.Get(propertyID)
	if err != nil {
		return nil, err
	}

	return s.view(property, custom)
}

// EffectiveRates resolves the rates used for computation right now.
func (s *Service) EffectiveRates(propertyID string) (domain.RateSet, error) {
	view, err := s.GetRates(propertyID)
	if err != nil {
		return domain.RateSet{}, err
	}
	return view.Effective, nil
}

// UpdateRates applies a tri-state patch to the custom rates.
func (s *Service) UpdateRates(propertyID string, patch domain.RatePatch) (*View, error) {
	property, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.Get(propertyID)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(current)
	if err := domain.ValidateRates(next); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(propertyID, next); err != nil {
		return nil, err
	}

	s.emit(&events.RatesChangedData{PropertyID: propertyID})
	return s.view(property, next)
}

// ApplyPreset copies a regional preset into every custom rate field.
func (s *Service) ApplyPreset(propertyID, region string) (*View, error) {
	preset, ok := LookupPreset(region)
	if !ok {
		return nil, domain.NewValidationError("region", fmt.Sprintf("unknown preset region %q", region))
	}

	property, err := s.property(propertyID)
	if err != nil {
		return nil, err
	}

	custom := preset.Rates.Partial()
	if err := s.repo.Upsert(propertyID, custom); err != nil {
		return nil, err
	}

	s.log.Info().Str("property_id", propertyID).Str("region", region).Msg("Applied rate preset")
	s.emit(&events.RatesChangedData{PropertyID: propertyID, Preset: region})
	return s.view(property, custom)
}

func (s *Service) view(property *domain.Property, custom domain.PartialRateSet) (*View, error) {
	workspace, err := s.workspaces.DefaultRates(property.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace rates for %s: %w", property.WorkspaceID, err)
	}

	return &View{
		Custom:         custom,
		WorkspaceRates: workspace,
		Effective:      Resolve(custom, workspace.Partial(), SystemDefault()),
	}, nil
}

func (s *Service) property(propertyID string) (*domain.Property, error) {
	property, err := s.properties.GetByID(propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, fmt.Errorf("property %s: %w", propertyID, domain.ErrNotFound)
	}
	return property, nil
}

func (s *Service) emit(data events.EventData) {
	if s.eventManager != nil {
		s.eventManager.EmitTyped("rates", data)
	}
}
