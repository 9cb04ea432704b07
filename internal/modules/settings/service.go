package settings

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/events"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
)

// Service manages workspace default rates.
type Service struct {
	repo         *Repository
	eventManager *events.Manager
	log          zerolog.Logger
	now          func() time.Time
}

// NewService creates a new settings service
func NewService(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		eventManager: eventManager,
		log:          log.With().Str("service", "settings").Logger(),
		now:          time.Now,
	}
}

// GetOrCreate returns the settings of a workspace, bootstrapping it with the
// system default rates the first time it is seen.
func (s *Service) GetOrCreate(workspaceID string) (*WorkspaceSettings, error) {
	if workspaceID == "" {
		return nil, domain.NewValidationError("workspace_id", "must not be empty")
	}

	existing, err := s.repo.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	bootstrap := WorkspaceSettings{
		WorkspaceID: workspaceID,
		Rates:       rates.Resolve(domain.PartialRateSet{}, domain.PartialRateSet{}, rates.SystemDefault()),
		UpdatedAt:   s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Insert(bootstrap); err != nil {
		return nil, err
	}

	s.log.Info().Str("workspace_id", workspaceID).Msg("Bootstrapped workspace with system default rates")

	// Re-read: a concurrent bootstrap may have won the insert
	created, err := s.repo.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("workspace %s vanished after bootstrap", workspaceID)
	}
	return created, nil
}

// DefaultRates returns the fully populated default rates of a workspace.
func (s *Service) DefaultRates(workspaceID string) (domain.RateSet, error) {
	settings, err := s.GetOrCreate(workspaceID)
	if err != nil {
		return domain.RateSet{}, err
	}
	return settings.Rates, nil
}

// Update applies a preset and/or individual rate changes to a workspace.
func (s *Service) Update(workspaceID string, req UpdateRequest) (*WorkspaceSettings, error) {
	if err := req.validateNoNulls(); err != nil {
		return nil, err
	}

	current, err := s.GetOrCreate(workspaceID)
	if err != nil {
		return nil, err
	}

	next := *current
	if req.Preset != nil {
		preset, ok := rates.LookupPreset(*req.Preset)
		if !ok {
			return nil, domain.NewValidationError("preset", fmt.Sprintf("unknown preset region %q", *req.Preset))
		}
		next.Rates = preset.Rates
		next.Region = preset.Region
	}

	patched := req.ratePatch().Apply(next.Rates.Partial())
	if err := domain.ValidateRates(patched); err != nil {
		return nil, err
	}
	next.Rates = rates.Resolve(patched, domain.PartialRateSet{}, next.Rates)
	next.UpdatedAt = s.now().UTC().Truncate(time.Second)

	if err := s.repo.Update(next); err != nil {
		return nil, err
	}

	if s.eventManager != nil {
		s.eventManager.EmitTyped("settings", &events.WorkspaceSettingsChangedData{
			WorkspaceID: workspaceID,
			Region:      next.Region,
		})
	}

	return &next, nil
}
