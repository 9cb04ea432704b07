package properties

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/events"
)

// WorkspaceBootstrapper makes sure a workspace has default rates.
type WorkspaceBootstrapper interface {
	DefaultRates(workspaceID string) (domain.RateSet, error)
}

// UpsertRequest is the body of PUT /api/properties/{id}.
type UpsertRequest struct {
	WorkspaceID    string `json:"workspace_id"`
	StatusPipeline string `json:"status_pipeline"`
}

// Service mirrors property metadata pushed by the surrounding application.
type Service struct {
	repo         *Repository
	workspaces   WorkspaceBootstrapper
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new properties service
func NewService(repo *Repository, workspaces WorkspaceBootstrapper, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		workspaces:   workspaces,
		eventManager: eventManager,
		log:          log.With().Str("service", "properties").Logger(),
	}
}

// Get returns a property or ErrNotFound.
func (s *Service) Get(propertyID string) (*domain.Property, error) {
	p, err := s.repo.GetByID(propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %s: %w", propertyID, domain.ErrNotFound)
	}
	return p, nil
}

// Upsert registers or updates a property and bootstraps its workspace.
func (s *Service) Upsert(propertyID string, req UpsertRequest) (*domain.Property, error) {
	var v domain.ValidationError
	if strings.TrimSpace(propertyID) == "" {
		v.Add("id", "must not be empty")
	}
	if strings.TrimSpace(req.WorkspaceID) == "" {
		v.Add("workspace_id", "must not be empty")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.workspaces.DefaultRates(req.WorkspaceID); err != nil {
		return nil, fmt.Errorf("failed to bootstrap workspace %s: %w", req.WorkspaceID, err)
	}

	p := domain.Property{
		ID:             propertyID,
		WorkspaceID:    req.WorkspaceID,
		StatusPipeline: req.StatusPipeline,
		UpdatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Upsert(p); err != nil {
		return nil, err
	}

	if s.eventManager != nil {
		s.eventManager.Emit(events.PropertyUpserted, "properties", map[string]interface{}{
			"property_id":     p.ID,
			"workspace_id":    p.WorkspaceID,
			"status_pipeline": p.StatusPipeline,
		})
	}
	return &p, nil
}

// Delete removes a property together with its live analysis state.
// Snapshots live in the ledger and are not touched.
func (s *Service) Delete(propertyID string) error {
	deleted, err := s.repo.Delete(propertyID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("property %s: %w", propertyID, domain.ErrNotFound)
	}
	s.log.Info().Str("property_id", propertyID).Msg("Property removed")
	return nil
}
