package flipapi

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/autosave"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// CashSaver saves the full cash input set of one property.
type CashSaver struct {
	Client     *Client
	PropertyID string
}

// Save implements autosave.Saver.
func (s CashSaver) Save(ctx context.Context, in domain.CashInputs) (domain.CashOutputs, error) {
	view, err := s.Client.UpdateCash(ctx, s.PropertyID, domain.FullCashPatch(in))
	if err != nil {
		return domain.CashOutputs{}, err
	}
	return view.Outputs, nil
}

// FinancingSaver saves the full financing input set of one property.
type FinancingSaver struct {
	Client     *Client
	PropertyID string
}

// Save implements autosave.Saver.
func (s FinancingSaver) Save(ctx context.Context, in domain.FinancingInputs) (domain.FinancingOutputs, error) {
	view, err := s.Client.UpdateFinancing(ctx, s.PropertyID, domain.FullFinancingPatch(in))
	if err != nil {
		return domain.FinancingOutputs{}, err
	}
	return view.Outputs, nil
}

// Snapshotter captures snapshots of one property and kind.
type Snapshotter struct {
	Client     *Client
	PropertyID string
	Kind       domain.AnalysisKind
}

// Snapshot implements autosave.Snapshotter.
func (s Snapshotter) Snapshot(ctx context.Context) (autosave.SnapshotResult, error) {
	return s.Client.CaptureSnapshot(ctx, s.PropertyID, s.Kind)
}

// CashSession is an autosave coordinator bound to a property's cash analysis.
type CashSession = autosave.Coordinator[domain.CashInputs, domain.CashOutputs]

// FinancingSession is an autosave coordinator bound to a property's financing analysis.
type FinancingSession = autosave.Coordinator[domain.FinancingInputs, domain.FinancingOutputs]

// OpenCashSession loads the persisted cash inputs and starts a coordinator on them.
func OpenCashSession(ctx context.Context, c *Client, propertyID string, cfg autosave.Config, log zerolog.Logger) (*CashSession, error) {
	view, err := c.GetCash(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return autosave.NewCoordinator[domain.CashInputs, domain.CashOutputs](
		CashSaver{Client: c, PropertyID: propertyID},
		Snapshotter{Client: c, PropertyID: propertyID, Kind: domain.KindCash},
		view.Inputs, cfg, log.With().Str("property_id", propertyID).Logger(),
	), nil
}

// OpenFinancingSession loads the persisted financing inputs and starts a coordinator on them.
func OpenFinancingSession(ctx context.Context, c *Client, propertyID string, cfg autosave.Config, log zerolog.Logger) (*FinancingSession, error) {
	view, err := c.GetFinancing(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return autosave.NewCoordinator[domain.FinancingInputs, domain.FinancingOutputs](
		FinancingSaver{Client: c, PropertyID: propertyID},
		Snapshotter{Client: c, PropertyID: propertyID, Kind: domain.KindFinancing},
		view.Inputs, cfg, log.With().Str("property_id", propertyID).Logger(),
	), nil
}
