package rates

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/events"
	testutil "github.com/widia-io/widia-flip-sub001/internal/testing"
)

type stubProperties map[string]*domain.Property

func (s stubProperties) GetByID(id string) (*domain.Property, error) {
	return s[id], nil
}

type stubWorkspaces struct {
	rates domain.RateSet
	calls int
}

func (s *stubWorkspaces) DefaultRates(string) (domain.RateSet, error) {
	s.calls++
	return s.rates, nil
}

func newTestService(t *testing.T) (*Service, *stubWorkspaces, *events.Bus) {
	t.Helper()
	db, cleanup := testutil.NewTestDB(t, database.NameAnalysis)
	t.Cleanup(cleanup)
	testutil.SeedProperty(t, db, "p1", "w1", "prospecting")

	ws := &stubWorkspaces{rates: workspace}
	bus := events.NewBus()
	svc := NewService(
		NewRepository(db.Conn(), zerolog.Nop()),
		stubProperties{"p1": {ID: "p1", WorkspaceID: "w1"}},
		ws,
		events.NewManager(bus, zerolog.Nop()),
		zerolog.Nop(),
	)
	return svc, ws, bus
}

func TestService_GetRates_NoOverrides(t *testing.T) {
	svc, _, _ := newTestService(t)

	view, err := svc.GetRates("p1")
	require.NoError(t, err)

	assert.True(t, view.Custom.IsEmpty())
	assert.Equal(t, workspace, view.WorkspaceRates)
	assert.Equal(t, workspace, view.Effective)
}

func TestService_GetRates_UnknownProperty(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetRates("missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestService_UpdateRates_TriState(t *testing.T) {
	svc, _, bus := newTestService(t)

	var emitted int
	bus.Subscribe(events.RatesChanged, func(*events.Event) { emitted++ })

	view, err := svc.UpdateRates("p1", domain.RatePatch{BrokerRate: domain.Set(0.04), ItbiRate: domain.Set(0.05)})
	require.NoError(t, err)
	assert.Equal(t, 0.04, view.Effective.BrokerRate)
	assert.Equal(t, 0.05, view.Effective.ItbiRate)
	assert.Equal(t, workspace.RegistryRate, view.Effective.RegistryRate)

	// Clearing one override keeps the other
	view, err = svc.UpdateRates("p1", domain.RatePatch{ItbiRate: domain.Clear[float64]()})
	require.NoError(t, err)
	assert.Nil(t, view.Custom.ItbiRate)
	assert.Equal(t, workspace.ItbiRate, view.Effective.ItbiRate)
	assert.Equal(t, 0.04, view.Effective.BrokerRate)

	assert.Equal(t, 2, emitted)
}

func TestService_UpdateRates_RejectsOutOfRange(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateRates("p1", domain.RatePatch{PJTaxRate: domain.Set(15.0)})
	v, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "pj_tax_rate", v.Errors[0].Field)

	view, err := svc.GetRates("p1")
	require.NoError(t, err)
	assert.True(t, view.Custom.IsEmpty(), "rejected patch must not be stored")
}

func TestService_ApplyPreset(t *testing.T) {
	svc, _, _ := newTestService(t)

	view, err := svc.ApplyPreset("p1", "rj")
	require.NoError(t, err)

	rj, _ := LookupPreset("rj")
	assert.True(t, view.Custom.IsComplete())
	assert.Equal(t, rj.Rates, view.Effective)

	_, err = svc.ApplyPreset("p1", "atlantis")
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestService_EffectiveRates_ResolvedEveryCall(t *testing.T) {
	svc, ws, _ := newTestService(t)

	first, err := svc.EffectiveRates("p1")
	require.NoError(t, err)
	assert.Equal(t, workspace.PJTaxRate, first.PJTaxRate)

	ws.rates.PJTaxRate = 0.2
	second, err := svc.EffectiveRates("p1")
	require.NoError(t, err)
	assert.Equal(t, 0.2, second.PJTaxRate)
	assert.Equal(t, 2, ws.calls)
}
