package flipapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/autosave"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/analysis"
	analysishandlers "github.com/widia-io/widia-flip-sub001/internal/modules/analysis/handlers"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/modules/snapshots"
	snapshothandlers "github.com/widia-io/widia-flip-sub001/internal/modules/snapshots/handlers"
	testutil "github.com/widia-io/widia-flip-sub001/internal/testing"
)

type scenarioRates struct{}

func (scenarioRates) EffectiveRates(string) (domain.RateSet, error) {
	return testutil.ScenarioRates, nil
}

func newServer(t *testing.T) *Client {
	t.Helper()
	analysisDB, ledgerDB := testutil.NewTestDBs(t)
	testutil.SeedProperty(t, analysisDB, "p1", "w1", "analysis")

	props := properties.NewRepository(analysisDB.Conn(), zerolog.Nop())
	live := analysis.NewService(analysis.NewRepository(analysisDB.Conn(), zerolog.Nop()), props, scenarioRates{}, nil, zerolog.Nop())
	snaps := snapshots.NewService(snapshots.NewRepository(ledgerDB.Conn(), zerolog.Nop()), live, props, nil, zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		analysishandlers.NewHandler(live, zerolog.Nop()).RegisterRoutes(r)
		snapshothandlers.NewHandler(snaps, zerolog.Nop()).RegisterRoutes(r)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return NewClient(server.URL+"/api/", zerolog.Nop())
}

func TestClient_CashRoundTrip(t *testing.T) {
	client := newServer(t)
	ctx := context.Background()

	view, err := client.GetCash(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, view.Outputs.IsPartial)

	view, err = client.UpdateCash(ctx, "p1", domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, err)
	assert.Equal(t, 66300.0, view.Outputs.NetProfit)

	result, err := client.CaptureSnapshot(ctx, "p1", domain.KindCash)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SnapshotID)

	items, err := client.ListCashSnapshots(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, client.DeleteSnapshot(ctx, "p1", domain.KindCash, result.SnapshotID))
	err = client.DeleteSnapshot(ctx, "p1", domain.KindCash, result.SnapshotID)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_Errors(t *testing.T) {
	client := newServer(t)
	ctx := context.Background()

	_, err := client.UpdateCash(ctx, "p1", domain.CashPatch{PurchasePrice: domain.Set(-1.0)})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "purchase_price", apiErr.Fields[0].Field)

	_, err = client.CaptureSnapshot(ctx, "p1", domain.KindFinancing)
	assert.True(t, IsPartial(err))
	assert.True(t, IsPartial(fmt.Errorf("capture: %w", domain.ErrPartialAnalysis)))

	_, err = client.GetCash(ctx, "ghost")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_Payments(t *testing.T) {
	client := newServer(t)
	ctx := context.Background()

	view, err := client.UpdateFinancing(ctx, "p1", domain.FullFinancingPatch(testutil.ScenarioFinancingInputs()))
	require.NoError(t, err)

	payment, err := client.AddPayment(ctx, "p1", view.PlanID, domain.NewPayment{MonthIndex: 1, Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, 1, payment.MonthIndex)

	_, err = client.AddPayment(ctx, "p1", view.PlanID, domain.NewPayment{MonthIndex: 1, Amount: 5000})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)

	require.NoError(t, client.DeletePayment(ctx, "p1", view.PlanID, payment.ID))

	view, err = client.GetFinancing(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, view.Payments)
}

func TestCashSession_SnapshotReflectsLatestEdit(t *testing.T) {
	client := newServer(t)
	ctx := context.Background()

	_, err := client.UpdateCash(ctx, "p1", domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, err)

	clock := testutil.NewManualClock()
	session, err := OpenCashSession(ctx, client, "p1", autosave.Config{Window: time.Second, Clock: clock}, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()
	assert.Equal(t, 700000.0, *session.Inputs().SalePrice)

	// Capture right after an edit, before the debounce window elapses
	session.Edit(domain.CashPatch{SalePrice: domain.Set(760000.0)})
	result, err := session.CaptureSnapshot(ctx)
	require.NoError(t, err)

	items, err := client.ListCashSnapshots(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, result.SnapshotID, items[0].ID)
	assert.Equal(t, 760000.0, *items[0].Inputs.SalePrice)

	out, ok := session.Outputs()
	require.True(t, ok)
	assert.Equal(t, items[0].Outputs, out)
	assert.Equal(t, autosave.Idle, session.State())
}

func TestFinancingSession_SavesFullInputSet(t *testing.T) {
	client := newServer(t)
	ctx := context.Background()

	clock := testutil.NewManualClock()
	session, err := OpenFinancingSession(ctx, client, "p1", autosave.Config{Window: time.Second, Clock: clock}, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()

	session.Edit(domain.FullFinancingPatch(testutil.ScenarioFinancingInputs()))
	session.Edit(domain.FinancingPatch{TermMonths: domain.Set(240)})
	require.NoError(t, session.Flush(ctx))

	view, err := client.GetFinancing(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 240, *view.Inputs.TermMonths)
	assert.Equal(t, 500000.0, *view.Inputs.PurchasePrice)
	assert.False(t, view.Outputs.IsPartial)
}
