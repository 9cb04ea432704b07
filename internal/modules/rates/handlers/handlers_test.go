package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/database"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
	testutil "github.com/widia-io/widia-flip-sub001/internal/testing"
)

type stubProperties struct{}

func (stubProperties) GetByID(id string) (*domain.Property, error) {
	if id != "p1" {
		return nil, nil
	}
	return &domain.Property{ID: "p1", WorkspaceID: "w1"}, nil
}

type stubWorkspaces struct{}

func (stubWorkspaces) DefaultRates(string) (domain.RateSet, error) {
	return rates.SystemDefault(), nil
}

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	db, cleanup := testutil.NewTestDB(t, database.NameAnalysis)
	t.Cleanup(cleanup)
	testutil.SeedProperty(t, db, "p1", "w1", "")

	svc := rates.NewService(rates.NewRepository(db.Conn(), zerolog.Nop()), stubProperties{}, stubWorkspaces{}, nil, zerolog.Nop())
	router := chi.NewRouter()
	router.Route("/api", NewHandler(svc, zerolog.Nop()).RegisterRoutes)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleUpdateRates_NullClearsAbsentKeeps(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPut, "/api/properties/p1/rates", `{"itbi_rate": 0.05, "broker_rate": 0.04}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodPut, "/api/properties/p1/rates", `{"itbi_rate": null}`)
	require.Equal(t, http.StatusOK, w.Code)

	var view rates.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Nil(t, view.Custom.ItbiRate)
	require.NotNil(t, view.Custom.BrokerRate)
	assert.Equal(t, 0.04, *view.Custom.BrokerRate)
	assert.Equal(t, rates.SystemDefault().ItbiRate, view.Effective.ItbiRate)
}

func TestHandleUpdateRates_Validation(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPut, "/api/properties/p1/rates", `{"broker_rate": 6}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "broker_rate")
}

func TestHandleGetRates_UnknownProperty(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodGet, "/api/properties/nope/rates", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleApplyPreset(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodPost, "/api/properties/p1/rates/preset", `{"region": "sul"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var view rates.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 0.025, view.Effective.ItbiRate)

	w = do(router, http.MethodPost, "/api/properties/p1/rates/preset", `{"region": "mars"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleListPresets(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodGet, "/api/rates/presets", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Presets []rates.Preset `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Presets, 7)
}
