package cli

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/di"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/server"
)

// newRemote starts a full server with property p1 and returns its API base URL.
func newRemote(t *testing.T) string {
	t.Helper()

	cfg := &config.Config{
		DataDir:             t.TempDir(),
		Port:                8080,
		DevMode:             true,
		AutosaveDebounce:    500 * time.Millisecond,
		MaintenanceSchedule: "0 0 3 * * *",
		IntegritySchedule:   "0 30 3 * * *",
		BackupSchedule:      "0 0 4 * * *",
		Backup:              &config.BackupConfig{},
	}
	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	_, err = container.PropertyService.Upsert("p1", properties.UpsertRequest{WorkspaceID: "w1", StatusPipeline: "analysis"})
	require.NoError(t, err)

	srv := httptest.NewServer(server.New(server.Config{Log: zerolog.Nop(), Config: cfg, Container: container}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

type cashUpdate struct {
	Inputs   domain.CashInputs  `json:"inputs"`
	Outputs  domain.CashOutputs `json:"outputs"`
	Snapshot *struct {
		SnapshotID string `json:"snapshot_id"`
	} `json:"snapshot"`
}

func TestRemote_UpdateCashThenSnapshot(t *testing.T) {
	api := newRemote(t)

	out, err := run(t, "remote", "--server", api, "-p", "p1", "update-cash",
		"--purchase-price", "500000",
		"--renovation-cost", "50000",
		"--other-costs", "10000",
		"--sale-price", "700000",
		"--snapshot",
	)
	require.NoError(t, err)

	var first cashUpdate
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, 66300.0, first.Outputs.NetProfit)
	require.NotNil(t, first.Snapshot)
	assert.NotEmpty(t, first.Snapshot.SnapshotID)

	// Only the sale price changes; the rest keeps its stored value.
	out, err = run(t, "remote", "--server", api, "-p", "p1", "update-cash", "--sale-price", "720000")
	require.NoError(t, err)

	var second cashUpdate
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	require.NotNil(t, second.Inputs.PurchasePrice)
	assert.Equal(t, 500000.0, *second.Inputs.PurchasePrice)
	assert.Equal(t, 82280.0, second.Outputs.NetProfit)
	assert.Nil(t, second.Snapshot)

	out, err = run(t, "remote", "--server", api, "-p", "p1", "history", "cash")
	require.NoError(t, err)

	var history struct {
		Items []struct {
			ID      string             `json:"id"`
			Outputs domain.CashOutputs `json:"outputs"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history.Items, 1)
	assert.Equal(t, first.Snapshot.SnapshotID, history.Items[0].ID)
	assert.Equal(t, 66300.0, history.Items[0].Outputs.NetProfit)
}

func TestRemote_Show(t *testing.T) {
	api := newRemote(t)

	out, err := run(t, "remote", "--server", api, "-p", "p1", "show", "financing")
	require.NoError(t, err)

	var view struct {
		PropertyID string `json:"property_id"`
		Outputs    struct {
			IsPartial bool `json:"is_partial"`
		} `json:"outputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "p1", view.PropertyID)
	assert.True(t, view.Outputs.IsPartial)
}

func TestRemote_Errors(t *testing.T) {
	api := newRemote(t)

	_, err := run(t, "remote", "--server", api, "-p", "p1", "snapshot", "cash")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "partial")

	_, err = run(t, "remote", "--server", api, "-p", "p1", "snapshot", "mortgage")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "remote", "--server", api, "-p", "p1", "update-cash")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "remote", "--server", api, "show", "cash")
	assert.Error(t, err)
}
