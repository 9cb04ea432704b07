package di

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/properties"
	"github.com/widia-io/widia-flip-sub001/internal/modules/rates"
	testutil "github.com/widia-io/widia-flip-sub001/internal/testing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:             t.TempDir(),
		AutosaveDebounce:    500 * time.Millisecond,
		MaintenanceSchedule: "0 0 3 * * *",
		IntegritySchedule:   "0 30 3 * * *",
		BackupSchedule:      "0 0 4 * * *",
		Backup:              &config.BackupConfig{RetentionDays: 90},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.FileExists(t, filepath.Join(cfg.DataDir, "analysis.db"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "ledger.db"))
	assert.Len(t, container.Databases(), 2)
	assert.Len(t, container.Scheduler.Entries(), 3)
	assert.Equal(t, "backup", jobs.Backup.Name())
}

func TestWire_EndToEnd(t *testing.T) {
	container, _, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	_, err = container.PropertyService.Upsert("p1", properties.UpsertRequest{WorkspaceID: "w1", StatusPipeline: "analysis"})
	require.NoError(t, err)

	// A new workspace is bootstrapped with the system default rates
	effective, err := container.RatesService.EffectiveRates("p1")
	require.NoError(t, err)
	assert.Equal(t, rates.SystemDefault(), effective)

	view, err := container.AnalysisService.UpdateCash("p1", domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, err)
	assert.Equal(t, 66300.0, view.Outputs.NetProfit)

	result, err := container.SnapshotService.CaptureCash("p1")
	require.NoError(t, err)

	items, err := container.SnapshotService.ListCash("p1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, result.SnapshotID, items[0].ID)

	report, err := container.SnapshotService.VerifyIntegrity()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
}

func TestWire_BadSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupSchedule = "whenever"

	_, _, err := Wire(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	// A regular file where the data directory should be
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg := &config.Config{DataDir: filepath.Join(blocker, "data")}

	_, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
}
