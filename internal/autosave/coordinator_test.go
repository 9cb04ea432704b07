package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
	"github.com/widia-io/widia-flip-sub001/internal/modules/calculations"
	testutil "github.com/widia-io/widia-flip-sub001/internal/testing"
)

type saveReply struct {
	out domain.CashOutputs
	err error
}

type pendingSave struct {
	inputs domain.CashInputs
	reply  chan saveReply
}

// fakeSaver computes outputs locally. With blocking set, every call is handed
// to the test through started and waits for a reply.
type fakeSaver struct {
	mu       sync.Mutex
	calls    []domain.CashInputs
	err      error
	blocking bool
	started  chan pendingSave
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{started: make(chan pendingSave, 8)}
}

func (f *fakeSaver) Save(_ context.Context, in domain.CashInputs) (domain.CashOutputs, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	blocking, err := f.blocking, f.err
	f.mu.Unlock()

	if blocking {
		p := pendingSave{inputs: in, reply: make(chan saveReply, 1)}
		f.started <- p
		r := <-p.reply
		return r.out, r.err
	}
	if err != nil {
		return domain.CashOutputs{}, err
	}
	return calculations.ComputeCash(in, testutil.ScenarioRates), nil
}

func (f *fakeSaver) Calls() []domain.CashInputs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CashInputs(nil), f.calls...)
}

func (f *fakeSaver) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// fakeSnapshotter records what the saver had persisted when the capture ran.
type fakeSnapshotter struct {
	saver *fakeSaver
	seen  []domain.CashInputs
}

func (f *fakeSnapshotter) Snapshot(context.Context) (SnapshotResult, error) {
	calls := f.saver.Calls()
	if len(calls) == 0 {
		return SnapshotResult{}, errors.New("nothing persisted")
	}
	f.seen = append(f.seen, calls[len(calls)-1])
	return SnapshotResult{SnapshotID: "snap-1", CreatedAt: time.Now().UTC()}, nil
}

func setup(t *testing.T) (*Coordinator[domain.CashInputs, domain.CashOutputs], *fakeSaver, *fakeSnapshotter, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock()
	saver := newFakeSaver()
	snapper := &fakeSnapshotter{saver: saver}
	c := NewCoordinator[domain.CashInputs, domain.CashOutputs](saver, snapper, domain.CashInputs{},
		Config{Window: DefaultWindow, Clock: clock}, zerolog.Nop())
	t.Cleanup(c.Close)
	return c, saver, snapper, clock
}

func salePrice(v float64) domain.CashPatch {
	return domain.CashPatch{SalePrice: domain.Set(v)}
}

func TestCoordinator_DebounceCollapsesEdits(t *testing.T) {
	c, saver, _, clock := setup(t)

	c.Edit(domain.CashPatch{PurchasePrice: domain.Set(500000.0)})
	assert.Equal(t, Debouncing, c.State())
	clock.Advance(200 * time.Millisecond)
	c.Edit(salePrice(690000))
	clock.Advance(200 * time.Millisecond)
	c.Edit(salePrice(700000))
	clock.Advance(200 * time.Millisecond)

	// Each edit restarted the window, so nothing was sent yet
	assert.Empty(t, saver.Calls())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(300 * time.Millisecond)
	require.NoError(t, c.Flush(context.Background()))

	calls := saver.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 500000.0, *calls[0].PurchasePrice)
	assert.Equal(t, 700000.0, *calls[0].SalePrice)
	assert.Equal(t, Idle, c.State())

	out, ok := c.Outputs()
	require.True(t, ok)
	assert.False(t, out.IsPartial)
}

func TestCoordinator_SkipsAllNullInputs(t *testing.T) {
	c, saver, _, clock := setup(t)

	c.Edit(salePrice(700000))
	c.Edit(domain.CashPatch{SalePrice: domain.Clear[float64]()})
	clock.Advance(DefaultWindow)

	require.NoError(t, c.Flush(context.Background()))
	assert.Empty(t, saver.Calls())
	assert.Equal(t, Idle, c.State())
}

func TestCoordinator_SnapshotFlushesPendingEdit(t *testing.T) {
	c, saver, snapper, clock := setup(t)

	c.Edit(domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, c.Flush(context.Background()))

	c.Edit(salePrice(750000))
	result, err := c.CaptureSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snap-1", result.SnapshotID)

	require.Len(t, snapper.seen, 1)
	assert.Equal(t, 750000.0, *snapper.seen[0].SalePrice)

	// The superseded timer never fires a second save
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(time.Second)
	assert.Len(t, saver.Calls(), 2)
}

func TestCoordinator_SnapshotRefusedAfterClearingInputs(t *testing.T) {
	c, saver, snapper, _ := setup(t)

	c.Edit(domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, c.Flush(context.Background()))

	c.Edit(domain.FullCashPatch(domain.CashInputs{}))
	_, err := c.CaptureSnapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrPartialAnalysis)

	assert.Empty(t, snapper.seen)
	assert.Len(t, saver.Calls(), 1)
	assert.False(t, c.Inputs().HasAnyValue())
}

func TestCoordinator_SnapshotRefusedWhenPartial(t *testing.T) {
	c, saver, snapper, _ := setup(t)

	c.Edit(domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, c.Flush(context.Background()))

	c.Edit(domain.CashPatch{SalePrice: domain.Clear[float64]()})
	_, err := c.CaptureSnapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrPartialAnalysis)

	// The cleared field was still saved
	calls := saver.Calls()
	require.Len(t, calls, 2)
	assert.Nil(t, calls[1].SalePrice)
	assert.Empty(t, snapper.seen)
}

func TestCoordinator_FailedSaveKeepsEdits(t *testing.T) {
	c, saver, snapper, _ := setup(t)

	c.Edit(domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, c.Flush(context.Background()))
	before, _ := c.Outputs()

	boom := errors.New("connection refused")
	saver.setErr(boom)
	c.Edit(salePrice(800000))

	_, err := c.CaptureSnapshot(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, snapper.seen)
	assert.Equal(t, Error, c.State())
	assert.ErrorIs(t, c.LastError(), boom)
	assert.Equal(t, 800000.0, *c.Inputs().SalePrice)

	after, _ := c.Outputs()
	assert.Equal(t, before, after)

	// An explicit flush retries once the transport recovers
	saver.setErr(nil)
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, Idle, c.State())
	assert.NoError(t, c.LastError())

	out, _ := c.Outputs()
	assert.NotEqual(t, before.NetProfit, out.NetProfit)
}

func TestCoordinator_StaleResponseDropped(t *testing.T) {
	c, saver, _, clock := setup(t)
	saver.blocking = true

	c.Edit(salePrice(700000))
	clock.Advance(DefaultWindow)
	first := <-saver.started
	assert.Equal(t, Saving, c.State())

	c.Edit(salePrice(720000))
	clock.Advance(DefaultWindow)

	// The older save answers after the newer one started
	first.reply <- saveReply{out: domain.CashOutputs{NetProfit: 1}}
	second := <-saver.started
	assert.Equal(t, 720000.0, *second.inputs.SalePrice)

	_, ok := c.Outputs()
	assert.False(t, ok, "stale response must not be applied")

	second.reply <- saveReply{out: domain.CashOutputs{NetProfit: 2}}
	require.NoError(t, c.Flush(context.Background()))

	out, ok := c.Outputs()
	require.True(t, ok)
	assert.Equal(t, 2.0, out.NetProfit)
	assert.Equal(t, Idle, c.State())
}

func TestCoordinator_OutputsVisibleWhileSaving(t *testing.T) {
	c, saver, _, clock := setup(t)

	c.Edit(domain.FullCashPatch(testutil.ScenarioCashInputs()))
	require.NoError(t, c.Flush(context.Background()))
	before, _ := c.Outputs()

	saver.mu.Lock()
	saver.blocking = true
	saver.mu.Unlock()

	c.Edit(salePrice(710000))
	clock.Advance(DefaultWindow)
	pending := <-saver.started

	assert.Equal(t, Saving, c.State())
	current, ok := c.Outputs()
	assert.True(t, ok)
	assert.Equal(t, before, current)

	pending.reply <- saveReply{out: calculations.ComputeCash(pending.inputs, testutil.ScenarioRates)}
	require.NoError(t, c.Flush(context.Background()))
	current, _ = c.Outputs()
	assert.NotEqual(t, before, current)
}

func TestCoordinator_Closed(t *testing.T) {
	c, saver, _, clock := setup(t)

	c.Edit(salePrice(700000))
	c.Close()
	clock.Advance(DefaultWindow)

	assert.ErrorIs(t, c.Flush(context.Background()), ErrClosed)
	assert.Empty(t, saver.Calls())
}
