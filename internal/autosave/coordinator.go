package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/domain"
)

// DefaultWindow is the debounce window used when none is configured.
const DefaultWindow = 500 * time.Millisecond

// ErrClosed is returned by operations on a closed Coordinator.
var ErrClosed = errors.New("autosave coordinator closed")

// Inputs is the live input set of one analysis kind.
type Inputs interface {
	HasAnyValue() bool
	IsPartial() bool
}

// Patch changes some fields of an input set.
type Patch[I any] interface {
	Apply(current I) I
}

// Saver persists the full input set and returns the recomputed outputs.
type Saver[I any, O any] interface {
	Save(ctx context.Context, inputs I) (O, error)
}

// SnapshotResult identifies a captured snapshot.
type SnapshotResult struct {
	SnapshotID string    `json:"snapshot_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshotter captures a snapshot of the persisted analysis.
type Snapshotter interface {
	Snapshot(ctx context.Context) (SnapshotResult, error)
}

// Clock starts timers. AfterFunc returns the timer's stop function.
type Clock interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Config configures a Coordinator.
type Config struct {
	Window time.Duration
	Clock  Clock
}

// save is one outgoing request. Saves are sent one at a time in start order;
// each waits for prev before calling the Saver.
type save[I any] struct {
	seq    uint64
	inputs I
	prev   *save[I]
	done   chan struct{}
	err    error
	run    sync.Once
}

// Coordinator debounces edits to one live analysis and sends them through a Saver.
//
// Every save carries the full input set. Saves are numbered when started and a
// response belonging to anything but the most recently started save is dropped.
type Coordinator[I Inputs, O any] struct {
	saver   Saver[I, O]
	snapper Snapshotter
	window  time.Duration
	clock   Clock
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	inputs     I
	outputs    O
	hasOutputs bool
	lastErr    error
	dirty      bool
	seq        uint64
	last       *save[I]
	stopTimer  func() bool
	timerGen   uint64
}

// NewCoordinator creates a coordinator starting from the given persisted inputs.
func NewCoordinator[I Inputs, O any](saver Saver[I, O], snapper Snapshotter, initial I, cfg Config, log zerolog.Logger) *Coordinator[I, O] {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator[I, O]{
		saver:   saver,
		snapper: snapper,
		window:  cfg.Window,
		clock:   cfg.Clock,
		log:     log.With().Str("component", "autosave").Logger(),
		ctx:     ctx,
		cancel:  cancel,
		state:   Idle,
		inputs:  initial,
	}
}

// Edit applies a local change and restarts the debounce timer.
func (c *Coordinator[I, O]) Edit(p Patch[I]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}

	c.inputs = p.Apply(c.inputs)
	c.dirty = true
	c.state = Transition(c.state, EventEdit)

	c.stopTimerLocked()
	gen := c.timerGen
	c.stopTimer = c.clock.AfterFunc(c.window, func() { c.onTimer(gen) })
	c.state = Transition(c.state, EventTimerArmed)
}

// Flush sends pending edits now and waits until every started save has completed.
// It returns the error of the last save, if any.
func (c *Coordinator[I, O]) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return ErrClosed
	}
	c.stopTimerLocked()
	s := c.beginLocked()
	if s == nil {
		s = c.last
	}
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	go c.send(s)
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CaptureSnapshot flushes pending edits, then captures a snapshot.
// No snapshot is taken when the flush fails or the local inputs are partial;
// a cleared input set is never sent, so the server would still hold old values.
func (c *Coordinator[I, O]) CaptureSnapshot(ctx context.Context) (SnapshotResult, error) {
	if err := c.Flush(ctx); err != nil {
		return SnapshotResult{}, err
	}
	if c.Inputs().IsPartial() {
		return SnapshotResult{}, domain.ErrPartialAnalysis
	}
	if c.snapper == nil {
		return SnapshotResult{}, errors.New("no snapshotter configured")
	}
	result, err := c.snapper.Snapshot(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Snapshot capture failed")
		return SnapshotResult{}, err
	}
	return result, nil
}

// Inputs returns the local input set, including unsaved edits.
func (c *Coordinator[I, O]) Inputs() I {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputs
}

// Outputs returns the outputs of the last accepted save. The previous outputs
// stay visible while a save is in flight.
func (c *Coordinator[I, O]) Outputs() (O, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outputs, c.hasOutputs
}

// State returns the current state.
func (c *Coordinator[I, O]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the last accepted save, nil after a success.
func (c *Coordinator[I, O]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close stops the timer. Pending edits are not sent; call Flush first to keep them.
func (c *Coordinator[I, O]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.cancel()
}

func (c *Coordinator[I, O]) onTimer(gen uint64) {
	c.mu.Lock()
	if gen != c.timerGen || c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.stopTimer = nil
	s := c.beginLocked()
	c.mu.Unlock()

	if s != nil {
		go c.send(s)
	}
}

// beginLocked starts a save of the current inputs, or returns nil when there is
// nothing to send.
func (c *Coordinator[I, O]) beginLocked() *save[I] {
	if !c.dirty {
		return nil
	}
	c.dirty = false

	if !c.inputs.HasAnyValue() {
		c.state = Transition(c.state, EventSaveSkipped)
		c.log.Debug().Msg("Skipping save, every field is empty")
		return nil
	}

	c.seq++
	s := &save[I]{
		seq:    c.seq,
		inputs: c.inputs,
		prev:   c.last,
		done:   make(chan struct{}),
	}
	c.last = s
	c.state = Transition(c.state, EventSaveStarted)
	return s
}

func (c *Coordinator[I, O]) send(s *save[I]) {
	s.run.Do(func() { c.execute(s) })
}

func (c *Coordinator[I, O]) execute(s *save[I]) {
	defer close(s.done)

	if s.prev != nil {
		<-s.prev.done
	}

	out, err := c.saver.Save(c.ctx, s.inputs)
	s.err = err

	c.mu.Lock()
	defer c.mu.Unlock()

	if s.seq != c.seq {
		c.log.Debug().Uint64("seq", s.seq).Uint64("latest", c.seq).Msg("Dropping stale save response")
		return
	}

	if err != nil {
		c.lastErr = err
		c.dirty = true
		c.state = Transition(c.state, EventSaveFailed)
		c.log.Warn().Err(err).Uint64("seq", s.seq).Msg("Autosave failed")
		return
	}

	c.outputs = out
	c.hasOutputs = true
	c.lastErr = nil
	c.state = Transition(c.state, EventSaveSucceeded)
}

func (c *Coordinator[I, O]) stopTimerLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.timerGen++
}
