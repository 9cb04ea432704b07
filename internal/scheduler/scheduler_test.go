package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/widia-io/widia-flip-sub001/internal/events"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(nil, zerolog.Nop())

	job := &countingJob{name: "maintenance"}
	require.NoError(t, s.AddJob("0 0 3 * * *", job))

	err := s.AddJob("0 0 4 * * *", job)
	assert.Error(t, err, "duplicate names are rejected")

	err = s.AddJob("not a schedule", &countingJob{name: "broken"})
	assert.Error(t, err)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "maintenance", entries[0].Job)
	assert.Equal(t, "0 0 3 * * *", entries[0].Schedule)
}

func TestRunNow_EmitsStatus(t *testing.T) {
	bus := events.NewBus()
	s := New(events.NewManager(bus, zerolog.Nop()), zerolog.Nop())

	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("disk full")}
	require.NoError(t, s.AddJob("@every 1h", ok))
	require.NoError(t, s.AddJob("@every 1h", failing))

	var completed, failed []*events.Event
	bus.Subscribe(events.JobCompleted, func(e *events.Event) { completed = append(completed, e) })
	bus.Subscribe(events.JobFailed, func(e *events.Event) { failed = append(failed, e) })

	require.NoError(t, s.RunNow("ok"))
	assert.EqualError(t, s.RunNow("failing"), "disk full")
	assert.ErrorIs(t, s.RunNow("missing"), ErrUnknownJob)

	assert.Equal(t, int32(1), ok.runs.Load())
	require.Len(t, completed, 1)
	assert.Equal(t, "ok", completed[0].Data["job"])
	require.Len(t, failed, 1)
	assert.Equal(t, "disk full", failed[0].Data["error"])
}
