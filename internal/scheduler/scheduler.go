// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/widia-io/widia-flip-sub001/internal/events"
)

// ErrUnknownJob is returned by RunNow for names that were never registered.
var ErrUnknownJob = errors.New("job not registered")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Entry describes a registered job.
type Entry struct {
	Job      string    `json:"job"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev,omitempty"`
}

// Scheduler manages background jobs
type Scheduler struct {
	cron         *cron.Cron
	eventManager *events.Manager
	log          zerolog.Logger

	mu      sync.Mutex
	entries map[string]registered
}

type registered struct {
	id       cron.EntryID
	schedule string
	job      Job
}

// New creates a new scheduler. Schedules use six fields, seconds first.
func New(eventManager *events.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		eventManager: eventManager,
		log:          log.With().Str("component", "scheduler").Logger(),
		entries:      make(map[string]registered),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 0 3 * * *"        - 3 AM every day
//   - "0 */15 * * * *"     - Every 15 minutes
//   - "@every 30s"         - Every 30 seconds
//
// Job names must be unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(job) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s with %q: %w", job.Name(), schedule, err)
	}
	s.entries[job.Name()] = registered{id: id, schedule: schedule, job: job}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a registered job immediately (outside schedule)
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	entry, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownJob)
	}

	s.log.Info().Str("job", name).Msg("Running job immediately")
	return s.execute(entry.job)
}

// Entries lists registered jobs with their next run time.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for name, reg := range s.entries {
		e := s.cron.Entry(reg.id)
		out = append(out, Entry{Job: name, Schedule: reg.schedule, Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}

func (s *Scheduler) execute(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	start := time.Now()

	err := job.Run()
	status := &events.JobStatusData{Job: job.Name(), DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		status.Error = err.Error()
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
	} else {
		s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	}

	if s.eventManager != nil {
		s.eventManager.EmitTyped("scheduler", status)
	}
	return err
}
