// Package schedule applies named profiles on cron schedules.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chaz8081/lampctl/internal/profile"
)

// jobTimeout bounds one run: a connect scan plus four writes.
const jobTimeout = time.Minute

// Entry applies Profile whenever Cron fires. Cron takes the standard five
// fields or a descriptor such as "@daily" or "@every 30m".
type Entry struct {
	Cron    string `yaml:"cron"`
	Profile string `yaml:"profile"`
}

// Connector brings the lamp link up before a run.
type Connector interface {
	EnsureConnected(ctx context.Context) error
}

// Applier applies a stored profile by name.
type Applier interface {
	ApplyNamed(ctx context.Context, name string) (profile.Profile, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks every entry without scheduling anything.
func Validate(entries []Entry) error {
	var errs []error
	for i, e := range entries {
		if e.Profile == "" {
			errs = append(errs, fmt.Errorf("schedules[%d]: profile is required", i))
		}
		if _, err := parser.Parse(e.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedules[%d]: invalid cron %q: %w", i, e.Cron, err))
		}
	}
	return errors.Join(errs...)
}

// Scheduler runs the configured entries.
type Scheduler struct {
	cron      *cron.Cron
	connector Connector
	applier   Applier
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New registers entries; nothing runs until Start.
func New(entries []Entry, connector Connector, applier Applier, logger *slog.Logger) (*Scheduler, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:      cron.New(cron.WithParser(parser)),
		connector: connector,
		applier:   applier,
		logger:    logger,
	}
	for _, e := range entries {
		sched, _ := parser.Parse(e.Cron)
		name := e.Profile
		s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(name) }))
		logger.Info("[SCHEDULE] registered", "cron", e.Cron, "profile", name)
	}
	return s, nil
}

// Start begins running entries until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.started = true
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.started = false
}

// Next returns the next activation of every entry, in registration order.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, len(entries))
	for i, e := range entries {
		next[i] = e.Next
	}
	return next
}

func (s *Scheduler) fire(name string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		s.logger.Debug("[SCHEDULE] stopped, skipping", "profile", name)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.run(runCtx, name); err != nil {
		s.logger.Warn("[SCHEDULE] run failed", "profile", name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Info("[SCHEDULE] applied", "profile", name, "duration", time.Since(start))
}

func (s *Scheduler) run(ctx context.Context, name string) error {
	if err := s.connector.EnsureConnected(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	_, err := s.applier.ApplyNamed(ctx, name)
	return err
}
