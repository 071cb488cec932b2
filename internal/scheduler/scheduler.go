// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs such as publishing
// scheduled articles.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned when a job name is not registered.
var ErrJobNotFound = errors.New("job not found")

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

type registeredJob struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	run         JobFunc

	running bool
	lastRun time.Time
	lastErr error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run,omitzero"`
	NextRun     time.Time `json:"next_run,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

// Scheduler holds the cron instance and the jobs registered on it.
type Scheduler struct {
	cron   *cron.Cron
	clock  clock.Clock
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]*registeredJob
}

// New creates a new scheduler. A nil clock means the wall clock.
func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		clock:  clk,
		logger: logger,
		jobs:   make(map[string]*registeredJob),
	}
}

// Add registers a job under a standard five-field cron schedule.
func (s *Scheduler) Add(name, description, schedule string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	j := &registeredJob{name: name, description: description, schedule: schedule, run: run}
	id, err := s.cron.AddFunc(schedule, func() {
		if err := s.execute(context.Background(), j); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("adding job %q: %w", name, err)
	}
	j.entryID = id
	s.jobs[name] = j
	return nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// TriggerNow runs the named job immediately, outside its schedule.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrJobNotFound)
	}
	return s.execute(ctx, j)
}

// Jobs lists the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     j.lastRun,
			NextRun:     s.cron.Entry(j.entryID).Next,
		}
		if j.lastErr != nil {
			info.LastError = j.lastErr.Error()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// execute runs j unless a run of it is already in progress.
func (s *Scheduler) execute(ctx context.Context, j *registeredJob) error {
	s.mu.Lock()
	if j.running {
		s.mu.Unlock()
		s.logger.Debug("job already running, skipped", "job", j.name)
		return nil
	}
	j.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	err := j.run(ctx)

	s.mu.Lock()
	j.running = false
	j.lastRun = s.clock.Now()
	j.lastErr = err
	s.mu.Unlock()
	return err
}
