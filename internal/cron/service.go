// Package cron runs the storefront's periodic maintenance jobs, one replica
// per job interval.
package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

const (
	defaultEvery = time.Hour
	defaultTick  = time.Minute
)

type runRecorder interface {
	ObserveRun(job string, duration time.Duration, err error)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Schedule *Schedule
	Locker   Locker
	Metrics  runRecorder

	// Tick is how often the schedule is checked for due jobs.
	Tick time.Duration
	Now  func() time.Time
}

// Service polls a Schedule and runs due jobs under a Locker lease.
//
// A successful run keeps its lease until it expires one interval later, so
// replicas that start at different times still run a job once per interval.
// A failed run releases the lease and any replica may retry on its next tick.
type Service struct {
	logg     *logger.Logger
	schedule *Schedule
	locker   Locker
	metrics  runRecorder
	tick     time.Duration
	now      func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	if p.Schedule == nil {
		p.Schedule = NewSchedule()
	}
	if p.Tick <= 0 {
		p.Tick = defaultTick
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		logg:     p.Logger,
		schedule: p.Schedule,
		locker:   p.Locker,
		metrics:  p.Metrics,
		tick:     p.Tick,
		now:      p.Now,
	}, nil
}

// Run checks the schedule immediately and then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	s.runDue(ctx)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

func (s *Service) runDue(ctx context.Context) {
	for _, entry := range s.schedule.Due(s.now()) {
		if ctx.Err() != nil {
			return
		}
		s.runEntry(ctx, entry)
	}
}

func (s *Service) runEntry(ctx context.Context, entry Entry) {
	name := entry.Job.Name()
	jobCtx := s.logg.WithField(ctx, "job", name)

	lease, ok, err := s.locker.Acquire(jobCtx, name, entry.Every)
	if err != nil {
		s.logg.Error(jobCtx, "cron.lock_failed", err)
		return
	}
	if !ok {
		s.logg.Debug(jobCtx, "cron.job_skipped")
		return
	}

	start := s.now()
	err = entry.Job.Run(jobCtx)
	duration := s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.ObserveRun(name, duration, err)
	}
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err == nil {
		s.logg.Info(jobCtx, "cron.job_completed")
		return
	}

	s.logg.Error(jobCtx, "cron.job_failed", err)
	if relErr := lease.Release(ctx); relErr != nil {
		s.logg.Error(jobCtx, "cron.lock_release_failed", relErr)
	}
}
