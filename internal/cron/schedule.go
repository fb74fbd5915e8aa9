package cron

import (
	"context"
	"time"
)

// Job is one periodic maintenance task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a job with its cadence.
type Entry struct {
	Job   Job
	Every time.Duration
}

// Schedule tracks when each job is next due. A new entry is due immediately.
type Schedule struct {
	entries []Entry
	next    map[string]time.Time
}

func NewSchedule() *Schedule {
	return &Schedule{next: map[string]time.Time{}}
}

// Add registers job to run every interval. Nil jobs are ignored and a
// non-positive interval falls back to an hour.
func (s *Schedule) Add(job Job, every time.Duration) *Schedule {
	if job == nil {
		return s
	}
	if every <= 0 {
		every = defaultEvery
	}
	s.entries = append(s.entries, Entry{Job: job, Every: every})
	return s
}

// Due returns the entries whose time has come, in registration order, and
// moves each of them one interval past now.
func (s *Schedule) Due(now time.Time) []Entry {
	var due []Entry
	for _, entry := range s.entries {
		name := entry.Job.Name()
		if next, ok := s.next[name]; ok && now.Before(next) {
			continue
		}
		s.next[name] = now.Add(entry.Every)
		due = append(due, entry)
	}
	return due
}

// Entries returns a copy of the registered entries.
func (s *Schedule) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
