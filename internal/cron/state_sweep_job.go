package cron

import (
	"context"
	"errors"

	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

// StateSweepJobName labels the client state sweep in logs and metrics.
const StateSweepJobName = "client_state_sweep"

type stateSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

type sweepCounter interface {
	AddSwept(n int64)
}

// StateSweepJob purges expired browser state rows. Only the SQL state backend
// needs it; Redis expires keys on its own.
type StateSweepJob struct {
	store   stateSweeper
	counter sweepCounter
	logg    *logger.Logger
}

func NewStateSweepJob(store stateSweeper, counter sweepCounter, logg *logger.Logger) (*StateSweepJob, error) {
	if store == nil {
		return nil, errors.New("state store required")
	}
	return &StateSweepJob{store: store, counter: counter, logg: logg}, nil
}

func (j *StateSweepJob) Name() string { return StateSweepJobName }

func (j *StateSweepJob) Run(ctx context.Context) error {
	removed, err := j.store.Sweep(ctx)
	if err != nil {
		return err
	}
	if j.counter != nil {
		j.counter.AddSwept(removed)
	}
	if j.logg != nil && removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "client_state.swept")
	}
	return nil
}
