// Package livesync drives the independent periodic recomputation loops of
// the dashboard's live values.
package livesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one periodic recomputation.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context, now time.Time)
}

// Scheduler runs each job on its own ticker.
type Scheduler struct {
	jobs   []Job
	clock  func() time.Time
	logger *slog.Logger
}

// New creates a Scheduler. A nil clock uses time.Now.
func New(logger *slog.Logger, clock func() time.Time, jobs ...Job) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{jobs: jobs, clock: clock, logger: logger}
}

// Run runs every job once immediately and then at its interval until ctx is
// done. Loops are independent: a slow job never delays another.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, j := range s.jobs {
		if j.Interval <= 0 {
			return fmt.Errorf("livesync: job %q has non-positive interval %v", j.Name, j.Interval)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, j := range s.jobs {
		g.Go(func() error {
			s.loop(gCtx, j)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	s.logger.Debug("livesync: loop started", slog.String("job", j.Name), slog.Duration("interval", j.Interval))
	j.Run(ctx, s.clock())

	t := time.NewTicker(j.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("livesync: loop stopped", slog.String("job", j.Name))
			return
		case <-t.C:
			j.Run(ctx, s.clock())
		}
	}
}
