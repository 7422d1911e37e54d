package sim

import (
	"context"
	"log/slog"
	"time"
)

// Run steps the simulation every tick interval until ctx is canceled.
// Submitted commands run on this goroutine between steps.
func (s *Simulation) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	slog.Info("skill simulation started", "tick", s.tickInterval, "poll", s.scheduler.Interval())

	for {
		select {
		case <-ctx.Done():
			s.events.Drain()
			slog.Info("skill simulation stopped", "steps", s.steps)
			return nil

		case fn := <-s.commands:
			fn(s)

		case <-ticker.C:
			s.Step()
		}
	}
}

// Submit queues fn to run on the loop goroutine. Blocks while the queue is
// full, until ctx is canceled.
func (s *Simulation) Submit(ctx context.Context, fn func(*Simulation)) error {
	select {
	case s.commands <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do is Submit that waits until fn has run.
func (s *Simulation) Do(ctx context.Context, fn func(*Simulation)) error {
	done := make(chan struct{})
	err := s.Submit(ctx, func(s *Simulation) {
		defer close(done)
		fn(s)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
