package script

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/skillcore/internal/sim"
)

// Player submits script steps into a running simulation at their offsets.
type Player struct {
	script *Script
}

// NewPlayer creates a player for script.
func NewPlayer(script *Script) *Player {
	return &Player{script: script}
}

// Play blocks until every step has been applied or ctx is canceled.
// The simulation's Run loop must be running.
func (p *Player) Play(ctx context.Context, s *sim.Simulation) error {
	start := time.Now()
	slog.Info("script playback started", "steps", len(p.script.Steps))

	for idx, st := range p.script.Steps {
		if wait := st.At - time.Since(start); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
		if err := s.Do(ctx, st.Apply); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("applying step %d (%s): %w", idx, st.Action, err)
		}
	}

	slog.Info("script playback finished", "elapsed", time.Since(start))
	return nil
}
