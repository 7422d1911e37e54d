// Package scheduler auto-activates slotted skills whenever they are eligible.
package scheduler

import (
	"log/slog"
	"slices"
	"time"

	"github.com/udisondev/skillcore/internal/data"
	"github.com/udisondev/skillcore/internal/game/skill"
)

// DefaultInterval is the poll period used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Scheduler polls its tracked instances and fires every eligible one.
//
// The tracked list follows the slot registry only through EventSlotted and
// EventUnslotted; it is never rebuilt by reading the registry.
type Scheduler struct {
	interval time.Duration
	tracked  []*skill.Instance
	subs     []int
	events   *skill.EventQueue
	lastPoll time.Time
}

// New creates a scheduler subscribed to slot events on events.
func New(events *skill.EventQueue, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		interval: interval,
		events:   events,
	}
	s.subs = []int{
		events.Subscribe(skill.EventSlotted, s.onSlotted),
		events.Subscribe(skill.EventUnslotted, s.onUnslotted),
	}
	return s
}

// Close detaches the scheduler from the event queue.
func (s *Scheduler) Close() {
	for _, id := range s.subs {
		s.events.Unsubscribe(id)
	}
	s.subs = nil
}

// Interval returns the poll period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Tracked returns a copy of the tracked instances.
func (s *Scheduler) Tracked() []*skill.Instance {
	return slices.Clone(s.tracked)
}

// Due reports whether a poll is due at now.
func (s *Scheduler) Due(now time.Time) bool {
	return s.lastPoll.IsZero() || now.Sub(s.lastPoll) >= s.interval
}

// Poll prunes destroyed instances and activates every eligible one.
// Returns how many activations happened.
func (s *Scheduler) Poll(now time.Time) int {
	s.lastPoll = now
	fired := 0

	// backwards: entries may disappear while we walk
	for idx := len(s.tracked) - 1; idx >= 0; idx-- {
		if idx >= len(s.tracked) {
			continue
		}
		inst := s.tracked[idx]
		if !inst.IsValid() {
			s.tracked = slices.Delete(s.tracked, idx, idx+1)
			slog.Debug("scheduler pruned destroyed skill", "objectID", inst.ObjectID())
			continue
		}
		if inst.Definition().Manual {
			continue
		}
		// an active permanent skill has nothing left to start
		if inst.Definition().Kind == data.KindPermanent && inst.IsActive() {
			continue
		}
		if inst.TryActivate(now) {
			fired++
		}
	}
	return fired
}

func (s *Scheduler) onSlotted(e skill.Event) {
	if e.Instance == nil || slices.Contains(s.tracked, e.Instance) {
		return
	}
	s.tracked = append(s.tracked, e.Instance)
}

func (s *Scheduler) onUnslotted(e skill.Event) {
	s.tracked = slices.DeleteFunc(s.tracked, func(inst *skill.Instance) bool { return inst == e.Instance })
}
