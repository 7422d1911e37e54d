// Package stats aggregates the context strings skills report on activation
// and on effect completion.
package stats

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/udisondev/skillcore/internal/game/skill"
)

// Store persists aggregated counters.
type Store interface {
	AddCounts(ctx context.Context, sessionID string, counts map[string]int64) error
}

// Collector counts reports per context string.
//
// Reports arrive on the simulation goroutine; Snapshot and Flush may be
// called from elsewhere.
type Collector struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewCollector creates a collector subscribed to EventStat on events.
// events may be nil; use Report directly then.
func NewCollector(events *skill.EventQueue) *Collector {
	c := &Collector{counts: make(map[string]int64)}
	if events != nil {
		events.Subscribe(skill.EventStat, func(e skill.Event) {
			c.Report(e.Context)
		})
	}
	return c
}

// Report counts one occurrence of a context string. Empty names are ignored.
func (c *Collector) Report(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name]++
}

// Count returns the current count for a context string.
func (c *Collector) Count(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Snapshot returns a copy of all counters.
func (c *Collector) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts)
}

// Flush adds the counters to store and resets them on success.
func (c *Collector) Flush(ctx context.Context, store Store, sessionID string) error {
	c.mu.Lock()
	pending := c.counts
	c.counts = make(map[string]int64)
	c.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	if err := store.AddCounts(ctx, sessionID, pending); err != nil {
		// put them back so a later flush can retry
		c.mu.Lock()
		for k, v := range pending {
			c.counts[k] += v
		}
		c.mu.Unlock()
		return fmt.Errorf("flushing %d stat counters: %w", len(pending), err)
	}
	return nil
}
