// Package sim drives a skill session: it owns the single-threaded step loop
// that advances timers, polls auto-activation and delivers events.
package sim

import (
	"log/slog"
	"time"

	"github.com/udisondev/skillcore/internal/clock"
	"github.com/udisondev/skillcore/internal/config"
	"github.com/udisondev/skillcore/internal/data"
	"github.com/udisondev/skillcore/internal/game/inventory"
	"github.com/udisondev/skillcore/internal/game/scheduler"
	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/game/slots"
	"github.com/udisondev/skillcore/internal/game/stats"
	"github.com/udisondev/skillcore/internal/game/upgrade"
)

// commandBuffer bounds work queued by other goroutines between steps.
const commandBuffer = 64

// Simulation wires one session's skill subsystem together.
//
// All state is owned by the goroutine calling Step (Run's goroutine once
// started). Other goroutines must go through Submit or Do.
type Simulation struct {
	clock   clock.Clock
	catalog *data.Catalog

	events    *skill.EventQueue
	registry  *slots.Registry
	applier   *upgrade.Applier
	history   upgrade.History
	inventory *inventory.Inventory
	scheduler *scheduler.Scheduler
	stats     *stats.Collector

	tickInterval      time.Duration
	maxSizeMultiplier float64

	commands chan func(*Simulation)
	steps    uint64
}

// New creates a simulation. A nil history starts an empty in-memory one.
func New(cfg config.Simulation, catalog *data.Catalog, clk clock.Clock, history upgrade.History) *Simulation {
	if history == nil {
		history = upgrade.NewMemoryHistory()
	}
	events := skill.NewEventQueue()
	registry := slots.NewRegistry(cfg.MaxSlots, events)
	applier := upgrade.NewApplier(events)

	s := &Simulation{
		clock:             clk,
		catalog:           catalog,
		events:            events,
		registry:          registry,
		applier:           applier,
		history:           history,
		inventory:         inventory.New(registry, applier, history, events),
		scheduler:         scheduler.New(events, cfg.PollInterval),
		stats:             stats.NewCollector(events),
		tickInterval:      cfg.TickInterval,
		maxSizeMultiplier: cfg.MaxSizeMultiplier,
		commands:          make(chan func(*Simulation), commandBuffer),
	}
	if s.tickInterval <= 0 {
		s.tickInterval = config.DefaultSimulation().TickInterval
	}

	events.Subscribe(skill.EventAllSlotsFilled, func(e skill.Event) {
		slog.Info("all skill slots filled", "slots", e.Count)
	})
	events.Subscribe(skill.EventMaxCooldownReached, func(e skill.Event) {
		slog.Info("skill reached max cooldown upgrade", "skill", e.SkillID)
	})
	events.Subscribe(skill.EventMaxPassiveReached, func(e skill.Event) {
		slog.Info("skill reached max passive upgrade", "skill", e.SkillID)
	})

	return s
}

// Events returns the session event queue for subscribers.
func (s *Simulation) Events() *skill.EventQueue { return s.events }

// Inventory returns the owned skill stacks.
func (s *Simulation) Inventory() *inventory.Inventory { return s.inventory }

// Registry returns the slot registry.
func (s *Simulation) Registry() *slots.Registry { return s.registry }

// Scheduler returns the auto-activation scheduler.
func (s *Simulation) Scheduler() *scheduler.Scheduler { return s.scheduler }

// Stats returns the stat collector. Safe for concurrent use.
func (s *Simulation) Stats() *stats.Collector { return s.stats }

// History returns the upgrade history.
func (s *Simulation) History() upgrade.History { return s.history }

// Steps returns how many steps have run.
func (s *Simulation) Steps() uint64 { return s.steps }

// Step runs one simulation step. The clock is sampled once and every owned
// instance is ticked with that same time.
func (s *Simulation) Step() {
	now := s.clock.Now()
	s.steps++

	s.events.Drain()

	// snapshot: ticking may release or destroy instances
	for _, inst := range s.inventory.Instances() {
		if inst.IsValid() {
			inst.Tick(now)
		}
	}

	if s.scheduler.Due(now) {
		s.scheduler.Poll(now)
	}

	s.checkMaxPassive()
	s.events.Drain()
}

// Pickup acquires one copy of the skill id. A second copy of an owned skill
// joins its stack. Returns false for unknown ids and rejected pickups.
func (s *Simulation) Pickup(id string) bool {
	if s.inventory.Has(id) {
		return s.inventory.Increment(id, 1)
	}

	def, err := s.catalog.Get(id)
	if err != nil {
		slog.Warn("skill pickup ignored", "skill", id, "err", err)
		return false
	}

	inst := skill.NewInstance(def, s.events)
	hooks, err := skill.CreateHooks(def.Effect)
	if err != nil {
		slog.Warn("skill effect hooks unavailable", "skill", id, "effect", def.Effect, "err", err)
	} else {
		inst.SetHooks(hooks)
	}

	if !s.inventory.Add(inst) {
		return false
	}
	s.checkMaxPassive()
	return true
}

// Drop removes one copy of the skill id.
func (s *Simulation) Drop(id string) bool {
	return s.inventory.Remove(id, 1)
}

// Activate manually activates the skill id (manual skills are never
// activated by the scheduler).
func (s *Simulation) Activate(id string) bool {
	inst := s.inventory.Get(id)
	if inst == nil {
		return false
	}
	return inst.TryActivate(s.clock.Now())
}

// ToggleOff explicitly deactivates the skill id. For a one-time skill this
// consumes one copy.
func (s *Simulation) ToggleOff(id string) bool {
	inst := s.inventory.Get(id)
	if inst == nil {
		return false
	}
	return inst.Deactivate(s.clock.Now())
}

// Trigger delivers the fire signal to every owned instance.
// Returns how many started firing.
func (s *Simulation) Trigger() int {
	now := s.clock.Now()
	fired := 0
	for _, inst := range s.inventory.Instances() {
		if inst.Fire(now) {
			fired++
		}
	}
	return fired
}

// GrantUpgrade records rec in the session history and applies it to every
// owned instance. Instances acquired later receive it through replay.
func (s *Simulation) GrantUpgrade(rec upgrade.Record) {
	s.history.Append(rec)
	for _, inst := range s.inventory.Instances() {
		s.applier.Apply(inst, rec)
	}
	s.checkMaxPassive()
	slog.Debug("upgrade granted", "type", rec.Type, "value", rec.Value, "skill", rec.SkillID)
}

// Clear destroys every owned skill.
func (s *Simulation) Clear() {
	s.inventory.Clear()
}

func (s *Simulation) checkMaxPassive() {
	if s.maxSizeMultiplier <= 0 {
		return
	}
	for _, inst := range s.inventory.Instances() {
		if inst.SizeMultiplier() >= s.maxSizeMultiplier {
			s.applier.AnnounceMaxPassive(inst)
		}
	}
}
