// Package slots holds the bounded ledger of slotted skill instances.
package slots

import (
	"log/slog"
	"slices"

	"github.com/udisondev/skillcore/internal/game/skill"
)

// DefaultMaxSlots is the slot capacity used when none is configured.
const DefaultMaxSlots = 4

// Registry is the ordered, bounded list of slotted instances.
// Membership here is what the activation scheduler tracks.
type Registry struct {
	maxSlots int
	slots    []*skill.Instance
	events   *skill.EventQueue
}

// NewRegistry creates a registry with maxSlots capacity.
// A non-positive maxSlots falls back to DefaultMaxSlots.
func NewRegistry(maxSlots int, events *skill.EventQueue) *Registry {
	if maxSlots <= 0 {
		slog.Warn("invalid slot capacity, using default", "maxSlots", maxSlots, "default", DefaultMaxSlots)
		maxSlots = DefaultMaxSlots
	}
	return &Registry{
		maxSlots: maxSlots,
		slots:    make([]*skill.Instance, 0, maxSlots),
		events:   events,
	}
}

// MaxSlots returns the capacity.
func (r *Registry) MaxSlots() int { return r.maxSlots }

// Len returns the number of occupied slots.
func (r *Registry) Len() int { return len(r.slots) }

// CanAdd reports whether a slot is free.
func (r *Registry) CanAdd() bool { return len(r.slots) < r.maxSlots }

// Contains reports whether inst occupies a slot.
func (r *Registry) Contains(inst *skill.Instance) bool {
	return slices.Contains(r.slots, inst)
}

// TryAdd slots inst. Fails when the registry is full, inst is already
// slotted or inst has been destroyed. Filling the last slot signals
// EventAllSlotsFilled, every time the registry becomes full.
func (r *Registry) TryAdd(inst *skill.Instance) bool {
	if !inst.IsValid() || !r.CanAdd() || r.Contains(inst) {
		return false
	}

	r.slots = append(r.slots, inst)
	r.events.Emit(skill.Event{Kind: skill.EventSlotted, Instance: inst, SkillID: inst.SkillID(), Count: len(r.slots)})

	if len(r.slots) == r.maxSlots {
		r.events.Emit(skill.Event{Kind: skill.EventAllSlotsFilled, Count: len(r.slots)})
		slog.Debug("all skill slots filled", "slots", r.maxSlots)
	}
	return true
}

// Remove frees inst's slot. Returns false if inst was not slotted.
func (r *Registry) Remove(inst *skill.Instance) bool {
	idx := slices.Index(r.slots, inst)
	if idx < 0 {
		return false
	}
	r.slots = slices.Delete(r.slots, idx, idx+1)
	r.events.Emit(skill.Event{Kind: skill.EventUnslotted, Instance: inst, SkillID: inst.SkillID(), Count: len(r.slots)})
	return true
}

// Slotted returns a copy of the slotted instances in slot order.
// Callers may destroy or remove instances while walking the copy.
func (r *Registry) Slotted() []*skill.Instance {
	return slices.Clone(r.slots)
}

// Clear frees every slot and returns what was slotted.
func (r *Registry) Clear() []*skill.Instance {
	snapshot := r.Slotted()
	for _, inst := range snapshot {
		r.Remove(inst)
	}
	return snapshot
}
