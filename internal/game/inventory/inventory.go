// Package inventory owns picked-up skill instances as per-skill stacks.
package inventory

import (
	"log/slog"
	"slices"

	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/game/slots"
	"github.com/udisondev/skillcore/internal/game/upgrade"
)

// Stack is the owned copies of one skill, collapsed to one representative instance.
type Stack struct {
	Instance *skill.Instance
	Count    int
}

// Inventory keeps at most one stack per skill id, each holding a slot in
// the registry. It is the Owner of every instance it accepted.
type Inventory struct {
	registry *slots.Registry
	applier  *upgrade.Applier
	history  upgrade.History
	events   *skill.EventQueue

	stacks map[string]*Stack
	order  []string // skill ids in acquisition order
}

// New creates an empty inventory. history may be nil when no upgrades exist.
func New(registry *slots.Registry, applier *upgrade.Applier, history upgrade.History, events *skill.EventQueue) *Inventory {
	return &Inventory{
		registry: registry,
		applier:  applier,
		history:  history,
		events:   events,
		stacks:   make(map[string]*Stack),
	}
}

// Add takes ownership of a freshly created instance.
//
// The pickup is rejected, and inst destroyed, when no slot is free or a
// stack of the same skill already exists. On success the session's upgrade
// history is replayed onto inst.
func (inv *Inventory) Add(inst *skill.Instance) bool {
	if !inst.IsValid() {
		return false
	}
	id := inst.SkillID()

	if !inv.registry.CanAdd() {
		slog.Info("skill pickup rejected: slots full", "skill", id, "slots", inv.registry.MaxSlots())
		inst.Destroy()
		return false
	}
	if _, ok := inv.stacks[id]; ok {
		slog.Info("skill pickup rejected: already owned", "skill", id)
		inst.Destroy()
		return false
	}
	if !inv.registry.TryAdd(inst) {
		slog.Warn("skill pickup rejected by slot registry", "skill", id, "objectID", inst.ObjectID())
		inst.Destroy()
		return false
	}

	inv.stacks[id] = &Stack{Instance: inst, Count: 1}
	inv.order = append(inv.order, id)
	inst.SetOwner(inv)

	if inv.history != nil && inv.applier != nil {
		inv.applier.ReplayAll(inst, inv.history.OrderedHistory())
	}

	inv.events.Emit(skill.Event{Kind: skill.EventStackAdded, Instance: inst, SkillID: id, Count: 1})
	slog.Debug("skill added", "skill", id, "objectID", inst.ObjectID())
	return true
}

// Increment adds amount copies to an existing stack.
func (inv *Inventory) Increment(id string, amount int) bool {
	st, ok := inv.stacks[id]
	if !ok || amount <= 0 {
		return false
	}
	st.Count += amount
	inv.events.Emit(skill.Event{Kind: skill.EventStackAdded, Instance: st.Instance, SkillID: id, Count: st.Count})
	return true
}

// Remove takes amount copies (at least one) off the stack of id. When the
// count reaches zero the stack is dropped, its slot freed and the instance
// destroyed.
func (inv *Inventory) Remove(id string, amount int) bool {
	st, ok := inv.stacks[id]
	if !ok {
		return false
	}
	if amount <= 0 {
		amount = 1
	}

	st.Count -= amount
	if st.Count > 0 {
		inv.events.Emit(skill.Event{Kind: skill.EventStackRemoved, Instance: st.Instance, SkillID: id, Count: st.Count})
		return true
	}

	delete(inv.stacks, id)
	inv.order = slices.DeleteFunc(inv.order, func(s string) bool { return s == id })
	inv.registry.Remove(st.Instance)
	st.Instance.Destroy()

	inv.events.Emit(skill.Event{Kind: skill.EventTypeRemoved, Instance: st.Instance, SkillID: id})
	slog.Debug("skill removed", "skill", id, "objectID", st.Instance.ObjectID())
	return true
}

// RemoveInstance is Remove addressed by instance. Instances that do not
// represent a stack here are ignored.
func (inv *Inventory) RemoveInstance(inst *skill.Instance, amount int) bool {
	if inst == nil {
		return false
	}
	st, ok := inv.stacks[inst.SkillID()]
	if !ok || st.Instance != inst {
		return false
	}
	return inv.Remove(inst.SkillID(), amount)
}

// Release implements skill.Owner: a consumed one-time instance gives up one
// copy. If copies remain, the instance stays as their representative.
func (inv *Inventory) Release(inst *skill.Instance) {
	st, ok := inv.stacks[inst.SkillID()]
	if !ok || st.Instance != inst {
		inst.Destroy()
		return
	}
	inv.Remove(inst.SkillID(), 1)
	if inst.IsValid() {
		inst.Rearm()
	}
}

// Clear destroys every owned instance.
func (inv *Inventory) Clear() {
	// snapshot: Remove mutates stacks and order
	for _, id := range slices.Clone(inv.order) {
		if st, ok := inv.stacks[id]; ok {
			inv.Remove(id, st.Count)
		}
	}
}

// Count returns how many copies of id are owned.
func (inv *Inventory) Count(id string) int {
	if st, ok := inv.stacks[id]; ok {
		return st.Count
	}
	return 0
}

// Has reports whether a stack of id exists.
func (inv *Inventory) Has(id string) bool {
	_, ok := inv.stacks[id]
	return ok
}

// Get returns the representative instance of id, or nil.
func (inv *Inventory) Get(id string) *skill.Instance {
	if st, ok := inv.stacks[id]; ok {
		return st.Instance
	}
	return nil
}

// IDs returns owned skill ids in acquisition order.
func (inv *Inventory) IDs() []string {
	return slices.Clone(inv.order)
}

// Instances returns a snapshot of owned instances in acquisition order.
func (inv *Inventory) Instances() []*skill.Instance {
	out := make([]*skill.Instance, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, inv.stacks[id].Instance)
	}
	return out
}

// Active returns owned instances whose effect is in progress.
func (inv *Inventory) Active() []*skill.Instance {
	return inv.filter((*skill.Instance).IsActive)
}

// OnCooldown returns owned instances currently on cooldown.
func (inv *Inventory) OnCooldown() []*skill.Instance {
	return inv.filter((*skill.Instance).IsOnCooldown)
}

func (inv *Inventory) filter(keep func(*skill.Instance) bool) []*skill.Instance {
	var out []*skill.Instance
	for _, inst := range inv.Instances() {
		if keep(inst) {
			out = append(out, inst)
		}
	}
	return out
}
