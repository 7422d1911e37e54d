package skill

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/skillcore/internal/data"
)

// Owner is notified when an instance consumes itself.
// Implemented by the inventory holding the instance's stack.
type Owner interface {
	Release(inst *Instance)
}

var nextObjectID atomic.Uint32

// Instance is one owned, stateful occurrence of a skill definition.
//
// Two orthogonal flags describe it: active (effect in progress) and
// onCooldown (activation blocked). Primed skills additionally run the
// Phase machine in primed.go; everything else uses the generic protocol.
//
// Not safe for concurrent use: instances live on the simulation goroutine.
type Instance struct {
	objectID uint32
	def      *data.Definition
	events   *EventQueue
	hooks    Hooks
	owner    Owner

	active          bool
	onCooldown      bool
	activationTime  time.Time
	cooldownEndTime time.Time
	phase           Phase

	cooldownMultiplier float64
	damageMultiplier   float64
	sizeMultiplier     float64

	destroyed bool
}

// NewInstance creates a fresh instance of def that reports to events.
// events may be nil, in which case signals are dropped.
func NewInstance(def *data.Definition, events *EventQueue) *Instance {
	return &Instance{
		objectID:           nextObjectID.Add(1),
		def:                def,
		events:             events,
		hooks:              NopHooks{},
		cooldownMultiplier: 1,
		damageMultiplier:   1,
		sizeMultiplier:     1,
	}
}

// ObjectID returns the unique runtime id of the instance.
func (i *Instance) ObjectID() uint32 { return i.objectID }

// Definition returns the shared definition.
func (i *Instance) Definition() *data.Definition { return i.def }

// SkillID returns the definition id.
func (i *Instance) SkillID() string { return i.def.ID }

// SetHooks replaces the lifecycle hooks. nil restores the no-op hooks.
func (i *Instance) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	i.hooks = h
}

// SetOwner records who holds the instance.
func (i *Instance) SetOwner(o Owner) { i.owner = o }

// IsValid reports whether the instance has not been destroyed.
func (i *Instance) IsValid() bool { return i != nil && !i.destroyed }

// IsActive reports whether the skill's effect is in progress.
func (i *Instance) IsActive() bool { return i.active }

// IsOnCooldown reports whether activation is blocked by the cooldown timer.
func (i *Instance) IsOnCooldown() bool { return i.onCooldown }

// ActivationTime returns when the current effect started.
func (i *Instance) ActivationTime() time.Time { return i.activationTime }

// CooldownEndTime returns when the running cooldown ends.
func (i *Instance) CooldownEndTime() time.Time { return i.cooldownEndTime }

// CooldownMultiplier returns the current cooldown scale in [MinCooldownMultiplier, 1].
func (i *Instance) CooldownMultiplier() float64 { return i.cooldownMultiplier }

// DamageMultiplier returns the accumulated damage scale (>= 1).
func (i *Instance) DamageMultiplier() float64 { return i.damageMultiplier }

// SizeMultiplier returns the accumulated size scale (>= 1).
func (i *Instance) SizeMultiplier() float64 { return i.sizeMultiplier }

// Damage returns the definition damage scaled by upgrades.
func (i *Instance) Damage() float64 { return i.def.Damage * i.damageMultiplier }

// Size returns the definition size scaled by upgrades.
func (i *Instance) Size() float64 { return i.def.Size * i.sizeMultiplier }

// ModifiedCooldown returns the cooldown after upgrades.
// Once the multiplier sits on its floor and the definition has a max
// upgraded repeat rate, that flat rate replaces the scaled cooldown.
func (i *Instance) ModifiedCooldown() time.Duration {
	if i.AtCooldownFloor() && i.def.MaxUpgradedRepeatRate > 0 {
		return i.def.MaxUpgradedRepeatRate
	}
	return time.Duration(float64(i.def.BaseCooldown) * i.cooldownMultiplier)
}

// ModifiedDuration returns the effect duration. Not scaled by upgrades.
func (i *Instance) ModifiedDuration() time.Duration {
	return i.def.BaseDuration
}

// AtCooldownFloor reports whether cooldown upgrades are exhausted.
func (i *Instance) AtCooldownFloor() bool {
	return i.cooldownMultiplier <= i.def.MinCooldownMultiplier
}

// RemainingCooldown returns time left until the cooldown ends, or 0.
func (i *Instance) RemainingCooldown(now time.Time) time.Duration {
	if !i.onCooldown {
		return 0
	}
	return max(0, i.cooldownEndTime.Sub(now))
}

// RemainingDuration returns time left of the current effect, or 0.
func (i *Instance) RemainingDuration(now time.Time) time.Duration {
	if !i.active {
		return 0
	}
	return max(0, i.activationTime.Add(i.ModifiedDuration()).Sub(now))
}

// CanActivate reports whether Activate would be accepted.
// Duration skills may be re-activated while active; their effects overlap.
func (i *Instance) CanActivate() bool {
	if !i.IsValid() {
		return false
	}
	if i.def.Kind == data.KindPrimed {
		return i.primedCanActivate()
	}
	if i.onCooldown {
		return false
	}
	switch i.def.Kind {
	case data.KindOneTime, data.KindToggle:
		return !i.active
	default:
		return true
	}
}

// TryActivate activates the instance if CanActivate allows it.
func (i *Instance) TryActivate(now time.Time) bool {
	if !i.CanActivate() {
		return false
	}
	i.Activate(now)
	return true
}

// Activate starts the skill without checking CanActivate.
// The cooldown starts right away, independent of when the effect ends.
func (i *Instance) Activate(now time.Time) {
	if !i.IsValid() {
		return
	}
	if i.def.Kind == data.KindPrimed {
		i.prime()
		return
	}

	i.active = true
	i.activationTime = now
	if i.def.HasCooldown() {
		i.startCooldown(now)
	}

	i.emit(EventActivated)
	i.stat("activated")
	i.hooks.OnActivated(i)

	slog.Debug("skill activated",
		"skill", i.def.ID,
		"objectID", i.objectID,
		"cooldown", i.ModifiedCooldown())
}

// Deactivate switches the skill off explicitly (e.g. a toggle turned off).
// Returns false if the instance was not active.
// A one-time skill is consumed: its owner releases it.
func (i *Instance) Deactivate(now time.Time) bool {
	if !i.IsValid() {
		return false
	}
	if i.def.Kind == data.KindPrimed {
		return i.primedDeactivate(now)
	}
	if !i.active {
		return false
	}

	i.active = false
	i.emit(EventDeactivated)
	i.stat("completed")
	i.hooks.OnDeactivated(i)
	if i.def.HasCooldown() && !i.onCooldown {
		i.startCooldown(now)
	}

	if i.def.Kind == data.KindOneTime {
		i.consume()
	}
	return true
}

// Tick advances timers to now. All instances of one simulation step must
// be ticked with the same now.
func (i *Instance) Tick(now time.Time) {
	if !i.IsValid() {
		return
	}
	if i.def.Kind == data.KindPrimed {
		i.primedTick(now)
		return
	}

	if i.onCooldown && !now.Before(i.cooldownEndTime) {
		i.onCooldown = false
	}

	if i.active && i.def.ExpiresByDuration() &&
		!now.Before(i.activationTime.Add(i.ModifiedDuration())) {
		i.expire()
	}
}

// Fire delivers the external edge-triggered fire signal.
// Only primed skills react; returns true if firing started.
func (i *Instance) Fire(now time.Time) bool {
	if !i.IsValid() || i.def.Kind != data.KindPrimed {
		return false
	}
	return i.primedFire(now)
}

// Destroy discards the instance in whatever state it is in.
// Timers are dropped; every later call is a no-op.
func (i *Instance) Destroy() {
	if i == nil || i.destroyed {
		return
	}
	i.destroyed = true
	i.active = false
	i.onCooldown = false
	i.phase = PhaseIdle
	i.owner = nil
}

// Rearm resets a consumed one-time instance that still represents other
// copies of its stack. Cooldown keeps running.
func (i *Instance) Rearm() {
	if !i.IsValid() {
		return
	}
	i.active = false
}

// floorEpsilon absorbs rounding left by repeated fractional reductions.
const floorEpsilon = 1e-9

// SetCooldownMultiplier stores a new cooldown scale clamped to
// [MinCooldownMultiplier, current]; it never increases. Values within
// floorEpsilon of the floor snap onto it.
// Returns the previous value.
func (i *Instance) SetCooldownMultiplier(v float64) float64 {
	prev := i.cooldownMultiplier
	floor := i.def.MinCooldownMultiplier
	if v-floor < floorEpsilon {
		v = floor
	}
	i.cooldownMultiplier = min(prev, v)
	return prev
}

// AddDamageMultiplier grows the damage scale by pct. Negative values are ignored.
func (i *Instance) AddDamageMultiplier(pct float64) {
	if pct > 0 {
		i.damageMultiplier += pct
	}
}

// AddSizeMultiplier grows the size scale by pct. Negative values are ignored.
func (i *Instance) AddSizeMultiplier(pct float64) {
	if pct > 0 {
		i.sizeMultiplier += pct
	}
}

func (i *Instance) startCooldown(now time.Time) {
	i.onCooldown = true
	i.cooldownEndTime = now.Add(i.ModifiedCooldown())
}

func (i *Instance) expire() {
	i.active = false
	i.emit(EventDeactivated)
	i.emit(EventExpired)
	i.stat("completed")
	i.hooks.OnDeactivated(i)
	i.hooks.OnExpired(i)
}

func (i *Instance) consume() {
	if i.owner != nil {
		i.owner.Release(i)
		return
	}
	i.Destroy()
}

func (i *Instance) emit(kind EventKind) {
	i.events.Emit(Event{Kind: kind, Instance: i, SkillID: i.def.ID})
}

func (i *Instance) stat(what string) {
	i.events.Emit(Event{Kind: EventStat, Instance: i, SkillID: i.def.ID, Context: i.def.ID + "." + what})
}
