package skill

import (
	"log/slog"
	"time"
)

// Phase is the internal state of a primed skill.
//
//	Idle -> Primed        Activate
//	Primed -> Firing      Fire (external edge-triggered signal)
//	Firing -> CoolingDown duration elapsed; the cooldown starts here
//	CoolingDown -> Primed cooldown elapsed, re-armed without a new Activate
//
// Instances of other kinds stay in PhaseIdle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhasePrimed
	PhaseFiring
	PhaseCoolingDown
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePrimed:
		return "primed"
	case PhaseFiring:
		return "firing"
	case PhaseCoolingDown:
		return "cooling_down"
	default:
		return "unknown"
	}
}

// Phase returns the primed state machine phase.
func (i *Instance) Phase() Phase { return i.phase }

func (i *Instance) primedCanActivate() bool {
	switch i.phase {
	case PhaseIdle:
		return true
	case PhaseCoolingDown:
		return !i.onCooldown
	default:
		return false
	}
}

// prime arms the skill. No cooldown is started.
func (i *Instance) prime() {
	switch i.phase {
	case PhaseIdle:
	case PhaseCoolingDown:
		if i.onCooldown {
			return
		}
	default:
		return
	}

	i.phase = PhasePrimed
	i.emit(EventActivated)
	i.stat("activated")
	i.hooks.OnActivated(i)

	slog.Debug("skill primed", "skill", i.def.ID, "objectID", i.objectID)
}

func (i *Instance) primedFire(now time.Time) bool {
	if i.phase != PhasePrimed {
		return false
	}
	i.phase = PhaseFiring
	i.active = true
	i.activationTime = now
	i.emit(EventFired)
	i.stat("fired")

	slog.Debug("skill firing",
		"skill", i.def.ID,
		"objectID", i.objectID,
		"duration", i.ModifiedDuration())
	return true
}

func (i *Instance) primedTick(now time.Time) {
	if i.onCooldown && !now.Before(i.cooldownEndTime) {
		i.onCooldown = false
		if i.phase == PhaseCoolingDown {
			i.rearm()
		}
	}

	if i.phase == PhaseFiring && !now.Before(i.activationTime.Add(i.ModifiedDuration())) {
		i.phase = PhaseCoolingDown
		i.expire()
		i.beginCooldown(now)
	}
}

// primedDeactivate disarms a primed skill or cuts firing short.
func (i *Instance) primedDeactivate(now time.Time) bool {
	switch i.phase {
	case PhasePrimed:
		i.phase = PhaseIdle
		i.emit(EventDeactivated)
		i.hooks.OnDeactivated(i)
		return true
	case PhaseFiring:
		i.phase = PhaseCoolingDown
		i.active = false
		i.emit(EventDeactivated)
		i.stat("completed")
		i.hooks.OnDeactivated(i)
		i.beginCooldown(now)
		return true
	default:
		return false
	}
}

// beginCooldown starts the post-firing cooldown, or re-arms at once when
// the skill has none.
func (i *Instance) beginCooldown(now time.Time) {
	if !i.IsValid() || i.phase != PhaseCoolingDown {
		return
	}
	if !i.def.HasCooldown() {
		i.rearm()
		return
	}
	i.startCooldown(now)
}

func (i *Instance) rearm() {
	i.phase = PhasePrimed
	i.emit(EventRearmed)
}
