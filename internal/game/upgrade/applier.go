package upgrade

import (
	"log/slog"

	"github.com/udisondev/skillcore/internal/game/skill"
)

// Applier mutates instance multipliers from upgrade records.
//
// The max-cooldown-reached and max-passive-reached signals are one-shot per
// skill id for the lifetime of the Applier (one session): the first crossing
// fires, whether seen live or during ReplayAll, and later crossings by
// re-acquired instances of the same skill stay silent.
type Applier struct {
	events        *skill.EventQueue
	cooldownMaxed map[string]bool
	passiveMaxed  map[string]bool
}

// NewApplier creates an Applier that signals through events.
func NewApplier(events *skill.EventQueue) *Applier {
	return &Applier{
		events:        events,
		cooldownMaxed: make(map[string]bool),
		passiveMaxed:  make(map[string]bool),
	}
}

// Apply dispatches rec to the matching ApplyX call.
// Records targeting another skill are ignored.
func (a *Applier) Apply(inst *skill.Instance, rec Record) {
	if !inst.IsValid() || !rec.AppliesTo(inst.SkillID()) {
		return
	}
	switch rec.Type {
	case CooldownReduction:
		a.ApplyCooldownReduction(inst, rec.Value)
	case DamageIncrease:
		a.ApplyDamageIncrease(inst, rec.Value)
	case SizeIncrease:
		a.ApplySizeIncrease(inst, rec.Value)
	default:
		slog.Debug("upgrade not applicable to skill",
			"type", rec.Type,
			"skill", inst.SkillID())
	}
}

// ApplyCooldownReduction lowers the cooldown multiplier by reduction,
// clamped at the definition floor. Crossing onto the floor signals
// EventMaxCooldownReached.
func (a *Applier) ApplyCooldownReduction(inst *skill.Instance, reduction float64) {
	if !inst.IsValid() {
		return
	}
	floor := inst.Definition().MinCooldownMultiplier
	prev := inst.SetCooldownMultiplier(inst.CooldownMultiplier() - reduction)

	// compare against the value before this call so a clamped multiplier
	// does not signal again
	if prev > floor && inst.CooldownMultiplier() <= floor {
		a.signalOnce(a.cooldownMaxed, skill.EventMaxCooldownReached, inst)
	}
}

// ApplyDamageIncrease adds pct to the damage multiplier.
func (a *Applier) ApplyDamageIncrease(inst *skill.Instance, pct float64) {
	if !inst.IsValid() {
		return
	}
	inst.AddDamageMultiplier(pct)
}

// ApplySizeIncrease adds pct to the size multiplier.
// Size has no natural ceiling; see AnnounceMaxPassive.
func (a *Applier) ApplySizeIncrease(inst *skill.Instance, pct float64) {
	if !inst.IsValid() {
		return
	}
	inst.AddSizeMultiplier(pct)
}

// AnnounceMaxPassive signals EventMaxPassiveReached for the instance's skill.
func (a *Applier) AnnounceMaxPassive(inst *skill.Instance) {
	if !inst.IsValid() {
		return
	}
	a.signalOnce(a.passiveMaxed, skill.EventMaxPassiveReached, inst)
}

// ReplayAll applies history in order to a freshly acquired instance so it
// ends with the same multipliers as instances that saw each grant live.
func (a *Applier) ReplayAll(inst *skill.Instance, history []Record) {
	for _, rec := range history {
		a.Apply(inst, rec)
	}
	if len(history) > 0 {
		slog.Debug("upgrade history replayed",
			"skill", inst.SkillID(),
			"records", len(history),
			"cooldownMultiplier", inst.CooldownMultiplier(),
			"damageMultiplier", inst.DamageMultiplier(),
			"sizeMultiplier", inst.SizeMultiplier())
	}
}

func (a *Applier) signalOnce(seen map[string]bool, kind skill.EventKind, inst *skill.Instance) {
	if seen[inst.SkillID()] {
		return
	}
	seen[inst.SkillID()] = true
	a.events.Emit(skill.Event{Kind: kind, Instance: inst, SkillID: inst.SkillID()})
	slog.Info("skill upgrade maxed", "skill", inst.SkillID(), "signal", kind)
}
