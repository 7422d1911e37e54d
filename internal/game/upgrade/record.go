// Package upgrade applies stacking upgrades to skill instances and replays
// a session's upgrade history onto instances acquired late.
package upgrade

import (
	"fmt"
	"strings"
)

// Type identifies what an upgrade changes.
type Type int8

const (
	CooldownReduction Type = iota // lowers the cooldown multiplier
	DamageIncrease                // raises the damage multiplier
	SizeIncrease                  // raises the size multiplier
	RangeIncrease                 // not applicable to active skills, ignored
)

func (t Type) String() string {
	switch t {
	case CooldownReduction:
		return "cooldown_reduction"
	case DamageIncrease:
		return "damage_increase"
	case SizeIncrease:
		return "size_increase"
	case RangeIncrease:
		return "range_increase"
	default:
		return fmt.Sprintf("type(%d)", int8(t))
	}
}

// ParseType converts a name to Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cooldown_reduction", "cooldown":
		return CooldownReduction, nil
	case "damage_increase", "damage":
		return DamageIncrease, nil
	case "size_increase", "size":
		return SizeIncrease, nil
	case "range_increase", "range":
		return RangeIncrease, nil
	default:
		return 0, fmt.Errorf("unknown upgrade type %q", s)
	}
}

// Record is one granted upgrade.
// An empty SkillID targets every skill.
type Record struct {
	Type    Type
	Value   float64
	SkillID string
}

// AppliesTo reports whether the record targets skillID.
func (r Record) AppliesTo(skillID string) bool {
	return r.SkillID == "" || r.SkillID == skillID
}
