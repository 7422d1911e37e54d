package data

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind defines how a skill's activation behaves over time.
type Kind int8

const (
	KindOneTime   Kind = iota // Fires once, consumed on deactivation
	KindDuration              // Timed effect, may overlap itself
	KindToggle                // On until turned off or expired
	KindPermanent             // Stays on once activated
	KindPrimed                // Armed first, fires on external signal, cooldown starts after firing
)

var kindNames = [...]string{
	KindOneTime:   "one_time",
	KindDuration:  "duration",
	KindToggle:    "toggle",
	KindPermanent: "permanent",
	KindPrimed:    "primed",
}

// String returns the catalog name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int8(k))
	}
	return kindNames[k]
}

// ParseKind converts a catalog name to Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one_time", "onetime":
		return KindOneTime, nil
	case "duration":
		return KindDuration, nil
	case "toggle":
		return KindToggle, nil
	case "permanent":
		return KindPermanent, nil
	case "primed":
		return KindPrimed, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, s)
	}
}

var (
	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = errors.New("invalid skill definition")
	// ErrUnknownSkill is returned when a skill id is not in the catalog.
	ErrUnknownSkill = errors.New("unknown skill")
)

// Definition is the immutable configuration of one skill type.
// Shared by every instance of the skill; never modified after NewDefinition.
type Definition struct {
	ID          string
	Name        string
	Description string
	Icon        string

	Kind         Kind
	BaseDuration time.Duration
	BaseCooldown time.Duration

	// MinCooldownMultiplier is the floor cooldown upgrades can reach, in (0,1].
	MinCooldownMultiplier float64
	// MaxUpgradedRepeatRate replaces the scaled cooldown once the floor is reached (0 = unused).
	MaxUpgradedRepeatRate time.Duration

	Damage float64 // damage baseline
	Size   float64 // size baseline

	Effect string // hooks registered under this name, empty = none
	Manual bool   // never auto-activated by the scheduler
}

// NewDefinition validates def and returns an immutable copy.
func NewDefinition(def Definition) (*Definition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	d := def
	if d.Size == 0 {
		d.Size = 1
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	return &d, nil
}

// Validate checks the definition invariants.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDefinition)
	}
	if d.Kind < KindOneTime || d.Kind > KindPrimed {
		return fmt.Errorf("%w: %s: unknown kind %d", ErrInvalidDefinition, d.ID, d.Kind)
	}
	if !(d.MinCooldownMultiplier > 0 && d.MinCooldownMultiplier <= 1) {
		return fmt.Errorf("%w: %s: min cooldown multiplier %v outside (0,1]",
			ErrInvalidDefinition, d.ID, d.MinCooldownMultiplier)
	}
	if d.BaseDuration < 0 || d.BaseCooldown < 0 {
		return fmt.Errorf("%w: %s: negative duration or cooldown", ErrInvalidDefinition, d.ID)
	}
	if d.MaxUpgradedRepeatRate < 0 {
		return fmt.Errorf("%w: %s: negative max upgraded repeat rate", ErrInvalidDefinition, d.ID)
	}
	if d.Damage < 0 || d.Size < 0 {
		return fmt.Errorf("%w: %s: negative damage or size", ErrInvalidDefinition, d.ID)
	}
	if (d.Kind == KindDuration || d.Kind == KindPrimed) && d.BaseDuration == 0 {
		return fmt.Errorf("%w: %s: %s skill needs a duration", ErrInvalidDefinition, d.ID, d.Kind)
	}
	return nil
}

// HasCooldown returns true if activation starts a cooldown.
func (d *Definition) HasCooldown() bool {
	return d.BaseCooldown > 0
}

// ExpiresByDuration returns true if an active instance is switched off by the duration timer.
// A toggle with zero duration stays on until explicitly deactivated.
func (d *Definition) ExpiresByDuration() bool {
	switch d.Kind {
	case KindDuration:
		return true
	case KindToggle:
		return d.BaseDuration > 0
	default:
		return false
	}
}
