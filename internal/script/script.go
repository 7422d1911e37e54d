// Package script plays a timed list of player actions into a simulation.
package script

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/skillcore/internal/game/upgrade"
	"github.com/udisondev/skillcore/internal/sim"
)

// Action names a player action.
type Action string

const (
	ActionPickup    Action = "pickup"
	ActionDrop      Action = "drop"
	ActionActivate  Action = "activate"
	ActionTrigger   Action = "trigger"
	ActionToggleOff Action = "toggle_off"
	ActionUpgrade   Action = "upgrade"
	ActionClear     Action = "clear"
)

// ErrInvalidStep is returned for malformed script steps.
var ErrInvalidStep = errors.New("invalid script step")

type upgradeEntry struct {
	Type  string  `yaml:"type"`
	Value float64 `yaml:"value"`
}

type stepEntry struct {
	At      time.Duration `yaml:"at"`
	Action  string        `yaml:"action"`
	Skill   string        `yaml:"skill"`
	Upgrade *upgradeEntry `yaml:"upgrade"`
}

type scriptFile struct {
	Steps []stepEntry `yaml:"steps"`
}

// Step is one action at an offset from the start of playback.
type Step struct {
	At      time.Duration
	Action  Action
	Skill   string
	Upgrade upgrade.Record // ActionUpgrade only
}

// Script is an ordered list of steps.
type Script struct {
	Steps []Step
}

// Load reads a YAML script file.
func Load(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML script data. Steps are ordered by offset; steps with
// the same offset keep file order.
func Parse(raw []byte) (*Script, error) {
	var f scriptFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	s := &Script{Steps: make([]Step, 0, len(f.Steps))}
	for idx, e := range f.Steps {
		st, err := e.toStep()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", idx, err)
		}
		s.Steps = append(s.Steps, st)
	}
	slices.SortStableFunc(s.Steps, func(a, b Step) int {
		return cmp.Compare(a.At, b.At)
	})
	return s, nil
}

func (e stepEntry) toStep() (Step, error) {
	if e.At < 0 {
		return Step{}, fmt.Errorf("%w: negative offset %s", ErrInvalidStep, e.At)
	}
	st := Step{
		At:     e.At,
		Action: Action(strings.ToLower(strings.TrimSpace(e.Action))),
		Skill:  e.Skill,
	}

	switch st.Action {
	case ActionPickup, ActionDrop, ActionActivate, ActionToggleOff:
		if st.Skill == "" {
			return Step{}, fmt.Errorf("%w: %s needs a skill", ErrInvalidStep, st.Action)
		}
	case ActionTrigger, ActionClear:
	case ActionUpgrade:
		if e.Upgrade == nil {
			return Step{}, fmt.Errorf("%w: upgrade needs an upgrade entry", ErrInvalidStep)
		}
		typ, err := upgrade.ParseType(e.Upgrade.Type)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %w", ErrInvalidStep, err)
		}
		st.Upgrade = upgrade.Record{Type: typ, Value: e.Upgrade.Value, SkillID: e.Skill}
	default:
		return Step{}, fmt.Errorf("%w: unknown action %q", ErrInvalidStep, e.Action)
	}
	return st, nil
}

// Apply performs the step on s. Must run on the simulation goroutine.
func (st Step) Apply(s *sim.Simulation) {
	var ok bool
	switch st.Action {
	case ActionPickup:
		ok = s.Pickup(st.Skill)
	case ActionDrop:
		ok = s.Drop(st.Skill)
	case ActionActivate:
		ok = s.Activate(st.Skill)
	case ActionToggleOff:
		ok = s.ToggleOff(st.Skill)
	case ActionTrigger:
		ok = s.Trigger() > 0
	case ActionUpgrade:
		s.GrantUpgrade(st.Upgrade)
		ok = true
	case ActionClear:
		s.Clear()
		ok = true
	}
	slog.Debug("script step applied", "at", st.At, "action", st.Action, "skill", st.Skill, "ok", ok)
}
