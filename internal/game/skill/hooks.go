package skill

import (
	"fmt"
	"log/slog"
)

// Hooks are the per-skill reactions to lifecycle transitions.
// Rendering, audio and gameplay effects plug in here.
type Hooks interface {
	OnActivated(inst *Instance)
	OnDeactivated(inst *Instance)
	OnExpired(inst *Instance)
}

// NopHooks ignores every transition.
type NopHooks struct{}

func (NopHooks) OnActivated(*Instance)   {}
func (NopHooks) OnDeactivated(*Instance) {}
func (NopHooks) OnExpired(*Instance)     {}

// HookFuncs adapts plain functions to Hooks. nil fields are skipped.
type HookFuncs struct {
	Activated   func(inst *Instance)
	Deactivated func(inst *Instance)
	Expired     func(inst *Instance)
}

func (h HookFuncs) OnActivated(inst *Instance) {
	if h.Activated != nil {
		h.Activated(inst)
	}
}

func (h HookFuncs) OnDeactivated(inst *Instance) {
	if h.Deactivated != nil {
		h.Deactivated(inst)
	}
}

func (h HookFuncs) OnExpired(inst *Instance) {
	if h.Expired != nil {
		h.Expired(inst)
	}
}

// hooksRegistry maps the definition's effect name to a Hooks factory.
var hooksRegistry = map[string]func() Hooks{}

// RegisterHooks registers a Hooks factory by name.
func RegisterHooks(name string, factory func() Hooks) {
	hooksRegistry[name] = factory
}

// CreateHooks creates hooks by name. An empty name yields NopHooks.
func CreateHooks(name string) (Hooks, error) {
	if name == "" {
		return NopHooks{}, nil
	}
	factory, ok := hooksRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown skill effect: %s", name)
	}
	return factory(), nil
}

func init() {
	RegisterHooks("log", func() Hooks { return logHooks{} })
}

// logHooks reports transitions through slog.
type logHooks struct{}

func (logHooks) OnActivated(inst *Instance) {
	slog.Info("skill effect started", "skill", inst.SkillID(), "objectID", inst.ObjectID())
}

func (logHooks) OnDeactivated(inst *Instance) {
	slog.Info("skill effect stopped", "skill", inst.SkillID(), "objectID", inst.ObjectID())
}

func (logHooks) OnExpired(inst *Instance) {
	slog.Info("skill effect expired", "skill", inst.SkillID(), "objectID", inst.ObjectID())
}
