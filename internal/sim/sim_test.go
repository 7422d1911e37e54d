package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skillcore/internal/clock"
	"github.com/udisondev/skillcore/internal/config"
	"github.com/udisondev/skillcore/internal/game/skill"
	"github.com/udisondev/skillcore/internal/game/upgrade"
	"github.com/udisondev/skillcore/internal/testutil"
)

func newTestSimulation(t *testing.T, tweak func(*config.Simulation)) (*Simulation, *clock.Manual) {
	t.Helper()
	cfg := config.DefaultSimulation()
	if tweak != nil {
		tweak(&cfg)
	}
	clk := clock.NewManual(testutil.Epoch)
	return New(cfg, testutil.Catalog(t), clk, nil), clk
}

// record subscribes to kinds and returns the delivered events.
func record(s *Simulation, kinds ...skill.EventKind) *[]skill.Event {
	var got []skill.Event
	for _, k := range kinds {
		s.Events().Subscribe(k, func(e skill.Event) { got = append(got, e) })
	}
	return &got
}

func TestSimulation_DurationSkillCycle(t *testing.T) {
	s, clk := newTestSimulation(t, nil)

	require.True(t, s.Pickup("burst"))
	burst := s.Inventory().Get("burst")
	require.NotNil(t, burst)

	s.Step()
	assert.True(t, burst.IsActive(), "auto-activated on first poll")
	assert.True(t, burst.IsOnCooldown())
	assert.Equal(t, int64(1), s.Stats().Count("burst.activated"))

	clk.Advance(2 * time.Second)
	s.Step()
	assert.False(t, burst.IsActive(), "expired after its duration")
	assert.True(t, burst.IsOnCooldown(), "cooldown runs from activation")
	assert.Equal(t, int64(1), s.Stats().Count("burst.completed"))

	clk.Advance(3 * time.Second)
	s.Step()
	assert.True(t, burst.IsActive(), "re-activated once the cooldown ended")
	assert.Equal(t, int64(2), s.Stats().Count("burst.activated"))
	assert.Equal(t, uint64(3), s.Steps())
}

func TestSimulation_PrimedSkillCycle(t *testing.T) {
	s, clk := newTestSimulation(t, nil)
	require.True(t, s.Pickup("laser"))
	laser := s.Inventory().Get("laser")

	assert.Equal(t, 0, s.Trigger(), "not primed yet")

	s.Step()
	assert.Equal(t, skill.PhasePrimed, laser.Phase())
	assert.False(t, laser.IsActive())

	assert.Equal(t, 1, s.Trigger())
	assert.Equal(t, skill.PhaseFiring, laser.Phase())
	assert.Equal(t, 0, s.Trigger(), "fire is edge triggered")

	clk.Advance(3 * time.Second)
	s.Step()
	assert.Equal(t, skill.PhaseCoolingDown, laser.Phase())
	assert.True(t, laser.IsOnCooldown())

	clk.Advance(7 * time.Second)
	s.Step()
	assert.Equal(t, skill.PhaseCoolingDown, laser.Phase())

	clk.Advance(time.Second)
	s.Step()
	assert.Equal(t, skill.PhasePrimed, laser.Phase())
	assert.Equal(t, int64(1), s.Stats().Count("laser.fired"))
}

func TestSimulation_PickupRules(t *testing.T) {
	s, _ := newTestSimulation(t, func(c *config.Simulation) { c.MaxSlots = 2 })
	filled := record(s, skill.EventAllSlotsFilled)

	assert.False(t, s.Pickup("missing"))

	require.True(t, s.Pickup("burst"))
	require.True(t, s.Pickup("burst"))
	assert.Equal(t, 2, s.Inventory().Count("burst"), "second copy stacks")
	assert.Equal(t, 1, s.Registry().Len())

	require.True(t, s.Pickup("laser"))
	assert.False(t, s.Pickup("shield"), "no free slot")
	assert.False(t, s.Inventory().Has("shield"))

	s.Step()
	assert.Len(t, *filled, 1)
	assert.Len(t, s.Scheduler().Tracked(), 2)
}

func TestSimulation_DropFreesSlot(t *testing.T) {
	s, _ := newTestSimulation(t, func(c *config.Simulation) { c.MaxSlots = 1 })
	filled := record(s, skill.EventAllSlotsFilled)

	require.True(t, s.Pickup("burst"))
	burst := s.Inventory().Get("burst")
	s.Step()

	require.True(t, s.Drop("burst"))
	assert.False(t, burst.IsValid())
	assert.False(t, s.Drop("burst"))

	require.True(t, s.Pickup("laser"))
	s.Step()
	assert.Len(t, *filled, 2, "fires on every transition into full")
	require.Len(t, s.Scheduler().Tracked(), 1)
	assert.Equal(t, "laser", s.Scheduler().Tracked()[0].SkillID())
}

func TestSimulation_OneTimeConsumesCopies(t *testing.T) {
	s, clk := newTestSimulation(t, nil)
	require.True(t, s.Pickup("nova"))
	require.True(t, s.Pickup("nova"))
	nova := s.Inventory().Get("nova")

	s.Step()
	assert.False(t, nova.IsActive(), "manual skills are not auto-activated")

	require.True(t, s.Activate("nova"))
	require.True(t, s.ToggleOff("nova"))
	assert.Equal(t, 1, s.Inventory().Count("nova"))
	assert.True(t, nova.IsValid(), "remaining copy keeps the instance")
	assert.True(t, nova.IsOnCooldown())
	assert.False(t, s.Activate("nova"))

	clk.Advance(10 * time.Second)
	s.Step()
	require.True(t, s.Activate("nova"))
	require.True(t, s.ToggleOff("nova"))
	assert.False(t, s.Inventory().Has("nova"))
	assert.False(t, nova.IsValid())

	s.Step()
	assert.Equal(t, int64(2), s.Stats().Count("nova.completed"))
}

func TestSimulation_UpgradesReplayOnPickup(t *testing.T) {
	s, _ := newTestSimulation(t, nil)
	maxed := record(s, skill.EventMaxCooldownReached)

	require.True(t, s.Pickup("burst"))
	s.GrantUpgrade(upgrade.Record{Type: upgrade.CooldownReduction, Value: 0.3})
	s.GrantUpgrade(upgrade.Record{Type: upgrade.DamageIncrease, Value: 0.5, SkillID: "laser"})

	burst := s.Inventory().Get("burst")
	assert.InDelta(t, 0.7, burst.CooldownMultiplier(), 1e-9)
	assert.InDelta(t, 1.0, burst.DamageMultiplier(), 1e-9, "targeted at another skill")

	require.True(t, s.Pickup("laser"))
	laser := s.Inventory().Get("laser")
	assert.InDelta(t, 0.7, laser.CooldownMultiplier(), 1e-9)
	assert.InDelta(t, 1.5, laser.DamageMultiplier(), 1e-9)

	s.GrantUpgrade(upgrade.Record{Type: upgrade.CooldownReduction, Value: 0.5})
	s.GrantUpgrade(upgrade.Record{Type: upgrade.CooldownReduction, Value: 0.5})
	assert.InDelta(t, 0.5, burst.CooldownMultiplier(), 1e-9)
	assert.InDelta(t, 0.4, laser.CooldownMultiplier(), 1e-9)
	assert.Equal(t, 2*time.Second, laser.ModifiedCooldown())

	s.Step()
	require.Len(t, *maxed, 2, "one signal per skill")
	assert.ElementsMatch(t, []string{"burst", "laser"}, []string{(*maxed)[0].SkillID, (*maxed)[1].SkillID})
	assert.Len(t, s.History().OrderedHistory(), 4)
}

func TestSimulation_MaxPassiveThreshold(t *testing.T) {
	s, _ := newTestSimulation(t, func(c *config.Simulation) { c.MaxSizeMultiplier = 2 })
	passive := record(s, skill.EventMaxPassiveReached)

	require.True(t, s.Pickup("burst"))
	s.GrantUpgrade(upgrade.Record{Type: upgrade.SizeIncrease, Value: 0.5})
	s.Step()
	assert.Empty(t, *passive)

	s.GrantUpgrade(upgrade.Record{Type: upgrade.SizeIncrease, Value: 0.5})
	s.GrantUpgrade(upgrade.Record{Type: upgrade.SizeIncrease, Value: 0.5})
	s.Step()
	require.Len(t, *passive, 1)
	assert.Equal(t, "burst", (*passive)[0].SkillID)

	// replay crosses the threshold for a new skill
	require.True(t, s.Pickup("laser"))
	s.Step()
	assert.Len(t, *passive, 2)
}

func TestSimulation_ToggleOffAndClear(t *testing.T) {
	s, _ := newTestSimulation(t, nil)
	require.True(t, s.Pickup("shield"))
	require.True(t, s.Pickup("aura"))
	assert.False(t, s.ToggleOff("missing"))

	require.True(t, s.Activate("shield"))
	require.True(t, s.Activate("aura"))
	shield := s.Inventory().Get("shield")
	aura := s.Inventory().Get("aura")

	require.True(t, s.ToggleOff("shield"))
	assert.False(t, shield.IsActive())
	assert.True(t, shield.IsOnCooldown())

	s.Step()
	s.Clear()
	assert.False(t, shield.IsValid())
	assert.False(t, aura.IsValid())
	assert.Equal(t, 0, s.Registry().Len())

	s.Step()
	assert.Empty(t, s.Scheduler().Tracked())
}
