package testutil

import (
	"testing"
	"time"

	"github.com/udisondev/skillcore/internal/data"
)

// Epoch is the fixed start time used by simulation tests.
var Epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Fixture skill definitions shared by the simulation tests.
var fixtureDefinitions = []data.Definition{
	{
		ID:                    "burst",
		Kind:                  data.KindDuration,
		BaseDuration:          2 * time.Second,
		BaseCooldown:          5 * time.Second,
		MinCooldownMultiplier: 0.5,
		Damage:                10,
	},
	{
		ID:                    "laser",
		Kind:                  data.KindPrimed,
		BaseDuration:          3 * time.Second,
		BaseCooldown:          8 * time.Second,
		MinCooldownMultiplier: 0.4,
		MaxUpgradedRepeatRate: 2 * time.Second,
		Damage:                12,
	},
	{
		ID:                    "shield",
		Kind:                  data.KindToggle,
		BaseCooldown:          4 * time.Second,
		MinCooldownMultiplier: 0.5,
		Manual:                true,
	},
	{
		ID:                    "nova",
		Kind:                  data.KindOneTime,
		BaseCooldown:          10 * time.Second,
		MinCooldownMultiplier: 0.5,
		Damage:                50,
		Manual:                true,
	},
	{
		ID:                    "aura",
		Kind:                  data.KindPermanent,
		MinCooldownMultiplier: 1,
		Manual:                true,
	},
}

// Catalog returns a catalog of the fixture definitions:
// burst (duration), laser (primed), shield (toggle, manual),
// nova (one time, manual), aura (permanent, manual).
func Catalog(tb testing.TB) *data.Catalog {
	tb.Helper()
	defs := make([]*data.Definition, 0, len(fixtureDefinitions))
	for _, d := range fixtureDefinitions {
		def, err := data.NewDefinition(d)
		if err != nil {
			tb.Fatalf("fixture definition %s: %v", d.ID, err)
		}
		defs = append(defs, def)
	}
	c, err := data.NewCatalog(defs...)
	if err != nil {
		tb.Fatalf("fixture catalog: %v", err)
	}
	return c
}
