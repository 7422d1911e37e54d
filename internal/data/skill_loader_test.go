package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
skills:
  - id: laser
    name: Eye Laser
    kind: primed
    duration: 3s
    cooldown: 8s
    min_cooldown_multiplier: 0.4
    max_upgraded_repeat_rate: 2s
    damage: 12
  - id: shield
    kind: toggle
    cooldown: 4s
    min_cooldown_multiplier: 0.5
  - id: nova
    kind: one_time
    cooldown: 10s
    min_cooldown_multiplier: 1
    manual: true
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"laser", "shield", "nova"}, c.IDs())

	laser, err := c.Get("laser")
	require.NoError(t, err)
	assert.Equal(t, "Eye Laser", laser.Name)
	assert.Equal(t, KindPrimed, laser.Kind)
	assert.Equal(t, 3*time.Second, laser.BaseDuration)
	assert.Equal(t, 8*time.Second, laser.BaseCooldown)
	assert.Equal(t, 2*time.Second, laser.MaxUpgradedRepeatRate)
	assert.InDelta(t, 0.4, laser.MinCooldownMultiplier, 1e-9)
	assert.InDelta(t, 1.0, laser.Size, 1e-9, "size defaults to 1")

	shield, err := c.Get("shield")
	require.NoError(t, err)
	assert.Equal(t, "shield", shield.Name, "name defaults to id")
	assert.False(t, shield.ExpiresByDuration(), "toggle without duration never expires")

	nova, err := c.Get("nova")
	require.NoError(t, err)
	assert.True(t, nova.Manual)
}

func TestParseCatalog_InvalidEntriesSkipped(t *testing.T) {
	raw := `
skills:
  - id: ok
    kind: duration
    duration: 1s
    min_cooldown_multiplier: 0.5
  - id: zero-floor
    kind: duration
    duration: 1s
    min_cooldown_multiplier: 0
  - id: weird
    kind: sideways
    min_cooldown_multiplier: 0.5
  - id: ok
    kind: toggle
    min_cooldown_multiplier: 0.5
`
	c, err := ParseCatalog([]byte(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	require.NotNil(t, c)
	assert.Equal(t, []string{"ok"}, c.IDs())

	d, err := c.Get("ok")
	require.NoError(t, err)
	assert.Equal(t, KindDuration, d.Kind, "first definition wins")
}

func TestParseCatalog_Syntax(t *testing.T) {
	c, err := ParseCatalog([]byte("skills: [ {id: "))
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog_GetUnknown(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownSkill)
}
