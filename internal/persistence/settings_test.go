package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination-engine/internal/models"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	s, fixed, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, fixed)
	assert.Equal(t, models.DefaultSettings(), s)
}

func TestLoadSettingsOverlaysAndRepairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domination.yaml")
	yml := `
player_name: Ada
mode: 1v1
difficulty: 7
topology: hex
tunables:
  bot_attack_fraction: 0.95
  grid_growth: 10
  policy:
    player_condition: "Attack > Troops + Shield + 5"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	s, fixed, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.PlayerName)
	assert.Equal(t, models.ModeDuel, s.Mode)
	assert.Equal(t, 2, s.Difficulty)
	assert.Equal(t, models.TopologyHex, s.Topology)
	assert.Equal(t, 10, s.Tunables.GridGrowth)
	assert.Equal(t, 0.6, s.Tunables.BotAttackFraction)
	assert.Equal(t, 50.0, s.Tunables.MaxTroopsPerTile, "unset fields keep defaults")
	assert.Equal(t, "Attack > Troops + Shield + 5", s.Tunables.Policy.PlayerCondition)
	assert.Equal(t, models.DefaultNeutralCondition, s.Tunables.Policy.NeutralCondition)
	assert.ElementsMatch(t, []string{"difficulty", "bot_attack_fraction"}, fixed)
}

func TestLoadSettingsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unterminated"), 0644))
	s, _, err := LoadSettings(path)
	assert.Error(t, err)
	assert.Equal(t, models.DefaultSettings(), s)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "domination.yaml")
	want := models.DefaultSettings()
	want.PlayerName = "Grace"
	want.Seed = 99
	require.NoError(t, SaveSettings(path, want))

	got, fixed, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Empty(t, fixed)
	assert.Equal(t, want, got)
}

func TestRememberTroopAmount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domination.yaml")
	require.NoError(t, os.WriteFile(path, []byte("player_name: Ada\nmode: bots\n"), 0644))

	require.NoError(t, RememberTroopAmount(path, 25))
	s, fixed, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Empty(t, fixed)
	assert.Equal(t, 25, s.TroopAmount)
	assert.Equal(t, "Ada", s.PlayerName)
	assert.Equal(t, models.ModeBots, s.Mode)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, RememberTroopAmount(path, 25))
	again, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime(), "unchanged amount is not rewritten")

	missing := filepath.Join(t.TempDir(), "new", "domination.yaml")
	require.NoError(t, RememberTroopAmount(missing, 10))
	s, _, err = LoadSettings(missing)
	require.NoError(t, err)
	assert.Equal(t, 10, s.TroopAmount)
}
