package models

import (
	"math"
	"strings"
)

// Mode selects the rule set of a session.
type Mode string

const (
	ModeDomination Mode = "domination" // Endless: waves, map growth, share-based victory
	ModeBots       Mode = "bots"       // Eliminate every bot tile
	ModeDuel       Mode = "1v1"        // One elite bot, share thresholds both ways
)

// ParseMode maps a settings string to a Mode. Unknown values report ok=false.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDomination:
		return ModeDomination, true
	case ModeBots:
		return ModeBots, true
	case ModeDuel:
		return ModeDuel, true
	}
	return ModeDomination, false
}

// DisplayName is the label written to leaderboard entries.
func (m Mode) DisplayName() string {
	switch m {
	case ModeBots:
		return "Bots Battle"
	case ModeDuel:
		return "1v1 Duel"
	default:
		return "Domination"
	}
}

// DifficultyPreset bundles the starting conditions and AI tuning for one tier.
type DifficultyPreset struct {
	Level           int     `json:"level" yaml:"level"`
	Name            string  `json:"name" yaml:"name"`
	StartTroops     int     `json:"start_troops" yaml:"start_troops"`
	StartTiles      int     `json:"start_tiles" yaml:"start_tiles"`
	TroopRate       float64 `json:"troop_rate" yaml:"troop_rate"`         // Troops per second per tile
	BotSpawnRate    float64 `json:"bot_spawn_rate" yaml:"bot_spawn_rate"` // Seconds between periodic spawns
	BotStartTroops  int     `json:"bot_start_troops" yaml:"bot_start_troops"`
	BotShield       int     `json:"bot_shield" yaml:"bot_shield"`
	BotAggression   float64 `json:"bot_aggression" yaml:"bot_aggression"`
	ScoreMultiplier float64 `json:"score_multiplier" yaml:"score_multiplier"`
}

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

var presets = [...]DifficultyPreset{
	{Level: 1, Name: "Easy", StartTroops: 50, StartTiles: 5, TroopRate: 0.8, BotSpawnRate: 60, BotStartTroops: 15, BotShield: 0, BotAggression: 0.3, ScoreMultiplier: 1.0},
	{Level: 2, Name: "Normal", StartTroops: 40, StartTiles: 4, TroopRate: 0.6, BotSpawnRate: 45, BotStartTroops: 25, BotShield: 2, BotAggression: 0.5, ScoreMultiplier: 1.5},
	{Level: 3, Name: "Hard", StartTroops: 30, StartTiles: 3, TroopRate: 0.4, BotSpawnRate: 30, BotStartTroops: 35, BotShield: 4, BotAggression: 0.7, ScoreMultiplier: 2.0},
	{Level: 4, Name: "Expert", StartTroops: 20, StartTiles: 2, TroopRate: 0.3, BotSpawnRate: 20, BotStartTroops: 45, BotShield: 6, BotAggression: 0.9, ScoreMultiplier: 2.5},
	{Level: 5, Name: "Insane", StartTroops: 10, StartTiles: 1, TroopRate: 0.2, BotSpawnRate: 10, BotStartTroops: 55, BotShield: 8, BotAggression: 1.0, ScoreMultiplier: 3.0},
}

// Preset returns the preset for level, clamped into [MinDifficulty, MaxDifficulty].
// The table is read-only; callers get a copy.
func Preset(level int) DifficultyPreset {
	if level < MinDifficulty {
		level = MinDifficulty
	}
	if level > MaxDifficulty {
		level = MaxDifficulty
	}
	return presets[level-1]
}

// Topology names the adjacency policy of the grid.
type Topology string

const (
	TopologyOrthogonal Topology = "orthogonal"
	TopologyHex        Topology = "hex"
)

// BotPolicy holds the expr sources used by the bot AI to accept a target.
// See game.TargetEnv for the variables available to the expressions.
type BotPolicy struct {
	PlayerCondition  string `json:"player_condition" yaml:"player_condition"`
	NeutralCondition string `json:"neutral_condition" yaml:"neutral_condition"`
}

const (
	DefaultPlayerCondition  = "Attack > (Troops + Shield) * AggressionFactor"
	DefaultNeutralCondition = "Attack > Troops + Shield"
)

// Tunables are the economy and AI knobs of a session.
type Tunables struct {
	TroopGenerationRate        float64   `json:"troop_generation_rate" yaml:"troop_generation_rate"` // 0 uses the preset rate
	MaxTroopsPerTile           float64   `json:"max_troops_per_tile" yaml:"max_troops_per_tile"`
	BotGenerationFactor        float64   `json:"bot_generation_factor" yaml:"bot_generation_factor"`
	InitialGridSize            int       `json:"initial_grid_size" yaml:"initial_grid_size"`
	GridGrowth                 int       `json:"grid_growth" yaml:"grid_growth"`
	WaveDuration               float64   `json:"wave_duration" yaml:"wave_duration"`             // Seconds
	EscalationInterval         float64   `json:"escalation_interval" yaml:"escalation_interval"` // Seconds
	BotTickChance              float64   `json:"bot_tick_chance" yaml:"bot_tick_chance"`
	BotMinSourceTroops         int       `json:"bot_min_source_troops" yaml:"bot_min_source_troops"`
	BotAttackFraction          float64   `json:"bot_attack_fraction" yaml:"bot_attack_fraction"`
	BotAggressionFactor        float64   `json:"bot_aggression_factor" yaml:"bot_aggression_factor"`
	BotReinforceFraction       float64   `json:"bot_reinforce_fraction" yaml:"bot_reinforce_fraction"`
	DominationWinShare         float64   `json:"domination_win_share" yaml:"domination_win_share"`
	DuelWinShare               float64   `json:"duel_win_share" yaml:"duel_win_share"`
	RefreshShieldsOnEscalation bool      `json:"refresh_shields_on_escalation" yaml:"refresh_shields_on_escalation"`
	Policy                     BotPolicy `json:"policy" yaml:"policy"`
}

// Settings is everything an external collaborator supplies at session start.
type Settings struct {
	PlayerName     string   `json:"player_name" yaml:"player_name"`
	Mode           Mode     `json:"mode" yaml:"mode"`
	Difficulty     int      `json:"difficulty" yaml:"difficulty"`
	Seed           int64    `json:"seed" yaml:"seed"` // 0 seeds from the clock
	TickIntervalMS int      `json:"tick_interval_ms" yaml:"tick_interval_ms"`
	Topology       Topology `json:"topology" yaml:"topology"`
	TroopAmount    int      `json:"troop_amount" yaml:"troop_amount"` // Last troops-per-order used by the terminal client
	Tunables       Tunables `json:"tunables" yaml:"tunables"`
}

const (
	DefaultPlayerName  = "Commander"
	DefaultTroopAmount = 5
)

// DefaultTunables returns the documented defaults.
func DefaultTunables() Tunables {
	return Tunables{
		MaxTroopsPerTile:     50,
		BotGenerationFactor:  0.8,
		InitialGridSize:      8,
		GridGrowth:           25,
		WaveDuration:         300,
		EscalationInterval:   120,
		BotTickChance:        0.3,
		BotMinSourceTroops:   5,
		BotAttackFraction:    0.6,
		BotAggressionFactor:  1.1,
		BotReinforceFraction: 0.5,
		DominationWinShare:   0.70,
		DuelWinShare:         0.65,
		Policy: BotPolicy{
			PlayerCondition:  DefaultPlayerCondition,
			NeutralCondition: DefaultNeutralCondition,
		},
	}
}

// DefaultSettings returns a Normal-difficulty Domination session.
func DefaultSettings() Settings {
	return Settings{
		PlayerName:     DefaultPlayerName,
		Mode:           ModeDomination,
		Difficulty:     2,
		TickIntervalMS: 1000,
		Topology:       TopologyOrthogonal,
		TroopAmount:    DefaultTroopAmount,
		Tunables:       DefaultTunables(),
	}
}

// Normalize replaces every missing or invalid field with its default and
// returns the names of the fields it repaired.
func (s *Settings) Normalize() []string {
	d := DefaultSettings()
	var fixed []string
	fix := func(name string) { fixed = append(fixed, name) }

	s.PlayerName = strings.TrimSpace(s.PlayerName)
	if s.PlayerName == "" {
		s.PlayerName = d.PlayerName
		fix("player_name")
	}
	if m, ok := ParseMode(string(s.Mode)); ok {
		s.Mode = m
	} else {
		s.Mode = d.Mode
		fix("mode")
	}
	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		s.Difficulty = d.Difficulty
		fix("difficulty")
	}
	if s.TickIntervalMS < 50 || s.TickIntervalMS > 5000 {
		s.TickIntervalMS = d.TickIntervalMS
		fix("tick_interval_ms")
	}
	switch s.Topology {
	case TopologyOrthogonal, TopologyHex:
	default:
		s.Topology = d.Topology
		fix("topology")
	}
	if s.TroopAmount < 1 {
		s.TroopAmount = d.TroopAmount
		fix("troop_amount")
	}

	t, dt := &s.Tunables, d.Tunables
	if !finite(t.TroopGenerationRate) || t.TroopGenerationRate < 0 {
		t.TroopGenerationRate = 0
		fix("troop_generation_rate")
	}
	if !finite(t.MaxTroopsPerTile) || t.MaxTroopsPerTile <= 0 {
		t.MaxTroopsPerTile = dt.MaxTroopsPerTile
		fix("max_troops_per_tile")
	}
	if !finite(t.BotGenerationFactor) || t.BotGenerationFactor <= 0 || t.BotGenerationFactor > 1 {
		t.BotGenerationFactor = dt.BotGenerationFactor
		fix("bot_generation_factor")
	}
	if t.InitialGridSize < 4 {
		t.InitialGridSize = dt.InitialGridSize
		fix("initial_grid_size")
	}
	if t.GridGrowth <= 0 {
		t.GridGrowth = dt.GridGrowth
		fix("grid_growth")
	}
	if !finite(t.WaveDuration) || t.WaveDuration <= 0 {
		t.WaveDuration = dt.WaveDuration
		fix("wave_duration")
	}
	if !finite(t.EscalationInterval) || t.EscalationInterval <= 0 {
		t.EscalationInterval = dt.EscalationInterval
		fix("escalation_interval")
	}
	if !finite(t.BotTickChance) || t.BotTickChance <= 0 || t.BotTickChance > 1 {
		t.BotTickChance = dt.BotTickChance
		fix("bot_tick_chance")
	}
	if t.BotMinSourceTroops <= 0 {
		t.BotMinSourceTroops = dt.BotMinSourceTroops
		fix("bot_min_source_troops")
	}
	if !finite(t.BotAttackFraction) || t.BotAttackFraction < 0.5 || t.BotAttackFraction > 0.8 {
		t.BotAttackFraction = dt.BotAttackFraction
		fix("bot_attack_fraction")
	}
	if !finite(t.BotAggressionFactor) || t.BotAggressionFactor <= 0 {
		t.BotAggressionFactor = dt.BotAggressionFactor
		fix("bot_aggression_factor")
	}
	if !finite(t.BotReinforceFraction) || t.BotReinforceFraction <= 0 || t.BotReinforceFraction >= 1 {
		t.BotReinforceFraction = dt.BotReinforceFraction
		fix("bot_reinforce_fraction")
	}
	if !finite(t.DominationWinShare) || t.DominationWinShare <= 0 || t.DominationWinShare > 1 {
		t.DominationWinShare = dt.DominationWinShare
		fix("domination_win_share")
	}
	if !finite(t.DuelWinShare) || t.DuelWinShare <= 0.5 || t.DuelWinShare > 1 {
		t.DuelWinShare = dt.DuelWinShare
		fix("duel_win_share")
	}
	if strings.TrimSpace(t.Policy.PlayerCondition) == "" {
		t.Policy.PlayerCondition = DefaultPlayerCondition
		fix("policy.player_condition")
	}
	if strings.TrimSpace(t.Policy.NeutralCondition) == "" {
		t.Policy.NeutralCondition = DefaultNeutralCondition
		fix("policy.neutral_condition")
	}
	return fixed
}

// finite rejects NaN and the infinities, which slip through ordered comparisons.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GenerationRate resolves the effective troop generation rate for a preset.
func (s Settings) GenerationRate(p DifficultyPreset) float64 {
	if s.Tunables.TroopGenerationRate > 0 {
		return s.Tunables.TroopGenerationRate
	}
	return p.TroopRate
}
