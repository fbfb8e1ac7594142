package game

import (
	"fmt"
	"math"

	"domination-engine/internal/models"
)

// Per-wave changes applied to every bot. Both only ever go up.
const (
	waveStrengthStep   = 0.1
	waveAggressionStep = 0.05
	waveBaseSpawns     = 2
)

// NextWaveIn is the number of seconds until the next wave. Only meaningful in
// Domination mode.
func (s *Session) NextWaveIn() float64 { return math.Max(0, s.waveTimer) }

func (s *Session) advanceWave(dt float64) {
	s.waveTimer -= dt
	if s.waveTimer <= 0 {
		s.TriggerNextWave()
	}
}

// TriggerNextWave grows the map, merges fresh neutral tiles into the ledger
// without touching existing tiles, reinforces the bot faction and restarts the
// wave timer.
func (s *Session) TriggerNextWave() {
	s.wave++
	s.grid.Grow(s.settings.Tunables.GridGrowth)
	added := s.ledger.EnsureGrid(s.grid, s.activePreset(), s.rng)
	for _, k := range added {
		s.territory.Add(k, models.OwnerNeutral)
		if t, err := s.ledger.Get(k); err == nil {
			s.notifyTile(k, t)
		}
	}

	want := waveBaseSpawns + s.wave
	spawned := s.spawnBots(want)
	for i := range s.bots {
		s.bots[i].Strength += waveStrengthStep
		s.bots[i].Aggression = math.Min(1, s.bots[i].Aggression+waveAggressionStep)
	}
	s.waveTimer = s.settings.Tunables.WaveDuration

	msg := fmt.Sprintf("Wave %d! Map expanded to %dx%d. %d new bots spawned!", s.wave, s.grid.Size, s.grid.Size, spawned)
	s.logger.Info().
		Int("wave", s.wave).
		Int("grid", s.grid.Size).
		Int("new_tiles", len(added)).
		Int("spawned", spawned).
		Msg("Wave started")
	s.raise(Event{Kind: EventWaveStarted, Message: msg, Wave: s.wave})
}

func (s *Session) advanceEscalation(dt float64) {
	s.escalation -= dt
	if s.escalation > 0 {
		return
	}
	s.escalation += s.settings.Tunables.EscalationInterval
	if s.tier >= models.MaxDifficulty {
		return
	}
	s.tier++
	p := s.activePreset()
	s.logger.Info().Int("tier", s.tier).Str("preset", p.Name).Msg("Difficulty escalated")
	s.raise(Event{Kind: EventEscalated, Message: fmt.Sprintf("Enemy reinforced: %s", p.Name), Tier: s.tier})
	if s.settings.Tunables.RefreshShieldsOnEscalation {
		s.RefreshShields()
	}
}

// advanceSpawns adds one bot every BotSpawnRate seconds of the active tier.
func (s *Session) advanceSpawns(dt float64) {
	s.spawnTimer -= dt
	if s.spawnTimer > 0 {
		return
	}
	s.spawnTimer = s.activePreset().BotSpawnRate
	if n := s.spawnBots(1); n > 0 {
		s.raise(Event{Kind: EventBotsSpawned, Message: "Enemy reinforcements have landed"})
	}
}

// RefreshShields reapplies the active preset's shield to every tile: full for
// bot and neutral tiles, halved for player tiles.
func (s *Session) RefreshShields() {
	p := s.activePreset()
	s.ledger.Each(func(k Key, t *models.Tile) {
		shield := p.BotShield
		if t.Owner == models.OwnerPlayer {
			shield /= 2
		}
		if t.Shield != shield {
			t.Shield = shield
			s.notifyTile(k, t)
		}
	})
}
