package game

import (
	"github.com/google/uuid"

	"domination-engine/internal/models"
)

const spawnAttempts = 50

// setup builds the initial board for the configured mode.
func (s *Session) setup() {
	p := s.preset
	for _, k := range s.ledger.EnsureGrid(s.grid, p, s.rng) {
		s.territory.Add(k, models.OwnerNeutral)
	}
	s.wave = 1
	s.waveTimer = s.settings.Tunables.WaveDuration
	s.escalation = s.settings.Tunables.EscalationInterval
	s.spawnTimer = p.BotSpawnRate
	s.active = true

	size := s.grid.Size
	mid := size / 2
	switch s.settings.Mode {
	case models.ModeBots:
		s.placePlayer(Coord{1, 1})
		s.spawnBots(3)
	case models.ModeDuel:
		s.placePlayer(Coord{mid, 1})
		k := Coord{mid, size - 2}.Key()
		t, _ := s.ledger.Get(k)
		s.assign(k, t, models.OwnerBot)
		_, _ = s.ledger.SetTroops(k, models.OwnerBot, float64(p.BotStartTroops))
		t.Shield = p.BotShield
		s.bots = append(s.bots, models.Bot{ID: "elite", Strength: 1, Intelligence: 1, Aggression: p.BotAggression})
	default:
		// Starting tiles fan out from the center: alternate rows below and
		// above, every odd index one column to the left.
		for i := 0; i < p.StartTiles; i++ {
			dir := 1
			if i%2 != 0 {
				dir = -1
			}
			c := Coord{Row: mid + (i/2)*dir, Col: mid - i%2}
			if s.grid.InBounds(c) {
				s.placePlayer(c)
			}
		}
		s.spawnBots(2)
	}
}

func (s *Session) placePlayer(c Coord) {
	k := c.Key()
	t, err := s.ledger.Get(k)
	if err != nil {
		return
	}
	s.assign(k, t, models.OwnerPlayer)
	_, _ = s.ledger.SetTroops(k, models.OwnerPlayer, float64(s.preset.StartTroops))
	t.Shield = s.preset.BotShield / 2
	s.notifyTile(k, t)
}

// spawnBots places up to count new bots on neutral tiles using the active
// preset. It returns how many were placed.
func (s *Session) spawnBots(count int) int {
	p := s.activePreset()
	placed := 0
	for i := 0; i < count; i++ {
		k, ok := s.findSpawnTile()
		if !ok {
			break
		}
		t, _ := s.ledger.Get(k)
		s.assign(k, t, models.OwnerBot)
		_, _ = s.ledger.SetTroops(k, models.OwnerBot, float64(p.BotStartTroops))
		t.Shield = p.BotShield
		s.notifyTile(k, t)
		s.bots = append(s.bots, models.Bot{
			ID:           "bot-" + uuid.NewString(),
			Strength:     1,
			Intelligence: 1,
			Aggression:   p.BotAggression,
		})
		placed++
	}
	if placed > 0 {
		s.logger.Debug().Int("spawned", placed).Int("roster", len(s.bots)).Msg("Bots spawned")
	}
	return placed
}

// findSpawnTile picks a random neutral tile, preferring one that does not
// touch player territory.
func (s *Session) findSpawnTile() (Key, bool) {
	neutral := s.territory.Sorted(models.OwnerNeutral)
	if len(neutral) == 0 {
		return "", false
	}
	for i := 0; i < spawnAttempts; i++ {
		k := neutral[s.rng.Intn(len(neutral))]
		if !s.touchesPlayer(k) {
			return k, true
		}
	}
	return neutral[s.rng.Intn(len(neutral))], true
}

func (s *Session) touchesPlayer(k Key) bool {
	c, err := ParseKey(k)
	if err != nil {
		return false
	}
	for _, n := range s.grid.NeighborsOf(c) {
		if s.territory.Has(models.OwnerPlayer, n.Key()) {
			return true
		}
	}
	return false
}

// pruneBots keeps the roster no larger than the number of bot tiles still
// holding troops, dropping the newest bots first.
func (s *Session) pruneBots() {
	alive := 0
	s.territory.Each(models.OwnerBot, func(k Key) {
		if t, err := s.ledger.Get(k); err == nil && t.BotTroops > 0 {
			alive++
		}
	})
	if len(s.bots) <= alive {
		return
	}
	removed := len(s.bots) - alive
	s.bots = s.bots[:alive]
	s.logger.Info().Int("removed", removed).Int("roster", len(s.bots)).Msg("Bot roster pruned")
	s.raise(Event{Kind: EventBotsPruned, Message: "Enemy forces are collapsing"})
}
