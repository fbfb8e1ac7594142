package game

import (
	"math"
	"time"

	"domination-engine/internal/models"
)

// End-of-game bonus weights.
const (
	timeBonusPerSecond = 2
	tileBonus          = 75
	troopBonusFactor   = 0.5
	botDefeatBonus     = 250
	waveBonus          = 500
	victoryMultiplier  = 1.5
)

// ScoreBreakdown itemizes the final score.
type ScoreBreakdown struct {
	Base       int     `json:"base"`
	Time       int     `json:"time_bonus"`
	Tiles      int     `json:"tile_bonus"`
	Troops     int     `json:"troop_bonus"`
	Bots       int     `json:"bots_bonus"`
	Wave       int     `json:"wave_bonus"`
	Multiplier float64 `json:"multiplier"`
	Victory    bool    `json:"victory"`
	Final      int     `json:"final"`
}

// ScoreInputs are the counters the final score is computed from.
type ScoreInputs struct {
	Base         int
	Elapsed      float64
	Tiles        int
	Troops       int
	BotsDefeated int
	Wave         int
	Domination   bool
	Multiplier   float64
	Victory      bool
}

// ComputeScore applies the end-of-game formula. It is pure.
func ComputeScore(in ScoreInputs) ScoreBreakdown {
	b := ScoreBreakdown{
		Base:       in.Base,
		Time:       int(math.Floor(in.Elapsed * timeBonusPerSecond)),
		Tiles:      in.Tiles * tileBonus,
		Troops:     int(math.Floor(float64(in.Troops) * troopBonusFactor)),
		Bots:       in.BotsDefeated * botDefeatBonus,
		Multiplier: in.Multiplier,
		Victory:    in.Victory,
	}
	if in.Domination {
		b.Wave = in.Wave * waveBonus
	}
	sum := b.Base + b.Time + b.Tiles + b.Troops + b.Bots + b.Wave
	final := int(math.Floor(float64(sum) * in.Multiplier))
	if in.Victory {
		final = int(math.Floor(float64(final) * victoryMultiplier))
	}
	b.Final = final
	return b
}

// Result is the end-of-game payload.
type Result struct {
	Victory   bool                    `json:"victory"`
	Reason    string                  `json:"reason"`
	Breakdown ScoreBreakdown          `json:"breakdown"`
	Entry     models.LeaderboardEntry `json:"entry"`
}

// CheckEnd evaluates the terminal conditions in order and ends the session on
// the first that holds. It reports whether the session is over.
func (s *Session) CheckEnd() bool {
	if s.result != nil {
		return true
	}
	if !s.active {
		return false
	}
	s.pruneBots()

	player := s.territory.Count(models.OwnerPlayer)
	bots := s.territory.Count(models.OwnerBot)
	total := s.ledger.Len()
	mode := s.settings.Mode
	t := s.settings.Tunables

	share := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total)
	}

	switch {
	case player == 0:
		s.endGame(false, "All your territory has been lost")
	case mode != models.ModeDomination && bots == 0 && len(s.bots) == 0:
		s.endGame(true, "All enemy bots eliminated")
	case mode == models.ModeDuel && share(bots) > t.DuelWinShare:
		s.endGame(false, "The enemy controls the map")
	case mode == models.ModeDuel && share(player) > t.DuelWinShare:
		s.endGame(true, "You control the map")
	case mode == models.ModeDomination && share(player) > t.DominationWinShare:
		s.endGame(true, "Domination achieved")
	default:
		return false
	}
	return true
}

func (s *Session) endGame(victory bool, reason string) {
	s.active = false
	s.selected = ""
	tiles := s.territory.Count(models.OwnerPlayer)
	b := ComputeScore(ScoreInputs{
		Base:         s.score,
		Elapsed:      s.elapsed,
		Tiles:        tiles,
		Troops:       s.TotalPlayerTroops(),
		BotsDefeated: s.botsDefeated,
		Wave:         s.wave,
		Domination:   s.settings.Mode == models.ModeDomination,
		Multiplier:   s.preset.ScoreMultiplier,
		Victory:      victory,
	})
	now := time.Now()
	s.result = &Result{
		Victory:   victory,
		Reason:    reason,
		Breakdown: b,
		Entry: models.LeaderboardEntry{
			Player:       s.settings.PlayerName,
			Score:        b.Final,
			Mode:         s.settings.Mode.DisplayName(),
			Date:         now.Format(time.RFC3339),
			ElapsedTime:  s.elapsed,
			TilesHeld:    tiles,
			Difficulty:   s.preset.Level,
			BotsDefeated: s.botsDefeated,
			Wave:         s.wave,
			Victory:      victory,
			Timestamp:    now,
		},
	}
	s.logger.Info().
		Bool("victory", victory).
		Str("reason", reason).
		Int("score", b.Final).
		Float64("elapsed", s.elapsed).
		Int("tiles", tiles).
		Msg("Session ended")
	s.raise(Event{Kind: EventGameEnded, Message: reason, Wave: s.wave, Tier: s.tier})
}
