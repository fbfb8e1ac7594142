package game

import (
	"math"

	"domination-engine/internal/models"
)

// DecisionKind is what a bot did with its turn.
type DecisionKind string

const (
	DecisionIdle      DecisionKind = "idle"
	DecisionAttack    DecisionKind = "attack"
	DecisionReinforce DecisionKind = "reinforce"
)

// BotDecision records one bot's turn.
type BotDecision struct {
	BotID   string
	Kind    DecisionKind
	From    Key
	To      Key
	Target  models.Owner
	Troops  int
	Outcome Outcome
}

// RunBots gives every bot in the roster one decision. A bot that finds
// nothing to do is a silent no-op.
func (s *Session) RunBots() []BotDecision {
	decisions := make([]BotDecision, 0, len(s.bots))
	for i := 0; i < len(s.bots); i++ {
		if s.result != nil {
			break
		}
		d := s.decide(s.bots[i])
		if d.Kind != DecisionIdle {
			s.logger.Debug().
				Str("bot", d.BotID).
				Str("kind", string(d.Kind)).
				Str("from", string(d.From)).
				Str("to", string(d.To)).
				Int("troops", d.Troops).
				Bool("captured", d.Outcome.AttackerWins).
				Msg("Bot acted")
		}
		decisions = append(decisions, d)
	}
	return decisions
}

type candidate struct {
	key  Key
	tile *models.Tile
}

func (s *Session) decide(bot models.Bot) BotDecision {
	idle := BotDecision{BotID: bot.ID, Kind: DecisionIdle}
	if s.rng.Float64() > bot.Aggression {
		return idle
	}

	t := s.settings.Tunables
	var sources []Key
	for _, k := range s.territory.Sorted(models.OwnerBot) {
		if tile, err := s.ledger.Get(k); err == nil && int(tile.BotTroops) > t.BotMinSourceTroops {
			sources = append(sources, k)
		}
	}
	if len(sources) == 0 {
		return idle
	}
	from := sources[s.rng.Intn(len(sources))]
	src, _ := s.ledger.Get(from)
	fromCoord, err := ParseKey(from)
	if err != nil {
		return idle
	}

	var players, neutrals, friends []candidate
	for _, n := range s.grid.NeighborsOf(fromCoord) {
		k := n.Key()
		tile, err := s.ledger.Get(k)
		if err != nil {
			continue
		}
		switch tile.Owner {
		case models.OwnerPlayer:
			players = append(players, candidate{k, tile})
		case models.OwnerNeutral:
			if tile.NeutralTroops > 0 {
				neutrals = append(neutrals, candidate{k, tile})
			}
		case models.OwnerBot:
			friends = append(friends, candidate{k, tile})
		}
	}

	attack := int(math.Floor(src.BotTroops * t.BotAttackFraction))
	env := TargetEnv{
		Attack:           attack,
		AggressionFactor: t.BotAggressionFactor,
		Strength:         bot.Strength,
		Intelligence:     bot.Intelligence,
		SourceTroops:     int(src.BotTroops),
		Wave:             s.wave,
	}

	if attack >= 1 {
		if c, ok := s.firstAccepted(players, env, s.policy.AcceptPlayer); ok {
			return s.botAttack(bot, from, src, c, attack)
		}
		if c, ok := s.firstAccepted(neutrals, env, s.policy.AcceptNeutral); ok {
			return s.botAttack(bot, from, src, c, attack)
		}
	}

	// Nothing worth attacking: shift troops toward a weaker friendly tile.
	for _, f := range friends {
		if f.tile.BotTroops >= src.BotTroops {
			continue
		}
		amount := math.Floor(src.BotTroops * t.BotReinforceFraction)
		if amount < 1 {
			break
		}
		moved, err := s.ledger.Reinforce(from, f.key, models.OwnerBot, amount)
		if err != nil {
			break
		}
		s.notifyTile(from, src)
		s.notifyTile(f.key, f.tile)
		return BotDecision{BotID: bot.ID, Kind: DecisionReinforce, From: from, To: f.key, Target: models.OwnerBot, Troops: int(moved)}
	}
	return idle
}

func (s *Session) firstAccepted(cands []candidate, env TargetEnv, accept func(TargetEnv) (bool, error)) (candidate, bool) {
	for _, c := range cands {
		env.Troops = int(c.tile.Troops())
		env.Shield = c.tile.Shield
		ok, err := accept(env)
		if err != nil {
			s.logger.Warn().Err(err).Str("tile", string(c.key)).Msg("Target policy evaluation failed")
			continue
		}
		if ok {
			return c, true
		}
	}
	return candidate{}, false
}

func (s *Session) botAttack(bot models.Bot, from Key, src *models.Tile, c candidate, troops int) BotDecision {
	target := c.tile.Owner
	out := s.applyAttack(from, src, c.key, c.tile, models.OwnerBot, troops)
	if out.AttackerWins && target == models.OwnerPlayer {
		s.raise(Event{Kind: EventTileLost, Message: "AI captured your territory!", Tile: c.key})
	}
	return BotDecision{BotID: bot.ID, Kind: DecisionAttack, From: from, To: c.key, Target: target, Troops: troops, Outcome: out}
}
