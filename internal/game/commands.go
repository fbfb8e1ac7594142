package game

import (
	"fmt"

	"domination-engine/internal/models"
)

// OrderKind tells how an order was resolved.
type OrderKind string

const (
	OrderAttack    OrderKind = "attack"
	OrderReinforce OrderKind = "reinforce"
)

// OrderResult reports what an accepted order did.
type OrderResult struct {
	Kind    OrderKind
	From    Key
	To      Key
	Troops  int
	Outcome Outcome // Zero for reinforcements
	Moved   int     // Troops that stayed on the destination of a reinforcement
	Message string
}

func (s *Session) playable() error {
	if s.result != nil || !s.active {
		return fmt.Errorf("command: %w", ErrSessionEnded)
	}
	if s.paused {
		return fmt.Errorf("command: %w", ErrPaused)
	}
	return nil
}

// lookup fetches a tile for a command. A missing tile is a stale reference
// (typically from before an expansion) and is logged, not surfaced as advice.
func (s *Session) lookup(k Key) (*models.Tile, error) {
	t, err := s.ledger.Get(k)
	if err != nil {
		s.logger.Warn().Err(err).Str("tile", string(k)).Int("generation", s.grid.Generation).Msg("Command references unknown tile")
		return nil, err
	}
	return t, nil
}

// SelectTile sets the cursor to a player tile that can act as an attack source.
func (s *Session) SelectTile(k Key) error {
	if err := s.playable(); err != nil {
		return err
	}
	t, err := s.lookup(k)
	if err != nil {
		return err
	}
	if t.Owner != models.OwnerPlayer {
		return s.deny(rejectf("You don't control %s", k))
	}
	if int(t.PlayerTroops) < 1 {
		return s.deny(rejectf("%s has no troops to command", k))
	}
	s.selected = k
	return nil
}

// ClearSelection drops the cursor.
func (s *Session) ClearSelection() {
	s.selected = ""
}

// Selected is the key of the selected player tile, or empty.
func (s *Session) Selected() Key { return s.selected }

// IssueOrder sends troops from a player tile to an adjacent tile. Orders to
// player tiles reinforce, anything else is an attack. Rejected orders return a
// *CommandError and change nothing.
func (s *Session) IssueOrder(from, to Key, troops int) (OrderResult, error) {
	if err := s.playable(); err != nil {
		return OrderResult{}, err
	}
	src, err := s.lookup(from)
	if err != nil {
		return OrderResult{}, err
	}
	dst, err := s.lookup(to)
	if err != nil {
		return OrderResult{}, err
	}
	switch {
	case src.Owner != models.OwnerPlayer:
		return OrderResult{}, s.deny(rejectf("You don't control %s", from))
	case from == to || !s.grid.AdjacentKeys(from, to):
		return OrderResult{}, s.deny(rejectf("Target not adjacent!"))
	case troops < 1:
		return OrderResult{}, s.deny(rejectf("Send at least one troop"))
	case troops > int(src.PlayerTroops):
		return OrderResult{}, s.deny(rejectf("Not enough troops!"))
	}

	if dst.Owner == models.OwnerPlayer {
		moved, _ := s.ledger.Reinforce(from, to, models.OwnerPlayer, float64(troops))
		s.notifyTile(from, src)
		s.notifyTile(to, dst)
		res := OrderResult{
			Kind:    OrderReinforce,
			From:    from,
			To:      to,
			Troops:  troops,
			Moved:   int(moved),
			Message: fmt.Sprintf("Moved %d troops to %s", int(moved), to),
		}
		s.raise(Event{Kind: EventReinforced, Message: res.Message, Tile: to})
		return res, nil
	}

	defender := dst.Owner
	out := s.applyAttack(from, src, to, dst, models.OwnerPlayer, troops)
	res := OrderResult{Kind: OrderAttack, From: from, To: to, Troops: troops, Outcome: out}
	switch {
	case out.AttackerWins && defender == models.OwnerBot:
		res.Message = fmt.Sprintf("Victory! Defeated bot. %d troops remain.", out.Survivors)
	case out.AttackerWins:
		res.Message = fmt.Sprintf("Captured neutral territory! %d troops remain.", out.Survivors)
	default:
		res.Message = fmt.Sprintf("Attack failed! %s has %d troops left. Lost %d troops.", defender, out.Survivors, troops)
	}
	kind := EventCaptured
	if !out.AttackerWins {
		kind = EventAttackFailed
	}
	s.raise(Event{Kind: kind, Message: res.Message, Tile: to})
	s.CheckEnd()
	return res, nil
}

// ClickTile is the single-input flow: clicking an own tile with troops
// selects it, clicking any other neighbor of the selection sends troops there.
func (s *Session) ClickTile(k Key, troops int) (*OrderResult, error) {
	if err := s.playable(); err != nil {
		return nil, err
	}
	t, err := s.lookup(k)
	if err != nil {
		return nil, err
	}
	if t.Owner == models.OwnerPlayer && int(t.PlayerTroops) >= 1 {
		return nil, s.SelectTile(k)
	}
	if s.selected == "" {
		return nil, s.deny(rejectf("Select one of your tiles first"))
	}
	res, err := s.IssueOrder(s.selected, k, troops)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// applyAttack commits troops from src against dst and applies the outcome.
// Committed troops leave the source whatever the result.
func (s *Session) applyAttack(from Key, src *models.Tile, to Key, dst *models.Tile, attacker models.Owner, troops int) Outcome {
	src.SetTroopsOf(attacker, src.TroopsOf(attacker)-float64(troops))
	s.notifyTile(from, src)

	defender := dst.Owner
	shield := dst.Shield
	out := Resolve(troops, int(dst.Troops()), shield)
	if !out.AttackerWins {
		dst.SetTroopsOf(defender, float64(out.Survivors))
		s.notifyTile(to, dst)
		return out
	}

	s.transfer(to, dst, attacker)
	_, _ = s.ledger.SetTroops(to, attacker, float64(out.Survivors))
	if attacker == models.OwnerPlayer {
		dst.Shield = shield / 2
		switch defender {
		case models.OwnerNeutral:
			s.score += NeutralCaptureScore * s.preset.Level
		case models.OwnerBot:
			s.score += BotCaptureScore * s.preset.Level
			s.botsDefeated++
			s.pruneBots()
		}
	} else {
		dst.Shield = s.activePreset().BotShield
	}
	s.notifyTile(to, dst)
	return out
}

func (s *Session) deny(err error) error {
	s.logger.Debug().Err(err).Msg("Command rejected")
	s.raise(Event{Kind: EventCommandDenied, Message: err.Error()})
	return err
}
