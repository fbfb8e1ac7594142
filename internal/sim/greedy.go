package sim

import (
	"domination-engine/internal/game"
	"domination-engine/internal/models"
)

// Greedy sends a share of every strong tile against its weakest non-player
// neighbor, but only when the attack should win by Margin. Tiles with no
// winnable target hold.
type Greedy struct {
	MinTroops int     // A source must hold more than this
	Fraction  float64 // Share of the source committed
	Margin    float64 // Attack must exceed defense times this
}

func DefaultGreedy() Greedy {
	return Greedy{MinTroops: 8, Fraction: 0.7, Margin: 1.2}
}

func (g Greedy) Orders(s *game.Session) []Order {
	var orders []Order
	for _, k := range s.Territory().Sorted(models.OwnerPlayer) {
		src, err := s.Ledger().Get(k)
		if err != nil {
			continue
		}
		troops := int(src.PlayerTroops)
		if troops <= g.MinTroops {
			continue
		}
		attack := int(float64(troops) * g.Fraction)
		if attack < 1 {
			continue
		}
		co, err := game.ParseKey(k)
		if err != nil {
			continue
		}

		var (
			target  game.Key
			weakest float64
		)
		for _, n := range s.Grid().NeighborsOf(co) {
			nk := n.Key()
			if s.Territory().Has(models.OwnerPlayer, nk) {
				continue
			}
			dst, err := s.Ledger().Get(nk)
			if err != nil {
				continue
			}
			defense := float64(int(dst.Troops()) + dst.Shield)
			if float64(attack) <= defense*g.Margin {
				continue
			}
			if target == "" || defense < weakest {
				target, weakest = nk, defense
			}
		}
		if target != "" {
			orders = append(orders, Order{From: k, To: target, Troops: attack})
		}
	}
	return orders
}
