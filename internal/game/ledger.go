package game

import (
	"fmt"
	"math/rand"

	"domination-engine/internal/models"
)

// Ledger is the authoritative tile store. Troop counters are kept as real
// numbers; truncation happens only when values are displayed or committed.
type Ledger struct {
	tiles     map[Key]*models.Tile
	maxTroops float64
}

// NewLedger returns an empty ledger whose troop counters are capped at
// maxTroops.
func NewLedger(maxTroops float64) *Ledger {
	return &Ledger{tiles: make(map[Key]*models.Tile), maxTroops: maxTroops}
}

func (l *Ledger) MaxTroops() float64 { return l.maxTroops }

// Len is the number of tiles stored.
func (l *Ledger) Len() int { return len(l.tiles) }

// Get returns the live record for key.
func (l *Ledger) Get(key Key) (*models.Tile, error) {
	t, ok := l.tiles[key]
	if !ok {
		return nil, fmt.Errorf("ledger get %s: %w", key, ErrNotFound)
	}
	return t, nil
}

// SetTroops stores amount for owner on key, clamped into [0, max].
// The amount cut off by the cap is returned so callers can route it back.
func (l *Ledger) SetTroops(key Key, owner models.Owner, amount float64) (excess float64, err error) {
	t, err := l.Get(key)
	if err != nil {
		return 0, err
	}
	if amount > l.maxTroops {
		excess = amount - l.maxTroops
		amount = l.maxTroops
	}
	t.SetTroopsOf(owner, amount)
	return excess, nil
}

// Reinforce moves amount troops of class owner from one tile to another.
// Anything the destination cannot hold goes back to the source.
func (l *Ledger) Reinforce(from, to Key, owner models.Owner, amount float64) (moved float64, err error) {
	src, err := l.Get(from)
	if err != nil {
		return 0, err
	}
	dst, err := l.Get(to)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, nil
	}
	if amount > src.TroopsOf(owner) {
		amount = src.TroopsOf(owner)
	}
	src.SetTroopsOf(owner, src.TroopsOf(owner)-amount)
	excess, _ := l.SetTroops(to, owner, dst.TroopsOf(owner)+amount)
	src.SetTroopsOf(owner, src.TroopsOf(owner)+excess)
	return amount - excess, nil
}

// InitializeNeutral (re)creates key as a neutral tile with 2–5 troops and the
// preset's shield.
func (l *Ledger) InitializeNeutral(c Coord, preset models.DifficultyPreset, rng *rand.Rand) *models.Tile {
	t := &models.Tile{
		Row:           c.Row,
		Col:           c.Col,
		Owner:         models.OwnerNeutral,
		NeutralTroops: float64(2 + rng.Intn(4)),
		Shield:        preset.BotShield,
	}
	l.tiles[c.Key()] = t
	return t
}

// EnsureGrid creates neutral tiles for every coordinate of g that has no
// record yet. Existing records are left untouched. It returns the new keys in
// row-major order.
func (l *Ledger) EnsureGrid(g *Grid, preset models.DifficultyPreset, rng *rand.Rand) []Key {
	var added []Key
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			co := Coord{r, c}
			if _, ok := l.tiles[co.Key()]; ok {
				continue
			}
			l.InitializeNeutral(co, preset, rng)
			added = append(added, co.Key())
		}
	}
	return added
}

// Each visits every tile. Iteration order is unspecified.
func (l *Ledger) Each(fn func(Key, *models.Tile)) {
	for k, t := range l.tiles {
		fn(k, t)
	}
}
