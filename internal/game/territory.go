package game

import (
	"fmt"
	"sort"

	"domination-engine/internal/models"
)

// Territory is the ownership index: three disjoint key sets whose union is
// every tile in the ledger.
type Territory struct {
	sets map[models.Owner]map[Key]struct{}
}

// NewTerritory returns an index with empty player, bot and neutral sets.
func NewTerritory() *Territory {
	return &Territory{sets: map[models.Owner]map[Key]struct{}{
		models.OwnerPlayer:  {},
		models.OwnerBot:     {},
		models.OwnerNeutral: {},
	}}
}

// Add indexes a freshly created tile under its current owner.
func (t *Territory) Add(key Key, owner models.Owner) {
	for o, set := range t.sets {
		if o != owner {
			delete(set, key)
		}
	}
	t.sets[owner][key] = struct{}{}
}

// Transfer moves tile to newOwner, clearing the counters of the other two
// classes. It reports false and does nothing when the tile already belongs to
// newOwner.
func (t *Territory) Transfer(key Key, tile *models.Tile, newOwner models.Owner) bool {
	if tile.Owner == newOwner {
		return false
	}
	delete(t.sets[tile.Owner], key)
	tile.ClearStale(newOwner)
	tile.Owner = newOwner
	t.sets[newOwner][key] = struct{}{}
	return true
}

// Count is the number of tiles owner holds.
func (t *Territory) Count(owner models.Owner) int { return len(t.sets[owner]) }

// Has reports whether owner holds key.
func (t *Territory) Has(owner models.Owner, key Key) bool {
	_, ok := t.sets[owner][key]
	return ok
}

// Each visits the keys held by owner in unspecified order. fn must not
// transfer tiles.
func (t *Territory) Each(owner models.Owner, fn func(Key)) {
	for k := range t.sets[owner] {
		fn(k)
	}
}

// Sorted returns the keys held by owner in row-major order.
func (t *Territory) Sorted(owner models.Owner) []Key {
	keys := make([]Key, 0, len(t.sets[owner]))
	for k := range t.sets[owner] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

// Validate checks the partition invariant against the ledger.
func (t *Territory) Validate(l *Ledger) error {
	total := 0
	for owner, set := range t.sets {
		total += len(set)
		for k := range set {
			tile, err := l.Get(k)
			if err != nil {
				return fmt.Errorf("territory %s: %w", owner, err)
			}
			if tile.Owner != owner {
				return fmt.Errorf("tile %s indexed as %s but owned by %s", k, owner, tile.Owner)
			}
		}
	}
	if total != l.Len() {
		return fmt.Errorf("territory indexes %d tiles, ledger holds %d", total, l.Len())
	}
	return nil
}

func keyLess(a, b Key) bool {
	ca, errA := ParseKey(a)
	cb, errB := ParseKey(b)
	if errA != nil || errB != nil {
		return a < b
	}
	if ca.Row != cb.Row {
		return ca.Row < cb.Row
	}
	return ca.Col < cb.Col
}
