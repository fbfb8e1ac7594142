package game

import (
	"testing"

	"domination-engine/internal/models"
)

func newTestSession(t *testing.T, mode models.Mode, difficulty int) *Session {
	t.Helper()
	st := models.DefaultSettings()
	st.Mode = mode
	st.Difficulty = difficulty
	st.Seed = 42
	return NewSession(st)
}

// clearBoard turns every tile neutral with troops and no shield, and empties the roster.
func clearBoard(s *Session, troops float64) {
	s.bots = nil
	s.selected = ""
	s.ledger.Each(func(k Key, t *models.Tile) {
		s.territory.Transfer(k, t, models.OwnerNeutral)
		t.ClearStale(models.OwnerNeutral)
		t.NeutralTroops = troops
		t.Shield = 0
	})
}

func place(s *Session, c Coord, owner models.Owner, troops float64, shield int) Key {
	k := c.Key()
	t, err := s.ledger.Get(k)
	if err != nil {
		panic(err)
	}
	s.territory.Transfer(k, t, owner)
	t.ClearStale(owner)
	t.SetTroopsOf(owner, troops)
	t.Shield = shield
	return k
}

func tileAt(t *testing.T, s *Session, k Key) *models.Tile {
	t.Helper()
	tile, err := s.ledger.Get(k)
	if err != nil {
		t.Fatalf("tile %s: %v", k, err)
	}
	return tile
}

type recorder struct {
	tiles  []TileView
	events []Event
}

func (r *recorder) TileChanged(v TileView) { r.tiles = append(r.tiles, v) }

func (r *recorder) EventRaised(e Event) { r.events = append(r.events, e) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}
