package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination-engine/internal/models"
)

func newTestLedger(t *testing.T, size int) (*Ledger, *Grid) {
	t.Helper()
	g := NewGrid(size, Orthogonal{})
	l := NewLedger(50)
	added := l.EnsureGrid(g, models.Preset(2), rand.New(rand.NewSource(1)))
	require.Len(t, added, size*size)
	return l, g
}

func TestInitializeNeutralRange(t *testing.T) {
	l, _ := newTestLedger(t, 6)
	l.Each(func(k Key, tile *models.Tile) {
		assert.Equal(t, models.OwnerNeutral, tile.Owner)
		assert.GreaterOrEqual(t, tile.NeutralTroops, 2.0, k)
		assert.LessOrEqual(t, tile.NeutralTroops, 5.0, k)
		assert.Equal(t, 2, tile.Shield)
	})
}

func TestLedgerGetUnknown(t *testing.T) {
	l, _ := newTestLedger(t, 4)
	_, err := l.Get(Coord{4, 0}.Key())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetTroopsClampsAndReportsExcess(t *testing.T) {
	l, _ := newTestLedger(t, 4)
	k := Coord{1, 1}.Key()

	excess, err := l.SetTroops(k, models.OwnerNeutral, 62.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, excess)
	tile, _ := l.Get(k)
	assert.Equal(t, 50.0, tile.NeutralTroops)

	excess, err = l.SetTroops(k, models.OwnerNeutral, -4)
	require.NoError(t, err)
	assert.Zero(t, excess)
	assert.Zero(t, tile.NeutralTroops)
}

func TestReinforceMovesAndReturnsOverflow(t *testing.T) {
	l, _ := newTestLedger(t, 4)
	a, b := Coord{0, 0}.Key(), Coord{0, 1}.Key()
	ta, _ := l.Get(a)
	tb, _ := l.Get(b)
	ta.Owner, tb.Owner = models.OwnerBot, models.OwnerBot
	ta.BotTroops, tb.BotTroops = 30, 10

	moved, err := l.Reinforce(a, b, models.OwnerBot, 15)
	require.NoError(t, err)
	assert.Equal(t, 15.0, moved)
	assert.Equal(t, 15.0, ta.BotTroops)
	assert.Equal(t, 25.0, tb.BotTroops)

	tb.BotTroops = 48
	moved, err = l.Reinforce(a, b, models.OwnerBot, 10)
	require.NoError(t, err)
	assert.Equal(t, 2.0, moved)
	assert.Equal(t, 13.0, ta.BotTroops)
	assert.Equal(t, 50.0, tb.BotTroops)
	assert.Equal(t, 63.0, ta.BotTroops+tb.BotTroops, "troops conserved")

	_, err = l.Reinforce(a, Key("9-9"), models.OwnerBot, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureGridPreservesExistingTiles(t *testing.T) {
	l, g := newTestLedger(t, 4)
	k := Coord{2, 2}.Key()
	tile, _ := l.Get(k)
	tile.Owner = models.OwnerPlayer
	tile.PlayerTroops = 17.25
	tile.NeutralTroops = 0
	tile.Shield = 1
	before := *tile

	g.Grow(3)
	added := l.EnsureGrid(g, models.Preset(5), rand.New(rand.NewSource(2)))
	assert.Len(t, added, 7*7-4*4)
	assert.Equal(t, 49, l.Len())

	after, err := l.Get(k)
	require.NoError(t, err)
	assert.Same(t, tile, after, "record not replaced")
	assert.Equal(t, before, *after)

	fresh, err := l.Get(Coord{6, 6}.Key())
	require.NoError(t, err)
	assert.Equal(t, models.OwnerNeutral, fresh.Owner)
	assert.Equal(t, models.Preset(5).BotShield, fresh.Shield)

	assert.Empty(t, l.EnsureGrid(g, models.Preset(5), rand.New(rand.NewSource(3))))
}
