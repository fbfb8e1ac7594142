package sim

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination-engine/internal/game"
	"domination-engine/internal/models"
)

func settings(mode models.Mode, difficulty int) models.Settings {
	st := models.DefaultSettings()
	st.Mode = mode
	st.Difficulty = difficulty
	st.Seed = 1234
	return st
}

// isolate gives the first player tile troops, turns its neighbors into
// neutrals with the given troops and drains every other player tile.
func isolate(t *testing.T, s *game.Session, troops float64, neighbors ...float64) (game.Key, []game.Key) {
	t.Helper()
	own := s.Territory().Sorted(models.OwnerPlayer)
	require.NotEmpty(t, own)
	for _, k := range own[1:] {
		_, err := s.Ledger().SetTroops(k, models.OwnerPlayer, 1)
		require.NoError(t, err)
	}
	src := own[0]
	_, err := s.Ledger().SetTroops(src, models.OwnerPlayer, troops)
	require.NoError(t, err)

	co, err := game.ParseKey(src)
	require.NoError(t, err)
	var keys []game.Key
	for i, n := range s.Grid().NeighborsOf(co) {
		k := n.Key()
		tile, err := s.Ledger().Get(k)
		require.NoError(t, err)
		s.Territory().Transfer(k, tile, models.OwnerNeutral)
		tile.Shield = 0
		_, err = s.Ledger().SetTroops(k, models.OwnerNeutral, neighbors[i%len(neighbors)])
		require.NoError(t, err)
		keys = append(keys, k)
	}
	return src, keys
}

func TestGreedyPicksWeakestWinnableNeighbor(t *testing.T) {
	s := game.NewSession(settings(models.ModeBots, 2))
	src, keys := isolate(t, s, 30, 9, 4, 12, 15)
	require.GreaterOrEqual(t, len(keys), 2)

	orders := DefaultGreedy().Orders(s)
	require.Len(t, orders, 1)
	assert.Equal(t, src, orders[0].From)
	assert.Equal(t, keys[1], orders[0].To)
	assert.Equal(t, 21, orders[0].Troops)
}

func TestGreedyHoldsWithoutWinnableTarget(t *testing.T) {
	s := game.NewSession(settings(models.ModeBots, 2))
	isolate(t, s, 30, 20)
	assert.Empty(t, DefaultGreedy().Orders(s))

	s = game.NewSession(settings(models.ModeBots, 2))
	isolate(t, s, 8, 1)
	assert.Empty(t, DefaultGreedy().Orders(s), "source too weak")
}

func TestGreedyRespectsShields(t *testing.T) {
	s := game.NewSession(settings(models.ModeBots, 2))
	_, keys := isolate(t, s, 30, 10)
	for _, k := range keys {
		tile, err := s.Ledger().Get(k)
		require.NoError(t, err)
		tile.Shield = 8
	}
	assert.Empty(t, DefaultGreedy().Orders(s))
}

func TestRunStopsAtTimeLimitOrEnd(t *testing.T) {
	for _, mode := range []models.Mode{models.ModeDomination, models.ModeBots, models.ModeDuel} {
		t.Run(string(mode), func(t *testing.T) {
			var events int
			obs := game.ObserverFuncs{OnEvent: func(game.Event) { events++ }}
			rep, err := Run(context.Background(), Config{
				Settings:  settings(mode, 1),
				MaxTime:   300,
				Player:    DefaultGreedy(),
				Logger:    zerolog.Nop(),
				Observers: []game.Observer{obs},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, rep.SessionID)
			assert.Equal(t, mode, rep.Settings.Mode)
			assert.Positive(t, rep.Orders)
			assert.Positive(t, events)
			if rep.Result == nil {
				assert.GreaterOrEqual(t, rep.Elapsed, 300.0)
			} else {
				assert.Equal(t, rep.Result.Breakdown.Final, rep.Result.Entry.Score)
				assert.LessOrEqual(t, rep.Elapsed, 300.0+DefaultStep)
			}
			if mode != models.ModeDomination {
				assert.Zero(t, rep.Wave)
			}
		})
	}
}

func TestRunIsDeterministicForASeed(t *testing.T) {
	cfg := Config{Settings: settings(models.ModeDomination, 3), MaxTime: 400, Player: DefaultGreedy(), Logger: zerolog.Nop()}
	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.Orders, b.Orders)
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.PlayerTiles, b.PlayerTiles)
	assert.Equal(t, a.BotTiles, b.BotTiles)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestRunWithoutPlayerLosesOrTimesOut(t *testing.T) {
	rep, err := Run(context.Background(), Config{Settings: settings(models.ModeDuel, 5), MaxTime: 120, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Zero(t, rep.Orders)
	if rep.Result != nil {
		assert.False(t, rep.Result.Victory)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := Run(ctx, Config{Settings: settings(models.ModeDomination, 2), Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rep.Steps)
	assert.Nil(t, rep.Result)
}
