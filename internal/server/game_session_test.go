package server

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination-engine/internal/game"
	"domination-engine/internal/models"
	"domination-engine/internal/persistence"
)

func fastSettings(mode models.Mode) models.Settings {
	st := models.DefaultSettings()
	st.Mode = mode
	st.Seed = 21
	st.TickIntervalMS = 50
	return st
}

// abandonAll hands every player tile to the neutrals so the next tick ends the game.
func abandonAll(s *game.Session) {
	for _, k := range s.Territory().Sorted(models.OwnerPlayer) {
		tile, err := s.Ledger().Get(k)
		if err != nil {
			panic(err)
		}
		s.Territory().Transfer(k, tile, models.OwnerNeutral)
	}
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	require.NotNil(t, ch)
	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("loop did not exit")
	}
}

// syncBuffer is a log sink shared between the tick goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDefeatStopsLoop(t *testing.T) {
	results := make(chan game.Result, 1)
	gs := NewGameSession("defeat", fastSettings(models.ModeBots), WithEndHandler(func(id string, r game.Result) {
		assert.Equal(t, "defeat", id)
		results <- r
	}))
	gs.Do(abandonAll)
	gs.Start()

	select {
	case r := <-results:
		assert.False(t, r.Victory)
		assert.Equal(t, "Bots Battle", r.Entry.Mode)
	case <-time.After(3 * time.Second):
		t.Fatal("no result")
	}
	waitClosed(t, gs.Done())

	snap := gs.Snapshot()
	assert.True(t, snap.Ended)
	assert.False(t, snap.Active)
	require.NotNil(t, snap.Result)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, snap.Elapsed, gs.Snapshot().Elapsed, "no ticks after the end")
	gs.Stop()
}

func TestStopWaitsForLoop(t *testing.T) {
	gs := NewGameSession("stop", fastSettings(models.ModeDomination))
	gs.Start()
	gs.Start() // already running

	require.Eventually(t, func() bool { return gs.Snapshot().Elapsed > 0 }, 2*time.Second, 10*time.Millisecond)
	gs.Stop()
	waitClosed(t, gs.Done())

	elapsed := gs.Snapshot().Elapsed
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, elapsed, gs.Snapshot().Elapsed)
	gs.Stop()
}

func TestCommandsNeverOverlapTicks(t *testing.T) {
	gs := NewGameSession("concurrent", fastSettings(models.ModeDomination))
	gs.Start()
	defer gs.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snap := gs.Snapshot()
				if len(snap.Tiles) == 0 {
					continue
				}
				_ = gs.SelectTile(snap.Tiles[j%len(snap.Tiles)].Key)
				gs.ClearSelection()
				time.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	gs.Do(func(s *game.Session) {
		assert.NoError(t, s.Territory().Validate(s.Ledger()))
	})
}

func TestPauseStopsTheClock(t *testing.T) {
	gs := NewGameSession("pause", fastSettings(models.ModeDomination))
	gs.Start()
	defer gs.Stop()

	require.Eventually(t, func() bool { return gs.Snapshot().Elapsed > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, gs.TogglePause())
	paused := gs.Snapshot().Elapsed
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, paused, gs.Snapshot().Elapsed)

	assert.False(t, gs.TogglePause())
	require.Eventually(t, func() bool { return gs.Snapshot().Elapsed > paused }, 2*time.Second, 10*time.Millisecond)
}

func TestRestart(t *testing.T) {
	gs := NewGameSession("restart", fastSettings(models.ModeDuel))
	gs.Start()
	defer gs.Stop()

	gs.Do(func(s *game.Session) {
		for _, k := range s.Territory().Sorted(models.OwnerPlayer) {
			tile, _ := s.Ledger().Get(k)
			tile.PlayerTroops = 1
		}
	})

	gs.Restart(true, nil)
	assert.Equal(t, models.ModeDuel, gs.Settings().Mode)
	gs.Do(func(s *game.Session) {
		tile, err := s.Ledger().Get("4-1")
		require.NoError(t, err)
		assert.InDelta(t, float64(models.Preset(2).StartTroops), tile.PlayerTroops, 2, "fresh board")
	})

	next := fastSettings(models.ModeBots)
	next.PlayerName = "Ada"
	gs.Restart(false, &next)
	assert.Equal(t, models.ModeBots, gs.Settings().Mode)
	assert.Equal(t, "Ada", gs.Settings().PlayerName)
	assert.Equal(t, "restart", gs.Snapshot().SessionID)

	gs.Restart(false, nil)
	assert.Equal(t, models.ModeDomination, gs.Settings().Mode)
	require.Eventually(t, func() bool { return gs.Snapshot().Elapsed > 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestRestartFromEndHandler(t *testing.T) {
	var (
		mu    sync.Mutex
		games int
	)
	var gs *GameSession
	restarted := make(chan struct{})
	gs = NewGameSession("again", fastSettings(models.ModeBots), WithEndHandler(func(string, game.Result) {
		mu.Lock()
		games++
		first := games == 1
		mu.Unlock()
		if first {
			gs.Restart(true, nil)
			close(restarted)
		}
	}))
	gs.Do(abandonAll)
	gs.Start()
	defer gs.Stop()

	select {
	case <-restarted:
	case <-time.After(3 * time.Second):
		t.Fatal("end handler did not restart")
	}
	snap := gs.Snapshot()
	assert.True(t, snap.Active)
	assert.False(t, snap.Ended)
}

func TestSessionManager(t *testing.T) {
	gsm := NewGameSessionManager(zerolog.Nop())
	a := gsm.CreateSession(fastSettings(models.ModeDomination))
	b := gsm.CreateSession(fastSettings(models.ModeBots))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, gsm.IDs(), 2)

	got, err := gsm.GetSession(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	gsm.RemoveSession(a.ID)
	_, err = gsm.GetSession(a.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)
	waitClosed(t, a.Done())

	gsm.RemoveSession("missing")
	gsm.StopAll()
	assert.Empty(t, gsm.IDs())
	waitClosed(t, b.Done())
}

func TestServerRecordsFinishedGames(t *testing.T) {
	store, err := persistence.NewJSONFileStore(filepath.Join(t.TempDir(), "leaderboard.json"))
	require.NoError(t, err)
	srv := NewServer(store, zerolog.Nop())
	defer srv.Stop()

	st := fastSettings(models.ModeBots)
	st.PlayerName = "Ada"
	gs := srv.Play(st)
	gs.Do(abandonAll)

	ctx := context.Background()
	require.Eventually(t, func() bool {
		entries, err := store.List(ctx)
		return err == nil && len(entries) == 1
	}, 3*time.Second, 20*time.Millisecond)

	board, err := srv.Leaderboard(ctx, persistence.PeriodDaily)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Ada", board[0].Player)
	assert.False(t, board[0].Victory)
}

func TestTickPanicIsRecovered(t *testing.T) {
	var armed, fired atomic.Bool
	obs := game.ObserverFuncs{OnTileChanged: func(game.TileView) {
		if armed.Load() && fired.CompareAndSwap(false, true) {
			panic("observer failed")
		}
	}}
	logs := &syncBuffer{}
	gs := NewGameSession("panic", fastSettings(models.ModeDomination),
		WithSessionOptions(game.WithObserver(obs)),
		WithRunnerLogger(zerolog.New(logs)))
	armed.Store(true)
	gs.Start()
	defer gs.Stop()

	require.Eventually(t, fired.Load, 3*time.Second, 10*time.Millisecond)
	after := gs.Snapshot().Elapsed
	require.Eventually(t, func() bool { return gs.Snapshot().Elapsed > after }, 3*time.Second, 10*time.Millisecond)

	assert.Contains(t, logs.String(), "Recovered from panic in tick")
	assert.True(t, gs.Running())
	select {
	case <-gs.Done():
		t.Fatal("loop exited after a recovered panic")
	default:
	}
	gs.Do(func(s *game.Session) {
		assert.NoError(t, s.Territory().Validate(s.Ledger()))
	})
}

func TestResumeWhileRunningKeepsTime(t *testing.T) {
	gs := NewGameSession("resume", fastSettings(models.ModeDomination))
	gs.Start()
	defer gs.Stop()

	require.Eventually(t, func() bool { return gs.Snapshot().Elapsed > 0 }, 2*time.Second, 10*time.Millisecond)
	start := gs.Snapshot().Elapsed
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		gs.Resume()
		time.Sleep(time.Millisecond)
	}
	assert.False(t, gs.Snapshot().Paused)
	assert.Greater(t, gs.Snapshot().Elapsed-start, 0.2, "repeated Resume must not drop tick time")
}

func TestFinishedSessionsAreReleased(t *testing.T) {
	store, err := persistence.NewJSONFileStore(filepath.Join(t.TempDir(), "leaderboard.json"))
	require.NoError(t, err)
	srv := NewServer(store, zerolog.Nop())
	defer srv.Stop()

	gs := srv.Play(fastSettings(models.ModeBots))
	assert.Equal(t, []string{gs.ID}, srv.Sessions().IDs())
	assert.False(t, srv.Sessions().ReleaseFinished(gs.ID), "running sessions stay tracked")

	gs.Do(abandonAll)
	require.Eventually(t, func() bool { return len(srv.Sessions().IDs()) == 0 }, 3*time.Second, 20*time.Millisecond)
	assert.False(t, gs.Running())
	_, err = srv.Sessions().GetSession(gs.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)

	gs.Restart(true, nil)
	assert.True(t, gs.Running())
	assert.Equal(t, []string{gs.ID}, srv.Sessions().IDs())
}
