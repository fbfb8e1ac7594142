package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"domination-engine/internal/game"
	"domination-engine/internal/logging"
	"domination-engine/internal/models"
)

const diagnosticsInterval = 10 * time.Second

// EndHandler is called once per finished session, outside the session lock.
type EndHandler func(id string, result game.Result)

// GameSession drives one game.Session on a fixed-interval ticker. Ticks and
// commands share one mutex, so they never overlap.
type GameSession struct {
	ID string

	mu       sync.RWMutex
	session  *game.Session
	settings models.Settings
	opts     []game.Option
	onEnd    EndHandler
	base     zerolog.Logger
	logger   zerolog.Logger
	diag     *rate.Limiter
	onStart  func(*GameSession)

	runMu   sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// RunnerOption customizes a GameSession.
type RunnerOption func(*GameSession)

// WithSessionOptions passes options to every game.Session the runner creates,
// including those created by Restart.
func WithSessionOptions(opts ...game.Option) RunnerOption {
	return func(gs *GameSession) { gs.opts = append(gs.opts, opts...) }
}

func WithEndHandler(h EndHandler) RunnerOption {
	return func(gs *GameSession) { gs.onEnd = h }
}

func WithRunnerLogger(l zerolog.Logger) RunnerOption {
	return func(gs *GameSession) { gs.base = l }
}

// withStartHandler is called on every Start, including those from Restart.
func withStartHandler(h func(*GameSession)) RunnerOption {
	return func(gs *GameSession) { gs.onStart = h }
}

// NewGameSession builds the session for settings. It does not start ticking.
func NewGameSession(id string, settings models.Settings, opts ...RunnerOption) *GameSession {
	gs := &GameSession{
		ID:   id,
		base: zerolog.Nop(),
		diag: rate.NewLimiter(rate.Every(diagnosticsInterval), 1),
	}
	for _, opt := range opts {
		opt(gs)
	}
	gs.logger = logging.Component(gs.base, "GameSession").With().Str("session", id).Logger()
	gs.session = gs.newSession(settings)
	return gs
}

func (gs *GameSession) newSession(settings models.Settings) *game.Session {
	opts := append([]game.Option{game.WithID(gs.ID), game.WithLogger(gs.base)}, gs.opts...)
	s := game.NewSession(settings, opts...)
	gs.settings = s.Settings()
	return s
}

// Start begins the tick loop on its own goroutine. It is a no-op if the loop
// is already running.
func (gs *GameSession) Start() {
	if !gs.begin() {
		return
	}
	// Called without runMu held; the start handler may take its own locks.
	if gs.onStart != nil {
		gs.onStart(gs)
	}
}

func (gs *GameSession) begin() bool {
	gs.runMu.Lock()
	defer gs.runMu.Unlock()
	if gs.running {
		return false
	}
	gs.running = true
	gs.stop = make(chan struct{})
	gs.done = make(chan struct{})

	gs.mu.Lock()
	gs.session.Start(time.Now())
	interval := time.Duration(gs.settings.TickIntervalMS) * time.Millisecond
	gs.mu.Unlock()

	gs.logger.Info().Dur("interval", interval).Str("mode", string(gs.settings.Mode)).Msg("Game session started")
	go gs.loop(interval, gs.stop, gs.done)
	return true
}

// loop ticks until stopped or until the game ends. The end handler runs after
// done is closed and the runner is marked stopped, so it may call Restart.
func (gs *GameSession) loop(interval time.Duration, stop <-chan struct{}, done chan struct{}) {
	result, ended := gs.run(interval, stop)
	close(done)
	if !ended {
		return
	}
	gs.runMu.Lock()
	if gs.done == done {
		gs.running = false
	}
	gs.runMu.Unlock()
	gs.logger.Info().Bool("victory", result.Victory).Int("score", result.Breakdown.Final).Msg("Game session finished, loop stopped")
	if gs.onEnd != nil {
		gs.onEnd(gs.ID, result)
	}
}

func (gs *GameSession) run(interval time.Duration, stop <-chan struct{}) (game.Result, bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return game.Result{}, false
		case now := <-ticker.C:
			if result, ended := gs.tick(now); ended {
				return result, true
			}
		}
	}
}

// tick runs one update under the lock. A panic inside the engine is logged and
// the loop keeps going.
func (gs *GameSession) tick(now time.Time) (result game.Result, ended bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			gs.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Recovered from panic in tick")
		}
	}()

	gs.session.Tick(now)
	if gs.diag.Allow() {
		snap := gs.session.Snapshot()
		gs.logger.Debug().
			Float64("elapsed", snap.Elapsed).
			Int("player_tiles", snap.PlayerTiles).
			Int("bot_tiles", snap.BotTiles).
			Int("bots", snap.BotCount).
			Int("score", snap.Score).
			Int("wave", snap.Wave).
			Msg("Tick diagnostics")
	}
	if r := gs.session.Result(); r != nil {
		return *r, true
	}
	return game.Result{}, false
}

// Stop halts the ticker and waits for the loop goroutine to exit.
func (gs *GameSession) Stop() {
	gs.runMu.Lock()
	defer gs.runMu.Unlock()
	if !gs.running {
		return
	}
	close(gs.stop)
	<-gs.done
	gs.running = false
	gs.logger.Info().Msg("Game session stopped")
}

// Running reports whether the tick loop is active. It turns false once the
// game ends or Stop returns.
func (gs *GameSession) Running() bool {
	gs.runMu.Lock()
	defer gs.runMu.Unlock()
	return gs.running
}

// Done is closed when the current loop exits, either from Stop or because the
// game ended. It is nil before the first Start.
func (gs *GameSession) Done() <-chan struct{} {
	gs.runMu.Lock()
	defer gs.runMu.Unlock()
	return gs.done
}

// Restart stops the loop, replaces the session and starts again. With
// sameSettings the previous settings are reused, otherwise next is used
// (nil means defaults).
func (gs *GameSession) Restart(sameSettings bool, next *models.Settings) {
	gs.Stop()

	gs.mu.Lock()
	settings := models.DefaultSettings()
	switch {
	case sameSettings:
		settings = gs.settings
	case next != nil:
		settings = *next
	}
	gs.session = gs.newSession(settings)
	gs.mu.Unlock()

	gs.logger.Info().Bool("same_settings", sameSettings).Msg("Game session restarted")
	gs.Start()
}

// Do runs fn with exclusive access to the session.
func (gs *GameSession) Do(fn func(*game.Session)) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	fn(gs.session)
}

func (gs *GameSession) Snapshot() game.Snapshot {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.session.Snapshot()
}

func (gs *GameSession) Settings() models.Settings {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.settings
}

func (gs *GameSession) SelectTile(k game.Key) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.session.SelectTile(k)
}

func (gs *GameSession) ClearSelection() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.session.ClearSelection()
}

func (gs *GameSession) IssueOrder(from, to game.Key, troops int) (game.OrderResult, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.session.IssueOrder(from, to, troops)
}

func (gs *GameSession) ClickTile(k game.Key, troops int) (*game.OrderResult, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.session.ClickTile(k, troops)
}

func (gs *GameSession) Pause() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.session.Pause()
}

// Resume continues a paused game. A running game is left alone so the time
// since its last tick still counts.
func (gs *GameSession) Resume() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.session.Paused() {
		gs.session.Resume(time.Now())
	}
}

// TogglePause pauses a running game or resumes a paused one. It reports the
// new paused state.
func (gs *GameSession) TogglePause() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.session.Paused() {
		gs.session.Resume(time.Now())
	} else {
		gs.session.Pause()
	}
	return gs.session.Paused()
}
