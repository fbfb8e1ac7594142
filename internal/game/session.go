package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"domination-engine/internal/logging"
	"domination-engine/internal/models"
)

// Session is one game: the tile ledger, the ownership index, the bot faction
// and every counter the end-of-game score is built from.
//
// A Session has no internal locking. Its owner must ensure that ticks and
// commands never run concurrently (server.GameSession does this).
type Session struct {
	ID       string
	settings models.Settings
	preset   models.DifficultyPreset // Selected at start, drives scoring
	tier     int                     // Active tier, drives new shields and new bots
	rate     float64

	grid       *Grid
	ledger     *Ledger
	territory  *Territory
	bots       []models.Bot
	policy     *TargetPolicy
	production *ProductionManager

	rng       *rand.Rand
	logger    zerolog.Logger
	observers []Observer

	score        int
	botsDefeated int
	elapsed      float64
	wave         int
	waveTimer    float64
	escalation   float64
	spawnTimer   float64

	selected Key
	active   bool
	paused   bool
	result   *Result
	lastTick time.Time
}

// Option customizes a Session at construction.
type Option func(*Session)

// WithRand injects the random source. Tests use a fixed seed.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithLogger sets the parent logger. Components log under their own name.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// WithObserver subscribes o before the board is seeded, so it sees the
// initial tiles too.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// NewSession validates settings (falling back to defaults), builds the board
// for the selected mode and returns an active session.
func NewSession(settings models.Settings, opts ...Option) *Session {
	s := &Session{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.logger = logging.Component(s.logger, "Session").With().Str("session", s.ID).Logger()

	if fixed := settings.Normalize(); len(fixed) > 0 {
		s.logger.Warn().Strs("fields", fixed).Msg("Settings invalid or missing, using defaults")
	}
	s.settings = settings
	if s.rng == nil {
		seed := settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}

	s.preset = models.Preset(settings.Difficulty)
	s.tier = s.preset.Level
	s.rate = settings.GenerationRate(s.preset)
	s.production = NewProductionManager(s.logger)

	policy, err := CompileTargetPolicy(settings.Tunables.Policy)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Bot policy rejected, using default conditions")
		policy = DefaultTargetPolicy()
	}
	s.policy = policy

	s.grid = NewGrid(settings.Tunables.InitialGridSize, TopologyFor(settings.Topology))
	s.ledger = NewLedger(settings.Tunables.MaxTroopsPerTile)
	s.territory = NewTerritory()
	s.setup()

	s.logger.Info().
		Str("mode", string(settings.Mode)).
		Int("difficulty", settings.Difficulty).
		Str("player", settings.PlayerName).
		Int("grid", s.grid.Size).
		Msg("Session started")
	return s
}

// Subscribe registers an observer after construction.
func (s *Session) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Settings returns the normalized settings the session was built with.
func (s *Session) Settings() models.Settings { return s.settings }

// Grid, Ledger and Territory expose the live board. Callers must hold
// whatever lock serializes access to the session.
func (s *Session) Grid() *Grid { return s.grid }

func (s *Session) Ledger() *Ledger { return s.ledger }

func (s *Session) Territory() *Territory { return s.territory }

// Bots returns a copy of the roster.
func (s *Session) Bots() []models.Bot {
	return append([]models.Bot(nil), s.bots...)
}

// Active is true from seeding until the game ends.
func (s *Session) Active() bool { return s.active }

func (s *Session) Paused() bool { return s.paused }

func (s *Session) Ended() bool { return s.result != nil }

// Result is nil while the game is running.
func (s *Session) Result() *Result { return s.result }

func (s *Session) Score() int { return s.score }

func (s *Session) Elapsed() float64 { return s.elapsed }

func (s *Session) Wave() int { return s.wave }

// Tier is the escalation level, starting at the selected difficulty.
func (s *Session) Tier() int { return s.tier }

// activePreset is the preset of the current escalation tier.
func (s *Session) activePreset() models.DifficultyPreset {
	return models.Preset(s.tier)
}

// Start records the wall-clock reference for the first Tick.
func (s *Session) Start(now time.Time) {
	s.lastTick = now
}

// Tick advances the session by the wall-clock time since the previous tick.
// The interval between calls is never assumed.
func (s *Session) Tick(now time.Time) {
	if s.lastTick.IsZero() {
		s.lastTick = now
		return
	}
	dt := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	s.Advance(dt)
}

// Advance runs one tick of dt seconds: generation, bot AI, wave and
// escalation timers, then the end-condition check.
func (s *Session) Advance(dt float64) {
	if !s.active || s.paused || dt <= 0 {
		return
	}
	s.elapsed += dt

	s.production.Process(s.ledger, s.territory, Production{
		Rate:            s.rate,
		BotFactor:       s.settings.Tunables.BotGenerationFactor,
		FactionStrength: s.factionStrength(),
		DeltaTime:       dt,
	}, s.notifyTile)

	if s.rng.Float64() < s.settings.Tunables.BotTickChance {
		s.RunBots()
	}

	if s.settings.Mode == models.ModeDomination {
		s.advanceWave(dt)
		s.advanceEscalation(dt)
		s.advanceSpawns(dt)
	}

	s.CheckEnd()
}

// Pause gates the tick. Nothing is rolled back.
func (s *Session) Pause() {
	if s.active {
		s.paused = true
	}
}

// Resume reopens the gate and restarts the wall-clock reference so the pause
// is not counted as elapsed time.
func (s *Session) Resume(now time.Time) {
	s.paused = false
	s.lastTick = now
}

func (s *Session) notifyTile(k Key, t *models.Tile) {
	if len(s.observers) == 0 {
		return
	}
	v := viewOf(k, t)
	for _, o := range s.observers {
		o.TileChanged(v)
	}
}

func (s *Session) raise(e Event) {
	e.Elapsed = s.elapsed
	for _, o := range s.observers {
		o.EventRaised(e)
	}
}

// assign sets ownership without any score side effect. Used while seeding.
func (s *Session) assign(k Key, t *models.Tile, owner models.Owner) {
	s.territory.Transfer(k, t, owner)
	s.notifyTile(k, t)
}

// transfer changes ownership during play. A transfer to the player awards the
// capture bonus once.
func (s *Session) transfer(k Key, t *models.Tile, owner models.Owner) bool {
	if !s.territory.Transfer(k, t, owner) {
		return false
	}
	if owner == models.OwnerPlayer {
		s.score += CaptureBonus * s.preset.Level
	}
	if s.selected == k && owner != models.OwnerPlayer {
		s.selected = ""
	}
	return true
}

// factionStrength is the mean roster strength, 1 when the roster is empty.
func (s *Session) factionStrength() float64 {
	if len(s.bots) == 0 {
		return 1
	}
	sum := 0.0
	for _, b := range s.bots {
		sum += b.Strength
	}
	return sum / float64(len(s.bots))
}

// TotalPlayerTroops sums the truncated troop counts of every player tile.
func (s *Session) TotalPlayerTroops() int {
	total := 0
	s.territory.Each(models.OwnerPlayer, func(k Key) {
		if t, err := s.ledger.Get(k); err == nil {
			total += int(t.PlayerTroops)
		}
	})
	return total
}
