// Package sim plays sessions headlessly on a fixed simulated clock, with a
// scripted player issuing orders between steps.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"domination-engine/internal/game"
	"domination-engine/internal/logging"
	"domination-engine/internal/models"
)

const (
	DefaultStep    = 1.0
	DefaultMaxTime = 1800.0
	progressEvery  = 60.0
)

// Order is one player command issued between simulation steps.
type Order struct {
	From   game.Key
	To     game.Key
	Troops int
}

// Player chooses orders from the current state. It must not mutate s.
type Player interface {
	Orders(s *game.Session) []Order
}

// Config describes one simulated game.
type Config struct {
	Settings  models.Settings
	Step      float64 // Simulated seconds per Advance
	MaxTime   float64 // The run stops here if the game has not ended
	Player    Player  // nil plays no orders
	Logger    zerolog.Logger
	Observers []game.Observer
}

// Report summarizes a run. Result is nil when the time limit came first.
type Report struct {
	SessionID   string          `json:"session_id"`
	Settings    models.Settings `json:"settings"`
	Steps       int             `json:"steps"`
	Orders      int             `json:"orders"`
	Rejected    int             `json:"rejected"`
	Elapsed     float64         `json:"elapsed"`
	Score       int             `json:"score"`
	PlayerTiles int             `json:"player_tiles"`
	BotTiles    int             `json:"bot_tiles"`
	Wave        int             `json:"wave,omitempty"`
	Tier        int             `json:"tier"`
	Result      *game.Result    `json:"result,omitempty"`
}

// Run plays cfg until the game ends, MaxTime is reached or ctx is done. On
// cancellation the partial report is returned with ctx's error.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.MaxTime <= 0 {
		cfg.MaxTime = DefaultMaxTime
	}
	logger := logging.Component(cfg.Logger, "Simulator")

	opts := []game.Option{game.WithLogger(cfg.Logger)}
	for _, o := range cfg.Observers {
		opts = append(opts, game.WithObserver(o))
	}
	s := game.NewSession(cfg.Settings, opts...)
	rep := Report{SessionID: s.ID, Settings: s.Settings()}
	logger = logger.With().Str("session", s.ID).Logger()
	logger.Info().Str("mode", string(rep.Settings.Mode)).Int("difficulty", rep.Settings.Difficulty).Int64("seed", rep.Settings.Seed).Msg("Simulation started")

	nextProgress := progressEvery
	for s.Result() == nil && s.Elapsed() < cfg.MaxTime {
		if err := ctx.Err(); err != nil {
			rep.fill(s)
			return rep, err
		}
		if cfg.Player != nil {
			for _, o := range cfg.Player.Orders(s) {
				rep.Orders++
				if _, err := s.IssueOrder(o.From, o.To, o.Troops); err != nil {
					if !errors.Is(err, game.ErrInvalidCommand) {
						rep.fill(s)
						return rep, fmt.Errorf("order %s->%s: %w", o.From, o.To, err)
					}
					rep.Rejected++
				}
				if s.Result() != nil {
					break
				}
			}
		}
		if s.Result() != nil {
			break
		}
		s.Advance(cfg.Step)
		rep.Steps++

		if s.Elapsed() >= nextProgress {
			nextProgress += progressEvery
			logger.Debug().Float64("elapsed", s.Elapsed()).Int("score", s.Score()).
				Int("player_tiles", s.Territory().Count(models.OwnerPlayer)).
				Int("bot_tiles", s.Territory().Count(models.OwnerBot)).
				Msg("Simulation progress")
		}
	}

	rep.fill(s)
	ev := logger.Info().Float64("elapsed", rep.Elapsed).Int("steps", rep.Steps).Int("score", rep.Score)
	if rep.Result != nil {
		ev = ev.Bool("victory", rep.Result.Victory).Str("reason", rep.Result.Reason)
	}
	ev.Msg("Simulation finished")
	return rep, nil
}

func (r *Report) fill(s *game.Session) {
	r.Elapsed = s.Elapsed()
	r.Score = s.Score()
	r.PlayerTiles = s.Territory().Count(models.OwnerPlayer)
	r.BotTiles = s.Territory().Count(models.OwnerBot)
	r.Tier = s.Tier()
	if r.Settings.Mode == models.ModeDomination {
		r.Wave = s.Wave()
	}
	if res := s.Result(); res != nil {
		cp := *res
		r.Result = &cp
	}
}
