package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"domination-engine/internal/game"
	"domination-engine/internal/logging"
	"domination-engine/internal/models"
	"domination-engine/internal/persistence"
)

const saveTimeout = 5 * time.Second

// Server hosts local game sessions and records finished games to the
// leaderboard store.
type Server struct {
	sessionManager *GameSessionManager
	store          persistence.Store
	logger         zerolog.Logger
}

// NewServer wires a session manager to store. store may be nil, in which case
// results are only logged.
func NewServer(store persistence.Store, logger zerolog.Logger) *Server {
	return &Server{
		sessionManager: NewGameSessionManager(logger),
		store:          store,
		logger:         logging.Component(logger, "Server"),
	}
}

func (s *Server) Sessions() *GameSessionManager { return s.sessionManager }

// Play starts a new session. Its result is saved when the game ends, and again
// for every game after a Restart.
func (s *Server) Play(settings models.Settings, opts ...RunnerOption) *GameSession {
	opts = append(opts, WithEndHandler(s.record))
	return s.sessionManager.CreateSession(settings, opts...)
}

func (s *Server) record(id string, result game.Result) {
	defer s.sessionManager.ReleaseFinished(id)
	log := s.logger.With().Str("session", id).Logger()
	if s.store == nil {
		log.Info().Int("score", result.Entry.Score).Msg("No leaderboard store configured, result not saved")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, result.Entry); err != nil {
		log.Error().Err(err).Msg("Failed to save leaderboard entry")
		return
	}
	log.Info().Str("player", result.Entry.Player).Int("score", result.Entry.Score).Bool("victory", result.Victory).Msg("Leaderboard entry saved")
}

// Leaderboard returns the ranked, filtered top entries for period.
func (s *Server) Leaderboard(ctx context.Context, period persistence.Period) ([]models.LeaderboardEntry, error) {
	if s.store == nil {
		return nil, nil
	}
	return persistence.Leaderboard(ctx, s.store, period, time.Now())
}

// Stop halts every session.
func (s *Server) Stop() {
	s.logger.Info().Msg("Stopping server")
	s.sessionManager.StopAll()
}
