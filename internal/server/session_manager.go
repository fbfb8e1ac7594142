package server

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"domination-engine/internal/game"
	"domination-engine/internal/logging"
	"domination-engine/internal/models"
)

// GameSessionManager tracks every live game session by ID.
type GameSessionManager struct {
	sessions map[string]*GameSession
	mu       sync.RWMutex
	base     zerolog.Logger
	logger   zerolog.Logger
}

func NewGameSessionManager(logger zerolog.Logger) *GameSessionManager {
	return &GameSessionManager{
		sessions: make(map[string]*GameSession),
		base:     logger,
		logger:   logging.Component(logger, "GameSessionManager"),
	}
}

// CreateSession builds and starts a session with a fresh ID. The session is
// tracked whenever it starts, so a Restart after ReleaseFinished tracks it
// again.
func (gsm *GameSessionManager) CreateSession(settings models.Settings, opts ...RunnerOption) *GameSession {
	id := uuid.NewString()
	opts = append([]RunnerOption{WithRunnerLogger(gsm.base)}, opts...)
	opts = append(opts, withStartHandler(gsm.track))
	session := NewGameSession(id, settings, opts...)

	gsm.logger.Info().Str("session", id).Str("player", session.Settings().PlayerName).Msg("Game session created")
	session.Start()
	return session
}

func (gsm *GameSessionManager) track(session *GameSession) {
	gsm.mu.Lock()
	defer gsm.mu.Unlock()
	gsm.sessions[session.ID] = session
}

// ReleaseFinished forgets a session whose loop has stopped. A running session
// stays tracked.
func (gsm *GameSessionManager) ReleaseFinished(gameID string) bool {
	gsm.mu.Lock()
	defer gsm.mu.Unlock()
	session, ok := gsm.sessions[gameID]
	if !ok || session.Running() {
		return false
	}
	delete(gsm.sessions, gameID)
	gsm.logger.Debug().Str("session", gameID).Msg("Finished game session released")
	return true
}

// GetSession returns the session for gameID.
func (gsm *GameSessionManager) GetSession(gameID string) (*GameSession, error) {
	gsm.mu.RLock()
	defer gsm.mu.RUnlock()
	session, ok := gsm.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", gameID, game.ErrNotFound)
	}
	return session, nil
}

// RemoveSession stops the session and forgets it. Unknown IDs are ignored.
func (gsm *GameSessionManager) RemoveSession(gameID string) {
	gsm.mu.Lock()
	session, ok := gsm.sessions[gameID]
	delete(gsm.sessions, gameID)
	gsm.mu.Unlock()
	if !ok {
		return
	}
	session.Stop()
	gsm.logger.Info().Str("session", gameID).Msg("Game session removed")
}

// IDs lists the live session IDs in sorted order.
func (gsm *GameSessionManager) IDs() []string {
	gsm.mu.RLock()
	defer gsm.mu.RUnlock()
	ids := make([]string, 0, len(gsm.sessions))
	for id := range gsm.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StopAll stops and removes every session.
func (gsm *GameSessionManager) StopAll() {
	for _, id := range gsm.IDs() {
		gsm.RemoveSession(id)
	}
}
