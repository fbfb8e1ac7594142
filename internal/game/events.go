package game

import "domination-engine/internal/models"

// EventKind classifies notifications raised by a session.
type EventKind string

const (
	EventCaptured      EventKind = "captured"      // Player took a tile
	EventAttackFailed  EventKind = "attack_failed" // Player attack repelled
	EventReinforced    EventKind = "reinforced"    // Player moved troops between own tiles
	EventTileLost      EventKind = "tile_lost"     // Bot took a player tile
	EventWaveStarted   EventKind = "wave_started"
	EventEscalated     EventKind = "escalated" // Active difficulty tier went up
	EventBotsSpawned   EventKind = "bots_spawned"
	EventBotsPruned    EventKind = "bots_pruned" // Roster shrank after territory loss
	EventGameEnded     EventKind = "game_ended"
	EventCommandDenied EventKind = "command_denied" // Advisory for the player
)

// Event is a one-off notification for renderers and logs.
type Event struct {
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
	Tile    Key       `json:"tile,omitempty"`
	Wave    int       `json:"wave,omitempty"`
	Tier    int       `json:"tier,omitempty"`
	Elapsed float64   `json:"elapsed"`
}

// TileView is the read-only, display-truncated form of a tile.
type TileView struct {
	Key    Key          `json:"key"`
	Row    int          `json:"row"`
	Col    int          `json:"col"`
	Owner  models.Owner `json:"owner"`
	Troops int          `json:"troops"`
	Shield int          `json:"shield"`
}

func viewOf(key Key, t *models.Tile) TileView {
	return TileView{
		Key:    key,
		Row:    t.Row,
		Col:    t.Col,
		Owner:  t.Owner,
		Troops: int(t.Troops()),
		Shield: t.Shield,
	}
}

// Observer is notified synchronously from inside the tick or command that
// caused the change. Implementations must not call back into the session.
type Observer interface {
	TileChanged(TileView)
	EventRaised(Event)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnTileChanged func(TileView)
	OnEvent       func(Event)
}

func (o ObserverFuncs) TileChanged(v TileView) {
	if o.OnTileChanged != nil {
		o.OnTileChanged(v)
	}
}

func (o ObserverFuncs) EventRaised(e Event) {
	if o.OnEvent != nil {
		o.OnEvent(e)
	}
}
