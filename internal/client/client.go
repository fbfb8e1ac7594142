package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nsf/termbox-go"
	"github.com/rs/zerolog"

	"domination-engine/internal/game"
	"domination-engine/internal/logging"
	"domination-engine/internal/models"
)

const (
	DefaultTroops = models.DefaultTroopAmount
	troopStep     = 5
	eventHistory  = 6
)

// Game is the part of a running session the terminal client drives.
// *server.GameSession satisfies it.
type Game interface {
	Snapshot() game.Snapshot
	ClickTile(k game.Key, troops int) (*game.OrderResult, error)
	ClearSelection()
	TogglePause() bool
	Restart(sameSettings bool, next *models.Settings)
}

// Action tells the UI loop what to do after a key press.
type Action int

const (
	ActionNone Action = iota
	ActionRedraw
	ActionQuit
)

// Client holds the per-terminal input state: a cursor over the grid and the
// number of troops sent per order.
type Client struct {
	game   Game
	events *EventLog
	logger zerolog.Logger

	cursor game.Coord
	troops int
	status string
}

// NewClient starts with the cursor on 0-0 and DefaultTroops per order. A nil
// events gets a private log.
func NewClient(g Game, events *EventLog, logger zerolog.Logger) *Client {
	if events == nil {
		events = NewEventLog(eventHistory)
	}
	return &Client{
		game:   g,
		events: events,
		logger: logging.Component(logger, "Client"),
		troops: DefaultTroops,
	}
}

func (c *Client) Cursor() game.Coord { return c.cursor }

// Troops is the amount sent by the next order.
func (c *Client) Troops() int { return c.troops }

// SetTroops restores a remembered troop amount. Amounts below one are ignored.
func (c *Client) SetTroops(n int) {
	if n >= 1 {
		c.troops = n
	}
}

// Status is the feedback line from the last command.
func (c *Client) Status() string { return c.status }

func (c *Client) Events() *EventLog { return c.events }

// HandleKey applies one key event and reports whether the loop should
// redraw or quit.
func (c *Client) HandleKey(ev termbox.Event) Action {
	if ev.Type != termbox.EventKey {
		return ActionNone
	}
	snap := c.game.Snapshot()

	switch ev.Key {
	case termbox.KeyCtrlC:
		return ActionQuit
	case termbox.KeyEsc:
		if snap.Selected == "" {
			return ActionQuit
		}
		c.game.ClearSelection()
		c.status = "Selection cleared"
		return ActionRedraw
	case termbox.KeyArrowUp:
		c.move(snap, -1, 0)
		return ActionRedraw
	case termbox.KeyArrowDown:
		c.move(snap, 1, 0)
		return ActionRedraw
	case termbox.KeyArrowLeft:
		c.move(snap, 0, -1)
		return ActionRedraw
	case termbox.KeyArrowRight:
		c.move(snap, 0, 1)
		return ActionRedraw
	case termbox.KeyEnter, termbox.KeySpace:
		c.click()
		return ActionRedraw
	}

	switch ev.Ch {
	case 'q':
		return ActionQuit
	case '+', '=':
		c.troops += troopStep
	case '-':
		c.troops = max(1, c.troops-troopStep)
	case 'h':
		c.fromSelection(snap, func(n int) int { return max(1, n/2) })
	case 'm':
		c.fromSelection(snap, func(n int) int { return max(1, n) })
	case 'p':
		if c.game.TogglePause() {
			c.status = "Paused"
		} else {
			c.status = "Resumed"
		}
	case 'r':
		c.game.Restart(true, nil)
		c.cursor = game.Coord{}
		c.events.Reset()
		c.status = "New game started"
	default:
		return ActionNone
	}
	return ActionRedraw
}

// move shifts the cursor, clamped to the current grid.
func (c *Client) move(snap game.Snapshot, dRow, dCol int) {
	limit := max(snap.GridSize-1, 0)
	c.cursor.Row = min(max(c.cursor.Row+dRow, 0), limit)
	c.cursor.Col = min(max(c.cursor.Col+dCol, 0), limit)
}

func (c *Client) fromSelection(snap game.Snapshot, amount func(int) int) {
	sel, ok := selectedTile(snap)
	if !ok {
		c.status = "Select one of your tiles first"
		return
	}
	c.troops = amount(sel.Troops)
}

func (c *Client) click() {
	key := c.cursor.Key()
	res, err := c.game.ClickTile(key, c.troops)
	var cmdErr *game.CommandError
	switch {
	case errors.As(err, &cmdErr):
		c.status = cmdErr.Message
	case errors.Is(err, game.ErrPaused):
		c.status = "Game is paused, press p to resume"
	case errors.Is(err, game.ErrSessionEnded):
		c.status = "Game over, press r to play again"
	case err != nil:
		c.logger.Warn().Err(err).Str("tile", string(key)).Msg("Click failed")
		c.status = fmt.Sprintf("Tile %s is not available", key)
	case res != nil:
		c.status = res.Message
	default:
		c.status = fmt.Sprintf("Selected %s", key)
	}
}

func selectedTile(snap game.Snapshot) (game.TileView, bool) {
	if snap.Selected == "" {
		return game.TileView{}, false
	}
	co, err := game.ParseKey(snap.Selected)
	if err != nil {
		return game.TileView{}, false
	}
	return snap.Tile(co.Row, co.Col)
}

// EventLog keeps the most recent session events for display. Sessions raise
// events from their tick goroutine, so access is locked.
type EventLog struct {
	mu    sync.Mutex
	size  int
	lines []game.Event
}

// NewEventLog keeps the last size events, at least one.
func NewEventLog(size int) *EventLog {
	return &EventLog{size: max(size, 1)}
}

func (l *EventLog) TileChanged(game.TileView) {}

func (l *EventLog) EventRaised(e game.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, e)
	if len(l.lines) > l.size {
		l.lines = l.lines[len(l.lines)-l.size:]
	}
}

// Recent returns the kept events, oldest first.
func (l *EventLog) Recent() []game.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]game.Event, len(l.lines))
	copy(out, l.lines)
	return out
}

// Reset forgets every event, used when a new game starts.
func (l *EventLog) Reset() {
	l.mu.Lock()
	l.lines = nil
	l.mu.Unlock()
}
