package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/nsf/termbox-go"

	"domination-engine/internal/game"
	"domination-engine/internal/models"
)

const (
	cellWidth = 5
	gridTop   = 2
	gridLeft  = 1
	helpText  = "arrows move  enter/space click  +/- troops  h half  m max  p pause  r restart  esc clear/quit"
)

// TermboxUI draws snapshots of a session and feeds key presses to a Client.
type TermboxUI struct {
	client *Client
}

func NewTermboxUI(c *Client) *TermboxUI {
	return &TermboxUI{client: c}
}

// Init takes over the terminal. Esc is read as a key, not an Alt prefix.
func (ui *TermboxUI) Init() error {
	if err := termbox.Init(); err != nil {
		return err
	}
	termbox.SetInputMode(termbox.InputEsc)
	return nil
}

func (ui *TermboxUI) Close() {
	termbox.Close()
}

// DisplayStaticText writes text starting at (x, y). Callers flush.
func (ui *TermboxUI) DisplayStaticText(x, y int, text string, fg, bg termbox.Attribute) {
	for i, r := range []rune(text) {
		termbox.SetCell(x+i, y, r, fg, bg)
	}
}

// Render draws the whole screen from a fresh snapshot.
func (ui *TermboxUI) Render() {
	snap := ui.client.game.Snapshot()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	ui.DisplayStaticText(gridLeft, 0, StatusLine(snap), termbox.ColorWhite|termbox.AttrBold, termbox.ColorDefault)

	for _, v := range snap.Tiles {
		x := gridLeft + v.Col*cellWidth
		if snap.Topology == models.TopologyHex && v.Row%2 == 1 {
			x += cellWidth / 2
		}
		fg, bg := TileColors(v, v.Key == snap.Selected)
		label := TileLabel(v, v.Row == ui.client.cursor.Row && v.Col == ui.client.cursor.Col)
		ui.DisplayStaticText(x, gridTop+v.Row, label, fg, bg)
	}

	y := gridTop + snap.GridSize + 1
	ui.DisplayStaticText(gridLeft, y, fmt.Sprintf("Troops per order: %d   Cursor: %s", ui.client.troops, ui.client.cursor.Key()), termbox.ColorYellow, termbox.ColorDefault)
	y++
	if ui.client.status != "" {
		ui.DisplayStaticText(gridLeft, y, ui.client.status, termbox.ColorWhite, termbox.ColorDefault)
	}
	y += 2

	if snap.Result != nil {
		for _, line := range ResultLines(*snap.Result) {
			ui.DisplayStaticText(gridLeft, y, line, termbox.ColorWhite|termbox.AttrBold, termbox.ColorDefault)
			y++
		}
		y++
	}

	for _, e := range ui.client.events.Recent() {
		ui.DisplayStaticText(gridLeft, y, fmt.Sprintf("[%s] %s", clock(e.Elapsed), e.Message), eventColor(e.Kind), termbox.ColorDefault)
		y++
	}
	ui.DisplayStaticText(gridLeft, y+1, helpText, termbox.ColorDefault, termbox.ColorDefault)
	termbox.Flush()
}

// Run polls input and redraws every refresh until the player quits or input
// fails. The polling goroutine has exited by the time Run returns.
func (ui *TermboxUI) Run(refresh time.Duration) error {
	pump := newEventPump(termbox.PollEvent, termbox.Interrupt)
	go pump.run()
	defer pump.stop()
	events := pump.events

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	ui.Render()
	for {
		select {
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				switch ui.client.HandleKey(ev) {
				case ActionQuit:
					return nil
				case ActionRedraw:
					ui.Render()
				}
			case termbox.EventResize:
				ui.Render()
			case termbox.EventError:
				return fmt.Errorf("termbox: %w", ev.Err)
			}
		case <-ticker.C:
			ui.Render()
		}
	}
}

// eventPump moves blocking PollEvent results onto a channel. stop interrupts
// the pending poll and waits for the goroutine.
type eventPump struct {
	poll      func() termbox.Event
	interrupt func()
	events    chan termbox.Event
	done      chan struct{}
	exited    chan struct{}
}

func newEventPump(poll func() termbox.Event, interrupt func()) *eventPump {
	return &eventPump{
		poll:      poll,
		interrupt: interrupt,
		events:    make(chan termbox.Event),
		done:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
}

// run returns only on EventInterrupt, so a poll is never left blocked on a
// closed terminal.
func (p *eventPump) run() {
	defer close(p.exited)
	for {
		ev := p.poll()
		if ev.Type == termbox.EventInterrupt {
			return
		}
		select {
		case p.events <- ev:
		case <-p.done:
		}
	}
}

func (p *eventPump) stop() {
	close(p.done)
	p.interrupt()
	<-p.exited
}

// StatusLine summarizes the session in one line.
func StatusLine(snap game.Snapshot) string {
	parts := []string{
		snap.Mode.DisplayName(),
		fmt.Sprintf("Difficulty %d", snap.Difficulty),
	}
	if snap.Tier != snap.Difficulty {
		parts[1] += fmt.Sprintf(" (tier %d)", snap.Tier)
	}
	parts = append(parts,
		fmt.Sprintf("Tiles %d", snap.PlayerTiles),
		fmt.Sprintf("Troops %d", snap.PlayerTroops),
		fmt.Sprintf("Bots %d", snap.BotCount),
		fmt.Sprintf("Score %d", snap.Score),
		clock(snap.Elapsed),
	)
	if snap.Mode == models.ModeDomination {
		parts = append(parts, fmt.Sprintf("Wave %d, next in %s", snap.Wave, clock(snap.NextWaveIn)))
	}
	if snap.Paused {
		parts = append(parts, "PAUSED")
	}
	return strings.Join(parts, " | ")
}

// TileLabel renders a tile in a fixed-width cell. Bracketed under the cursor.
func TileLabel(v game.TileView, cursor bool) string {
	body := fmt.Sprintf("%3d", v.Troops)
	if cursor {
		return "[" + body + "]"
	}
	return " " + body + " "
}

// TileColors picks the owner background. Shielded tiles are underlined and the
// selected tile is reversed.
func TileColors(v game.TileView, selected bool) (fg, bg termbox.Attribute) {
	switch v.Owner {
	case models.OwnerPlayer:
		fg, bg = termbox.ColorWhite, termbox.ColorBlue
	case models.OwnerBot:
		fg, bg = termbox.ColorWhite, termbox.ColorRed
	default:
		fg, bg = termbox.ColorDefault, termbox.ColorDefault
	}
	if v.Shield > 0 {
		fg |= termbox.AttrUnderline
	}
	if selected {
		fg |= termbox.AttrBold | termbox.AttrReverse
	}
	return fg, bg
}

// ResultLines is the end-of-game summary with the score breakdown.
func ResultLines(r game.Result) []string {
	title := "DEFEAT"
	if r.Victory {
		title = "VICTORY"
	}
	b := r.Breakdown
	lines := []string{
		fmt.Sprintf("%s: %s", title, r.Reason),
		fmt.Sprintf("Base %d  Time %d  Tiles %d  Troops %d  Bots %d  Wave %d", b.Base, b.Time, b.Tiles, b.Troops, b.Bots, b.Wave),
		fmt.Sprintf("x%.1f multiplier%s = %d", b.Multiplier, victorySuffix(b.Victory), b.Final),
		"Press r to play again or esc to quit",
	}
	return lines
}

func victorySuffix(v bool) string {
	if v {
		return " x1.5 victory"
	}
	return ""
}

func eventColor(k game.EventKind) termbox.Attribute {
	switch k {
	case game.EventTileLost, game.EventAttackFailed, game.EventCommandDenied:
		return termbox.ColorRed
	case game.EventCaptured, game.EventReinforced:
		return termbox.ColorGreen
	case game.EventWaveStarted, game.EventEscalated, game.EventBotsSpawned:
		return termbox.ColorYellow
	}
	return termbox.ColorDefault
}

// clock formats seconds as mm:ss.
func clock(seconds float64) string {
	s := max(int(seconds), 0)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
