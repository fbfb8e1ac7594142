package game

import "domination-engine/internal/models"

// Snapshot is a value copy of everything a renderer may show. It shares no
// memory with the session.
type Snapshot struct {
	SessionID    string          `json:"session_id"`
	Mode         models.Mode     `json:"mode"`
	Difficulty   int             `json:"difficulty"`
	Tier         int             `json:"tier"`
	Topology     models.Topology `json:"topology"`
	GridSize     int             `json:"grid_size"`
	Generation   int             `json:"generation"`
	Tiles        []TileView      `json:"tiles"` // Row-major
	PlayerTiles  int             `json:"player_tiles"`
	BotTiles     int             `json:"bot_tiles"`
	NeutralTiles int             `json:"neutral_tiles"`
	PlayerTroops int             `json:"player_troops"`
	BotCount     int             `json:"bot_count"`
	Score        int             `json:"score"`
	Elapsed      float64         `json:"elapsed"`
	Wave         int             `json:"wave,omitempty"`
	NextWaveIn   float64         `json:"next_wave_in,omitempty"`
	Selected     Key             `json:"selected,omitempty"`
	Active       bool            `json:"active"`
	Paused       bool            `json:"paused"`
	Ended        bool            `json:"ended"`
	Result       *Result         `json:"result,omitempty"`
}

// Tile returns the view at (row, col) or false when out of range.
func (s Snapshot) Tile(row, col int) (TileView, bool) {
	if row < 0 || col < 0 || row >= s.GridSize || col >= s.GridSize {
		return TileView{}, false
	}
	i := row*s.GridSize + col
	if i >= len(s.Tiles) {
		return TileView{}, false
	}
	return s.Tiles[i], true
}

// Snapshot captures the current observable state.
func (s *Session) Snapshot() Snapshot {
	keys := s.grid.Keys()
	tiles := make([]TileView, 0, len(keys))
	for _, k := range keys {
		if t, err := s.ledger.Get(k); err == nil {
			tiles = append(tiles, viewOf(k, t))
		}
	}
	snap := Snapshot{
		SessionID:    s.ID,
		Mode:         s.settings.Mode,
		Difficulty:   s.preset.Level,
		Tier:         s.tier,
		Topology:     s.grid.Policy.Name(),
		GridSize:     s.grid.Size,
		Generation:   s.grid.Generation,
		Tiles:        tiles,
		PlayerTiles:  s.territory.Count(models.OwnerPlayer),
		BotTiles:     s.territory.Count(models.OwnerBot),
		NeutralTiles: s.territory.Count(models.OwnerNeutral),
		PlayerTroops: s.TotalPlayerTroops(),
		BotCount:     len(s.bots),
		Score:        s.score,
		Elapsed:      s.elapsed,
		Selected:     s.selected,
		Active:       s.active,
		Paused:       s.paused,
		Ended:        s.result != nil,
	}
	if s.settings.Mode == models.ModeDomination {
		snap.Wave = s.wave
		snap.NextWaveIn = s.NextWaveIn()
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}
