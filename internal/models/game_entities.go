package models

// Owner is the control state of a tile. Exactly one owner class holds a tile at a time.
type Owner string

const (
	OwnerPlayer  Owner = "player"
	OwnerBot     Owner = "bot"
	OwnerNeutral Owner = "neutral"
)

// Valid reports whether o is one of the three owner classes.
func (o Owner) Valid() bool {
	switch o {
	case OwnerPlayer, OwnerBot, OwnerNeutral:
		return true
	}
	return false
}

// Tile is the per-cell troop record. Only the counter matching Owner is live;
// the other two are cleared whenever ownership changes.
type Tile struct {
	Row           int     `json:"row"`
	Col           int     `json:"col"`
	Owner         Owner   `json:"owner"`
	PlayerTroops  float64 `json:"player_troops"`
	BotTroops     float64 `json:"bot_troops"`
	NeutralTroops float64 `json:"neutral_troops"`
	Shield        int     `json:"shield"` // Flat defense bonus added when this tile defends
}

// Troops returns the live counter for the tile's current owner.
func (t *Tile) Troops() float64 {
	return t.TroopsOf(t.Owner)
}

// TroopsOf returns the counter for a specific owner class.
func (t *Tile) TroopsOf(o Owner) float64 {
	switch o {
	case OwnerPlayer:
		return t.PlayerTroops
	case OwnerBot:
		return t.BotTroops
	default:
		return t.NeutralTroops
	}
}

// SetTroopsOf writes the counter for an owner class. Negative values are stored as 0.
func (t *Tile) SetTroopsOf(o Owner, v float64) {
	if v < 0 {
		v = 0
	}
	switch o {
	case OwnerPlayer:
		t.PlayerTroops = v
	case OwnerBot:
		t.BotTroops = v
	default:
		t.NeutralTroops = v
	}
}

// ClearStale zeroes every counter except the one belonging to keep.
func (t *Tile) ClearStale(keep Owner) {
	if keep != OwnerPlayer {
		t.PlayerTroops = 0
	}
	if keep != OwnerBot {
		t.BotTroops = 0
	}
	if keep != OwnerNeutral {
		t.NeutralTroops = 0
	}
}

// Bot is one member of the hostile AI faction. Bots do not own tiles; the
// faction as a whole controls every bot-owned tile.
type Bot struct {
	ID           string  `json:"id"`
	Strength     float64 `json:"strength"`     // Scales faction troop production
	Intelligence int     `json:"intelligence"` // Exposed to target policies as a weighting factor
	Aggression   float64 `json:"aggression"`   // Probability of acting in a given AI pass
}
