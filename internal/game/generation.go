package game

import (
	"github.com/rs/zerolog"

	"domination-engine/internal/logging"
	"domination-engine/internal/models"
)

// ProductionManager applies passive troop growth to owned tiles.
type ProductionManager struct {
	logger zerolog.Logger
}

func NewProductionManager(logger zerolog.Logger) *ProductionManager {
	return &ProductionManager{
		logger: logging.Component(logger, "ProductionManager"),
	}
}

// Production describes one generation step.
type Production struct {
	Rate            float64 // Player troops per tile per second
	BotFactor       float64 // Bot tiles grow at Rate × BotFactor × FactionStrength
	FactionStrength float64
	DeltaTime       float64 // Seconds
}

// Process grows every player and bot tile below the cap; neutral tiles never
// grow. Stored counts keep their fractional part. changed is called for tiles
// whose displayed (truncated) count moved.
func (pm *ProductionManager) Process(l *Ledger, t *Territory, p Production, changed func(Key, *models.Tile)) {
	if p.DeltaTime <= 0 {
		return
	}
	playerGain := p.Rate * p.DeltaTime
	botGain := playerGain * p.BotFactor * p.FactionStrength

	grown := 0
	grow := func(owner models.Owner, gain float64) {
		t.Each(owner, func(k Key) {
			tile, err := l.Get(k)
			if err != nil {
				pm.logger.Warn().Err(err).Str("tile", string(k)).Msg("Owned tile missing from ledger")
				return
			}
			cur := tile.TroopsOf(owner)
			if cur >= l.MaxTroops() {
				return
			}
			next := cur + gain
			if next > l.MaxTroops() {
				next = l.MaxTroops()
			}
			tile.SetTroopsOf(owner, next)
			grown++
			if changed != nil && int(next) != int(cur) {
				changed(k, tile)
			}
		})
	}
	grow(models.OwnerPlayer, playerGain)
	grow(models.OwnerBot, botGain)

	pm.logger.Debug().
		Float64("dt", p.DeltaTime).
		Float64("player_gain", playerGain).
		Float64("bot_gain", botGain).
		Int("tiles_grown", grown).
		Msg("Production applied")
}
