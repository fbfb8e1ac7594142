package game

// Outcome is the result of one resolved attack.
type Outcome struct {
	AttackerWins bool
	Defense      int // Defender troops plus shield
	Survivors    int // Troops left on the tile after the battle, for whichever side holds it
}

// Resolve applies the difference-based combat law. It is a pure function:
// the same inputs always give the same outcome.
//
// When the defender holds, the shield is subtracted a second time from the
// survivor count.
func Resolve(attackTroops, defenderTroops, shield int) Outcome {
	if attackTroops < 0 {
		attackTroops = 0
	}
	if defenderTroops < 0 {
		defenderTroops = 0
	}
	if shield < 0 {
		shield = 0
	}
	defense := defenderTroops + shield
	if attackTroops > defense {
		return Outcome{AttackerWins: true, Defense: defense, Survivors: attackTroops - defense}
	}
	return Outcome{Defense: defense, Survivors: max(1, defense-attackTroops-shield)}
}

// Score awards for captures, multiplied by the session difficulty.
const (
	NeutralCaptureScore = 25
	BotCaptureScore     = 100
	CaptureBonus        = 50 // Any transfer to the player
)
