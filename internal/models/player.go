package models

import "time"

// LeaderboardEntry is the record an external store keeps per finished session.
type LeaderboardEntry struct {
	Player       string    `json:"player"`
	Score        int       `json:"score"`
	Mode         string    `json:"mode"`
	Date         string    `json:"date"`         // RFC 3339, for display
	ElapsedTime  float64   `json:"elapsed_time"` // Seconds
	TilesHeld    int       `json:"tiles_held"`
	Difficulty   int       `json:"difficulty"`
	BotsDefeated int       `json:"bots_defeated"`
	Wave         int       `json:"wave"`
	Victory      bool      `json:"victory"`
	Timestamp    time.Time `json:"timestamp"`
}
