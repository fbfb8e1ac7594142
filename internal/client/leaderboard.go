package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	"domination-engine/internal/models"
	"domination-engine/internal/persistence"
)

var periodTitles = map[persistence.Period]string{
	persistence.PeriodDaily:   "Today",
	persistence.PeriodWeekly:  "This week",
	persistence.PeriodAllTime: "All time",
}

// WriteLeaderboard prints ranked entries as an aligned table.
func WriteLeaderboard(w io.Writer, period persistence.Period, entries []models.LeaderboardEntry) error {
	if _, err := fmt.Fprintf(w, "Leaderboard: %s\n", periodTitles[period]); err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No games recorded yet")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPlayer\tScore\tMode\tDifficulty\tTiles\tWave\tTime\tResult")
	for i, e := range entries {
		result := "Defeat"
		if e.Victory {
			result = "Victory"
		}
		wave := "-"
		if e.Mode == models.ModeDomination.DisplayName() {
			wave = fmt.Sprint(e.Wave)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%d\t%s\t%s\t%s\n",
			i+1, e.Player, e.Score, e.Mode, e.Difficulty, e.TilesHeld, wave, clock(e.ElapsedTime), result)
	}
	return tw.Flush()
}
