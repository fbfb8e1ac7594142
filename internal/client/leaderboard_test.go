package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination-engine/internal/models"
	"domination-engine/internal/persistence"
)

func TestWriteLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeaderboard(&buf, persistence.PeriodWeekly, nil))
	assert.Equal(t, "Leaderboard: This week\nNo games recorded yet\n", buf.String())

	buf.Reset()
	entries := []models.LeaderboardEntry{
		{Player: "Ada", Score: 7426, Mode: "Domination", Difficulty: 3, TilesHeld: 45, Wave: 2, ElapsedTime: 612, Victory: true},
		{Player: "Grace", Score: 2701, Mode: "1v1 Duel", Difficulty: 2, TilesHeld: 12, ElapsedTime: 95},
	}
	require.NoError(t, WriteLeaderboard(&buf, persistence.PeriodAllTime, entries))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Leaderboard: All time", lines[0])
	assert.Regexp(t, `^1\s+Ada\s+7426\s+Domination\s+3\s+45\s+2\s+10:12\s+Victory$`, lines[2])
	assert.Regexp(t, `^2\s+Grace\s+2701\s+1v1 Duel\s+2\s+12\s+-\s+01:35\s+Defeat$`, lines[3])
}
