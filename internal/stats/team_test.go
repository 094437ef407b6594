package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/cricket"
)

func winner(id string) *string { return &id }

func TestFoldTeamResult(t *testing.T) {
	var ts cricket.TeamStats
	FoldTeamResult(&ts, "t1", cricket.Result{ResultType: cricket.ResultNormal, WinnerTeamID: winner("t1")})
	FoldTeamResult(&ts, "t1", cricket.Result{ResultType: cricket.ResultNormal, WinnerTeamID: winner("t2")})
	FoldTeamResult(&ts, "t1", cricket.Result{ResultType: cricket.ResultTie, WinnerTeamID: nil})
	FoldTeamResult(&ts, "t1", cricket.Result{ResultType: cricket.ResultNormal, WinnerTeamID: nil})

	assert.Equal(t, 4, ts.MatchesPlayed)
	assert.Equal(t, 1, ts.Wins)
	assert.Equal(t, 1, ts.Losses)
	assert.Equal(t, 2, ts.Draws, "unresolved winners count as neither win nor loss")
	assert.InDelta(t, 25.0, ts.WinPercentage, 0.001)
	assert.GreaterOrEqual(t, ts.WinPercentage, 0.0)
	assert.LessOrEqual(t, ts.WinPercentage, 100.0)
}

func TestFoldRoster(t *testing.T) {
	date := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	team := cricket.Team{TeamID: "t1"}
	summary := cricket.PlayerSummary{PlayerID: "p1", Name: "A Kumar", Role: cricket.RoleBatsman}

	FoldRoster(&team, summary, cricket.PlayerPerformance{
		Batting: &cricket.BattingEntry{Runs: 40},
		Bowling: &cricket.BowlingEntry{Wickets: 2},
	}, date)
	FoldRoster(&team, summary, cricket.PlayerPerformance{
		Batting: &cricket.BattingEntry{Runs: 15},
	}, date.AddDate(0, 0, 7))

	require.Len(t, team.Players, 1, "same player folds into one roster entry")
	entry := team.Players[0]
	assert.Equal(t, "A Kumar", entry.Name)
	assert.Equal(t, 2, entry.MatchesPlayed)
	assert.Equal(t, 55, entry.Runs)
	assert.Equal(t, 2, entry.Wickets)
}

func TestFoldTeamMatchCap(t *testing.T) {
	team := cricket.Team{TeamID: "t1"}
	for i := 0; i < 12; i++ {
		FoldTeamMatch(&team, cricket.MatchRef{MatchID: string(rune('a' + i))})
	}
	require.Len(t, team.RecentMatches, 10)
	assert.Equal(t, "l", team.RecentMatches[0].MatchID)
}

func TestResets(t *testing.T) {
	team := cricket.Team{TeamID: "t1"}
	team.TeamStats.Wins = 3
	team.Players = []cricket.TeamPlayer{{}}
	team.RecentMatches = []cricket.MatchRef{{MatchID: "m1"}}

	ResetTeamStats(&team)
	ResetRoster(&team)

	assert.Zero(t, team.TeamStats.Wins)
	assert.Empty(t, team.Players)
	assert.Empty(t, team.RecentMatches)
}
