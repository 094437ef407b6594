package stats

import (
	"time"

	"github.com/wagonwheel/crickstats/internal/cricket"
)

// FoldTeamResult folds one match outcome into a team's aggregate record.
// An unresolved winner on a normal result counts as neither win nor loss.
func FoldTeamResult(ts *cricket.TeamStats, teamID string, result cricket.Result) {
	ts.MatchesPlayed++
	switch {
	case result.WinnerTeamID != nil && *result.WinnerTeamID == teamID:
		ts.Wins++
	case result.WinnerTeamID != nil:
		ts.Losses++
	default:
		ts.Draws++
	}
	if ts.MatchesPlayed > 0 {
		ts.WinPercentage = float64(ts.Wins) / float64(ts.MatchesPlayed) * 100
	} else {
		ts.WinPercentage = 0
	}
}

// FoldRoster folds one match performance into a team's roster entry,
// appending the player on first appearance.
func FoldRoster(team *cricket.Team, summary cricket.PlayerSummary, perf cricket.PlayerPerformance, date time.Time) {
	var entry *cricket.TeamPlayer
	for i := range team.Players {
		if team.Players[i].PlayerID == summary.PlayerID {
			entry = &team.Players[i]
			break
		}
	}
	if entry == nil {
		team.Players = append(team.Players, cricket.TeamPlayer{PlayerSummary: summary})
		entry = &team.Players[len(team.Players)-1]
	}
	entry.MatchesPlayed++
	if perf.Batting != nil {
		entry.Runs += perf.Batting.Runs
	}
	if perf.Bowling != nil {
		entry.Wickets += perf.Bowling.Wickets
	}
	team.UpdatedAt = date
}

// FoldTeamMatch maintains the team's bounded recent-match list.
func FoldTeamMatch(team *cricket.Team, ref cricket.MatchRef) {
	team.RecentMatches = append([]cricket.MatchRef{ref}, team.RecentMatches...)
	if len(team.RecentMatches) > recentMatchesCap {
		team.RecentMatches = team.RecentMatches[:recentMatchesCap]
	}
}

// ResetTeamStats zeroes a team's replay-derived state ahead of a full rebuild.
func ResetTeamStats(team *cricket.Team) {
	team.TeamStats = cricket.TeamStats{}
	team.RecentMatches = nil
}

// ResetRoster clears the roster ahead of a full rebuild.
func ResetRoster(team *cricket.Team) {
	team.Players = nil
}
