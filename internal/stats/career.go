// Package stats folds per-match performance data into cumulative career and
// team aggregates.
//
// Folds are additive and NOT idempotent: folding the same match twice
// double-counts every counter. The orchestrator guarantees each match is
// folded at most once per full rebuild by zeroing aggregates before a
// replay; callers must never re-fold a possibly-already-applied match.
package stats

import (
	"time"

	"github.com/wagonwheel/crickstats/internal/cricket"
)

const (
	recentMatchesCap = 10
	recentTeamsCap   = 5
)

// FoldBatting accumulates one innings' batting figures into the career block
// and recomputes the derived fields.
func FoldBatting(b *cricket.BattingStats, e cricket.BattingEntry) {
	b.MatchesPlayed++
	b.Runs += e.Runs
	b.Balls += e.Balls
	b.Fours += e.Fours
	b.Sixes += e.Sixes
	if !e.Dismissed {
		b.NotOuts++
	}
	if e.Runs > b.HighestScore {
		b.HighestScore = e.Runs
	}
	switch {
	case e.Runs >= 100:
		b.Centuries++
	case e.Runs >= 50:
		b.Fifties++
	}
	if e.Runs == 0 && e.Dismissed {
		b.Ducks++
	}
	recomputeBatting(b)
}

// recomputeBatting derives average and strike rate from the counters. When
// every innings is a not-out the average is defined as total runs, the
// conventional cricket-statistics treatment.
func recomputeBatting(b *cricket.BattingStats) {
	dismissals := b.MatchesPlayed - b.NotOuts
	if dismissals > 0 {
		b.Average = float64(b.Runs) / float64(dismissals)
	} else {
		b.Average = float64(b.Runs)
	}
	if b.Balls > 0 {
		b.StrikeRate = float64(b.Runs) / float64(b.Balls) * 100
	} else {
		b.StrikeRate = 0
	}
}

// FoldBowling accumulates one innings' bowling figures and recomputes the
// derived fields, including the best-bowling comparison.
func FoldBowling(b *cricket.BowlingStats, e cricket.BowlingEntry) {
	first := b.MatchesPlayed == 0
	b.MatchesPlayed++
	b.Wickets += e.Wickets
	b.RunsConceded += e.Runs
	b.OversBowled += e.Overs
	b.Maidens += e.Maidens
	if e.Wickets >= 5 {
		b.FiveWicketHauls++
	}
	// The first folded figure seeds BestBowling unconditionally; the zero
	// value would otherwise beat any real wicketless figure on runs.
	figure := cricket.BowlingFigure{Wickets: e.Wickets, Runs: e.Runs}
	if first || BetterBowling(figure, b.BestBowling) {
		b.BestBowling = figure
	}
	recomputeBowling(b)
}

func recomputeBowling(b *cricket.BowlingStats) {
	if b.OversBowled > 0 {
		b.Economy = float64(b.RunsConceded) / b.OversBowled
	} else {
		b.Economy = 0
	}
	if b.Wickets > 0 {
		b.Average = float64(b.RunsConceded) / float64(b.Wickets)
	} else {
		b.Average = 0
	}
}

// BetterBowling reports whether figure a beats figure b: more wickets always
// wins; equal wickets are broken by fewer runs conceded. Callers must seed
// the first real figure themselves; the zero value is not a valid best.
func BetterBowling(a, b cricket.BowlingFigure) bool {
	if a.Wickets != b.Wickets {
		return a.Wickets > b.Wickets
	}
	return a.Runs < b.Runs
}

// FoldFielding accumulates dismissal credits.
func FoldFielding(f *cricket.FieldingStats, catches, runOuts, stumpings int) {
	f.Catches += catches
	f.RunOuts += runOuts
	f.Stumpings += stumpings
}

// FoldPlayerMatch folds one match's merged performance record into a
// player's career aggregates, appends milestone achievements, and maintains
// the bounded recent-activity lists.
func FoldPlayerMatch(p *cricket.Player, perf cricket.PlayerPerformance, matchID, teamID string, date time.Time) {
	if perf.Batting == nil && perf.Bowling == nil && perf.Catches == 0 && perf.RunOuts == 0 && perf.Stumpings == 0 {
		return
	}
	p.CareerStats.Overall.MatchesPlayed++

	if perf.Batting != nil {
		FoldBatting(&p.CareerStats.Batting, *perf.Batting)
		if perf.Batting.Runs >= 100 {
			p.Achievements = append(p.Achievements, cricket.Achievement{
				Type:    "century",
				MatchID: matchID,
				Value:   perf.Batting.Runs,
				Date:    date,
			})
		}
	}
	if perf.Bowling != nil {
		FoldBowling(&p.CareerStats.Bowling, *perf.Bowling)
		if perf.Bowling.Wickets >= 5 {
			p.Achievements = append(p.Achievements, cricket.Achievement{
				Type:    "five-wicket-haul",
				MatchID: matchID,
				Value:   perf.Bowling.Wickets,
				Date:    date,
			})
		}
	}
	FoldFielding(&p.CareerStats.Fielding, perf.Catches, perf.RunOuts, perf.Stumpings)

	pushRecentMatch(p, cricket.MatchRef{MatchID: matchID, TeamID: teamID, Date: date})
	pushRecentTeam(p, teamID)
	p.PreferredTeamID = mostFrequent(p.RecentTeams)
	p.UpdatedAt = date
}

// pushRecentMatch prepends, keeping the list most-recent-first and capped.
func pushRecentMatch(p *cricket.Player, ref cricket.MatchRef) {
	p.RecentMatches = append([]cricket.MatchRef{ref}, p.RecentMatches...)
	if len(p.RecentMatches) > recentMatchesCap {
		p.RecentMatches = p.RecentMatches[:recentMatchesCap]
	}
}

func pushRecentTeam(p *cricket.Player, teamID string) {
	if teamID == "" {
		return
	}
	p.RecentTeams = append([]string{teamID}, p.RecentTeams...)
	if len(p.RecentTeams) > recentTeamsCap {
		p.RecentTeams = p.RecentTeams[:recentTeamsCap]
	}
}

// mostFrequent picks the dominant entry, earliest-seen winning ties.
func mostFrequent(ids []string) string {
	counts := make(map[string]int, len(ids))
	best := ""
	bestCount := 0
	for i := len(ids) - 1; i >= 0; i-- {
		counts[ids[i]]++
		if counts[ids[i]] > bestCount {
			best = ids[i]
			bestCount = counts[ids[i]]
		}
	}
	return best
}

// ResetCareerStats zeroes a player's aggregates ahead of a full replay.
// Derived milestone entries are dropped so the replay rebuilds them; other
// achievement entries (merges, manual awards) survive.
func ResetCareerStats(p *cricket.Player) {
	p.CareerStats = cricket.CareerStats{}
	p.RecentMatches = nil
	p.RecentTeams = nil
	kept := p.Achievements[:0]
	for _, a := range p.Achievements {
		if a.Type != "century" && a.Type != "five-wicket-haul" {
			kept = append(kept, a)
		}
	}
	p.Achievements = kept
}
