package stats

import (
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/wagonwheel/crickstats/internal/cricket"
)

// MergePlayers redirects one player's identity into another's: additive
// counters are summed, derived fields recomputed, and the source is
// soft-deactivated with a pointer to the target. Entities are never deleted.
func MergePlayers(target, source *cricket.Player, now time.Time) error {
	if target.PlayerID == source.PlayerID {
		return crerr.New("cannot merge a player into itself")
	}
	if source.MergedInto != "" {
		return crerr.Newf("player %s is already merged into %s", source.PlayerID, source.MergedInto)
	}

	tb, sb := &target.CareerStats.Batting, &source.CareerStats.Batting
	tb.MatchesPlayed += sb.MatchesPlayed
	tb.Runs += sb.Runs
	tb.Balls += sb.Balls
	tb.NotOuts += sb.NotOuts
	tb.Fours += sb.Fours
	tb.Sixes += sb.Sixes
	tb.Centuries += sb.Centuries
	tb.Fifties += sb.Fifties
	tb.Ducks += sb.Ducks
	if sb.HighestScore > tb.HighestScore {
		tb.HighestScore = sb.HighestScore
	}
	recomputeBatting(tb)

	tw, sw := &target.CareerStats.Bowling, &source.CareerStats.Bowling
	targetBowled := tw.MatchesPlayed > 0
	tw.MatchesPlayed += sw.MatchesPlayed
	tw.Wickets += sw.Wickets
	tw.RunsConceded += sw.RunsConceded
	tw.OversBowled += sw.OversBowled
	tw.Maidens += sw.Maidens
	tw.FiveWicketHauls += sw.FiveWicketHauls
	if sw.MatchesPlayed > 0 && (!targetBowled || BetterBowling(sw.BestBowling, tw.BestBowling)) {
		tw.BestBowling = sw.BestBowling
	}
	recomputeBowling(tw)

	FoldFielding(&target.CareerStats.Fielding,
		source.CareerStats.Fielding.Catches,
		source.CareerStats.Fielding.RunOuts,
		source.CareerStats.Fielding.Stumpings)
	target.CareerStats.Overall.MatchesPlayed += source.CareerStats.Overall.MatchesPlayed

	target.Achievements = append(target.Achievements, source.Achievements...)
	target.Achievements = append(target.Achievements, cricket.Achievement{
		Type:   "merge",
		Detail: "absorbed " + source.Name + " (" + source.PlayerID + ")",
		Date:   now,
	})

	source.IsActive = false
	source.MergedInto = target.PlayerID
	source.UpdatedAt = now
	target.UpdatedAt = now
	return nil
}
