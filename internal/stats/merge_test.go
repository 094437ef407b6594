package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/cricket"
)

func TestMergePlayers(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	newPlayer := func(id string, runs, dismissals, wickets, conceded int) *cricket.Player {
		p := &cricket.Player{PlayerID: id, Name: "Player " + id, IsActive: true}
		p.CareerStats.Batting.Runs = runs
		p.CareerStats.Batting.MatchesPlayed = dismissals
		p.CareerStats.Bowling.Wickets = wickets
		p.CareerStats.Bowling.RunsConceded = conceded
		p.CareerStats.Overall.MatchesPlayed = dismissals
		return p
	}

	t.Run("sums counters and recomputes averages", func(t *testing.T) {
		target := newPlayer("1", 100, 4, 10, 200)
		source := newPlayer("2", 60, 2, 5, 40)
		source.CareerStats.Bowling.BestBowling = cricket.BowlingFigure{Wickets: 6, Runs: 20}
		source.Achievements = []cricket.Achievement{{Type: "century", MatchID: "m9"}}

		require.NoError(t, MergePlayers(target, source, now))

		assert.Equal(t, 160, target.CareerStats.Batting.Runs)
		assert.Equal(t, 15, target.CareerStats.Bowling.Wickets)
		assert.InDelta(t, 240.0/15.0, target.CareerStats.Bowling.Average, 0.001)
		assert.Equal(t, cricket.BowlingFigure{Wickets: 6, Runs: 20}, target.CareerStats.Bowling.BestBowling)
		assert.Equal(t, 6, target.CareerStats.Overall.MatchesPlayed)

		// Source achievements carry over, plus the merge record itself.
		require.Len(t, target.Achievements, 2)
		assert.Equal(t, "merge", target.Achievements[1].Type)

		assert.False(t, source.IsActive)
		assert.Equal(t, "1", source.MergedInto)
	})

	t.Run("rejects self merge", func(t *testing.T) {
		p := newPlayer("1", 0, 0, 0, 0)
		assert.Error(t, MergePlayers(p, p, now))
	})

	t.Run("rejects double merge", func(t *testing.T) {
		target := newPlayer("1", 0, 0, 0, 0)
		source := newPlayer("2", 0, 0, 0, 0)
		source.MergedInto = "3"
		assert.Error(t, MergePlayers(target, source, now))
	})
}
