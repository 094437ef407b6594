package normalizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/resolver"
	"github.com/wagonwheel/crickstats/internal/sequence"
	"github.com/wagonwheel/crickstats/internal/source"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC) }
	seq := sequence.New(docstore.NewMemory(), sequence.WithClock(clock))
	rc := resolver.NewContext(seq, resolver.WithClock(clock))
	return New(rc, seq, WithClock(clock))
}

// fullRawMatch is a two-innings match exercising team creation, captain and
// keeper extraction, dot-variant name dedup, dismissal linking and fielding
// credits in one pass.
func fullRawMatch() *source.RawMatch {
	return &source.RawMatch{
		MatchID:    "ext-001",
		Teams:      source.RawTeams{Team1: "Falcons CC", Team2: "Eagles United"},
		Date:       "2023-06-10",
		Ground:     "Village Green",
		Tournament: "Summer League",
		Toss:       &source.RawToss{Winner: "Eagles United", Decision: "bowl"},
		Result:     &source.RawResult{Winner: "Falcons", Margin: "4 runs"},
		Innings: []source.RawInning{
			{
				Team:   "Falcons CC",
				Score:  "142/7",
				Overs:  20,
				Extras: 9,
				Batting: []source.RawBatting{
					{Name: "A Kumar", Runs: 45, Balls: 32, Fours: 5, IsCaptain: true,
						HowOut: &source.RawDismissal{Type: "caught", Bowler: "S Khan", Fielder: "R Patel", Text: "c R Patel b S Khan"}},
					{Name: "B Singh", Runs: 20, Balls: 18, IsWicketKeeper: true,
						HowOut: &source.RawDismissal{Type: "run out", Fielders: []string{"R Patel", "J Smith"}}},
					{Name: "C Jones", Runs: 8, Balls: 11,
						HowOut: &source.RawDismissal{Type: "stumped", Bowler: "S Khan", Fielder: "R Patel"}},
					{Name: "D Lee", Runs: 15, Balls: 9, HowOut: &source.RawDismissal{Type: "not out"}},
				},
				Bowling: []source.RawBowling{
					{Name: "S Khan", Overs: 4, Maidens: 1, Runs: 22, Wickets: 2},
					{Name: "M Ali", Overs: 4, Runs: 31, Wickets: 1},
				},
				FallOfWickets: []source.RawFOW{
					{Score: 60, Wicket: 1, Player: "A Kumar", Over: 8.2},
					{Score: 100, Wicket: 2, Player: "Unknown Guy", Over: 13.1},
				},
			},
			{
				Team:   "Eagles United",
				Score:  "138/9",
				Overs:  20,
				Extras: 5,
				Batting: []source.RawBatting{
					{Name: "R Patel", Runs: 50, Balls: 40,
						HowOut: &source.RawDismissal{Type: "caught", Bowler: "A. Kumar", Fielder: "D Lee"}},
					{Name: "J Smith", Runs: 30, Balls: 25, HowOut: &source.RawDismissal{Type: "not out"}},
					{Name: "S Khan", Runs: 10, Balls: 8,
						HowOut: &source.RawDismissal{Type: "bowled", Bowler: "A. Kumar"}},
					{Name: "M Ali", Runs: 5, Balls: 6,
						HowOut: &source.RawDismissal{Type: "caught", Bowler: "E Brown", Fielder: "Z Nobody"}},
				},
				Bowling: []source.RawBowling{
					{Name: "A. Kumar", Overs: 4, Runs: 25, Wickets: 2},
					{Name: "E Brown", Overs: 4, Runs: 30, Wickets: 1},
				},
			},
		},
	}
}

func findPerf(t *testing.T, players []cricket.PlayerPerformance, name string) cricket.PlayerPerformance {
	t.Helper()
	for _, p := range players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no performance for %q", name)
	return cricket.PlayerPerformance{}
}

func TestNormalizeFullMatch(t *testing.T) {
	n := newTestNormalizer(t)

	res, err := n.Normalize(context.Background(), fullRawMatch())
	require.NoError(t, err)
	match := res.Match
	require.NotNil(t, match)

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, "ext-001", match.ExternalRef)
		assert.Len(t, match.MatchID, 19)
		assert.Equal(t, time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC), match.Date)
		assert.Equal(t, "Summer League", match.Tournament)
	})

	t.Run("teams created", func(t *testing.T) {
		require.Len(t, res.NewTeams, 2)
		assert.Equal(t, "Falcons CC", match.Team1.Name)
		assert.Equal(t, "Eagles United", match.Team2.Name)
		assert.Equal(t, res.NewTeams[0].TeamID, match.Team1.TeamID)
	})

	t.Run("players deduped across innings", func(t *testing.T) {
		// "A. Kumar" (bowling) is the same player as "A Kumar" (batting),
		// so nine distinct players exist, not ten.
		assert.Len(t, res.NewPlayers, 9)

		kumar := findPerf(t, match.Team1.Players, "A Kumar")
		require.NotNil(t, kumar.Batting)
		require.NotNil(t, kumar.Bowling)
		assert.Equal(t, 45, kumar.Batting.Runs)
		assert.Equal(t, 2, kumar.Bowling.Wickets)
	})

	t.Run("captains and keepers", func(t *testing.T) {
		assert.Equal(t, "A Kumar", match.Team1.CaptainName)
		assert.NotEmpty(t, match.Team1.CaptainID)
		assert.Equal(t, cricket.CaptainTBD, match.Team2.CaptainName)
		assert.Empty(t, match.Team2.CaptainID)

		var captains, keepers int
		for _, sp := range match.Team1.Squad {
			if sp.IsCaptain {
				captains++
				assert.Equal(t, "A Kumar", sp.Name)
			}
			if sp.IsWicketKeeper {
				keepers++
				assert.Equal(t, "B Singh", sp.Name)
			}
		}
		assert.Equal(t, 1, captains)
		assert.Equal(t, 1, keepers)
	})

	t.Run("scores", func(t *testing.T) {
		assert.Equal(t, cricket.Score{Runs: 142, Wickets: 7, Overs: 20}, match.Team1.Score)
		assert.Equal(t, cricket.Score{Runs: 138, Wickets: 9, Overs: 20}, match.Team2.Score)
	})

	t.Run("result and toss", func(t *testing.T) {
		assert.Equal(t, cricket.ResultNormal, match.Result.ResultType)
		require.NotNil(t, match.Result.WinnerTeamID)
		assert.Equal(t, match.Team1.TeamID, *match.Result.WinnerTeamID)
		assert.Equal(t, "4 runs", match.Result.Margin)

		require.NotNil(t, match.Toss)
		assert.Equal(t, match.Team2.TeamID, match.Toss.WinnerTeamID)
		assert.Equal(t, "bowl", match.Toss.Decision)
	})

	t.Run("dismissal linking", func(t *testing.T) {
		require.NotNil(t, match.Team1.Innings)
		first := match.Team1.Innings.Batting[0]
		require.NotNil(t, first.Dismissal)
		assert.Equal(t, "caught", first.Dismissal.Type)

		khan := findPerf(t, match.Team2.Players, "S Khan")
		require.NotNil(t, first.Dismissal.BowlerID)
		assert.Equal(t, khan.PlayerID, *first.Dismissal.BowlerID)

		patel := findPerf(t, match.Team2.Players, "R Patel")
		assert.Equal(t, []string{patel.PlayerID}, first.Dismissal.FielderIDs)

		notOut := match.Team1.Innings.Batting[3]
		assert.False(t, notOut.Dismissed)
		assert.Nil(t, notOut.Dismissal)
	})

	t.Run("fielding credits", func(t *testing.T) {
		patel := findPerf(t, match.Team2.Players, "R Patel")
		assert.Equal(t, 1, patel.Catches)
		assert.Equal(t, 1, patel.RunOuts)
		assert.Equal(t, 1, patel.Stumpings)

		smith := findPerf(t, match.Team2.Players, "J Smith")
		assert.Equal(t, 1, smith.RunOuts)

		lee := findPerf(t, match.Team1.Players, "D Lee")
		assert.Equal(t, 1, lee.Catches)
	})

	t.Run("fall of wickets", func(t *testing.T) {
		fows := match.Team1.Innings.FallOfWickets
		require.Len(t, fows, 2)

		kumar := findPerf(t, match.Team1.Players, "A Kumar")
		require.NotNil(t, fows[0].PlayerID)
		assert.Equal(t, kumar.PlayerID, *fows[0].PlayerID)

		// The entry carries the same bowler and fielder credits as the
		// batter's dismissal on the card.
		khan := findPerf(t, match.Team2.Players, "S Khan")
		require.NotNil(t, fows[0].BowlerID)
		assert.Equal(t, khan.PlayerID, *fows[0].BowlerID)
		patel := findPerf(t, match.Team2.Players, "R Patel")
		assert.Equal(t, []string{patel.PlayerID}, fows[0].FielderIDs)

		// Unresolvable batter stays nil, never guessed.
		assert.Nil(t, fows[1].PlayerID)
		assert.Nil(t, fows[1].BowlerID)
		assert.Equal(t, "Unknown Guy", fows[1].PlayerName)
	})

	t.Run("warnings", func(t *testing.T) {
		require.Len(t, res.Warnings, 2)
		for _, w := range res.Warnings {
			assert.Equal(t, WarnUnresolvedName, w.Kind)
			assert.Equal(t, "ext-001", w.MatchRef)
		}
		assert.Contains(t, res.Warnings[0].Detail, "Z Nobody")
		assert.Contains(t, res.Warnings[1].Detail, "Unknown Guy")
	})
}

func minimalRaw(result *source.RawResult) *source.RawMatch {
	return &source.RawMatch{
		MatchID: "ext-min",
		Teams:   source.RawTeams{Team1: "Falcons CC", Team2: "Eagles United"},
		Date:    "2023-06-10",
		Result:  result,
	}
}

func TestNormalizeResults(t *testing.T) {
	t.Run("nil result is abandoned", func(t *testing.T) {
		n := newTestNormalizer(t)
		res, err := n.Normalize(context.Background(), minimalRaw(nil))
		require.NoError(t, err)
		assert.Equal(t, cricket.ResultAbandoned, res.Match.Result.ResultType)
		assert.Nil(t, res.Match.Result.WinnerTeamID)
	})

	t.Run("abandoned text", func(t *testing.T) {
		n := newTestNormalizer(t)
		res, err := n.Normalize(context.Background(), minimalRaw(&source.RawResult{Winner: "", Margin: "match abandoned, rain"}))
		require.NoError(t, err)
		assert.Equal(t, cricket.ResultAbandoned, res.Match.Result.ResultType)
	})

	t.Run("tie", func(t *testing.T) {
		n := newTestNormalizer(t)
		res, err := n.Normalize(context.Background(), minimalRaw(&source.RawResult{Winner: "Match tied"}))
		require.NoError(t, err)
		assert.Equal(t, cricket.ResultTie, res.Match.Result.ResultType)
	})

	t.Run("team name containing a tie marker still wins", func(t *testing.T) {
		n := newTestNormalizer(t)
		raw := minimalRaw(&source.RawResult{Winner: "Forties", Margin: "10 runs"})
		raw.Teams = source.RawTeams{Team1: "Forties", Team2: "Eagles United"}
		res, err := n.Normalize(context.Background(), raw)
		require.NoError(t, err)

		result := res.Match.Result
		assert.Equal(t, cricket.ResultNormal, result.ResultType)
		require.NotNil(t, result.WinnerTeamID)
		assert.Equal(t, res.Match.Team1.TeamID, *result.WinnerTeamID)
		assert.Equal(t, "Forties", result.WinnerName)
	})

	t.Run("unresolved winner stays normal with nil winner", func(t *testing.T) {
		n := newTestNormalizer(t)
		res, err := n.Normalize(context.Background(), minimalRaw(&source.RawResult{Winner: "Hawks", Margin: "12 runs"}))
		require.NoError(t, err)

		result := res.Match.Result
		assert.Equal(t, cricket.ResultNormal, result.ResultType)
		assert.Nil(t, result.WinnerTeamID)
		assert.Equal(t, "Hawks", result.WinnerName)

		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarnUnresolvedWinner, res.Warnings[0].Kind)
	})
}

func TestNormalizeKnownTeamShortName(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC) }
	seq := sequence.New(docstore.NewMemory(), sequence.WithClock(clock))
	rc := resolver.NewContext(seq, resolver.WithClock(clock))
	rc.RegisterTeam("Falcons CC", "42")
	n := New(rc, seq, WithClock(clock), WithTeamLookup(func(teamID string) (string, bool) {
		if teamID == "42" {
			return "FAL", true
		}
		return "", false
	}))

	res, err := n.Normalize(context.Background(), minimalRaw(nil))
	require.NoError(t, err)

	// Team1 resolved to the pre-registered record, so its snapshot takes
	// the stored short name; Team2 was created here and keeps the one
	// derived from its name.
	assert.Equal(t, "42", res.Match.Team1.TeamID)
	assert.Equal(t, "FAL", res.Match.Team1.ShortName)
	assert.NotEmpty(t, res.Match.Team2.ShortName)
}

func TestNormalizeAmbiguousFielder(t *testing.T) {
	n := newTestNormalizer(t)

	raw := minimalRaw(&source.RawResult{Winner: "Falcons CC", Margin: "10 runs"})
	raw.Innings = []source.RawInning{{
		Team:  "Falcons CC",
		Score: "80/1",
		Overs: 10,
		Batting: []source.RawBatting{
			{Name: "A Kumar", Runs: 40,
				HowOut: &source.RawDismissal{Type: "caught", Fielder: "Sharma"}},
		},
		Bowling: []source.RawBowling{
			{Name: "A Sharma", Overs: 5, Wickets: 1},
			{Name: "B Sharma", Overs: 5},
		},
	}}

	res, err := n.Normalize(context.Background(), raw)
	require.NoError(t, err)

	// First pool member wins the containment match; the tie is flagged.
	sharma := findPerf(t, res.Match.Team2.Players, "A Sharma")
	assert.Equal(t, 1, sharma.Catches)

	first := res.Match.Team1.Innings.Batting[0]
	require.NotNil(t, first.Dismissal)
	assert.Equal(t, []string{sharma.PlayerID}, first.Dismissal.FielderIDs)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnAmbiguousFielder, res.Warnings[0].Kind)
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.Normalize(context.Background(), &source.RawMatch{MatchID: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrMalformedMatch)
}
