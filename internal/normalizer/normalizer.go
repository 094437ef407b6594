// Package normalizer converts heterogeneous raw match records into the
// canonical nested match document: team sub-objects embedding squads, scores,
// merged player performances and full innings records.
package normalizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/resolver"
	"github.com/wagonwheel/crickstats/internal/sequence"
	"github.com/wagonwheel/crickstats/internal/source"
)

// Normalizer converts raw matches using a shared per-run resolution context.
// Matches are independent of each other; one Normalize call is sequential.
type Normalizer struct {
	rc        *resolver.Context
	seq       *sequence.Allocator
	now       func() time.Time
	shortName func(teamID string) (string, bool)
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithTeamLookup supplies the short name of an already-known team, so match
// snapshots of teams the run did not create still carry it.
func WithTeamLookup(fn func(teamID string) (string, bool)) Option {
	return func(n *Normalizer) { n.shortName = fn }
}

// New creates a Normalizer.
func New(rc *resolver.Context, seq *sequence.Allocator, opts ...Option) *Normalizer {
	n := &Normalizer{rc: rc, seq: seq, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// side is a per-team working state while converting one match.
type side struct {
	rawName  string
	teamID   string
	team     *cricket.Team // non-nil only when created by this match
	captain  string
	keeper   string
	perfs    map[string]*cricket.PlayerPerformance
	order    []string
	innings  *cricket.Innings
	score    cricket.Score
	overs    float64
	hasScore bool
}

// Normalize runs the full conversion for one raw match. A failure here must
// not abort the corpus: the orchestrator logs, counts and continues.
func (n *Normalizer) Normalize(ctx context.Context, raw *source.RawMatch) (*Result, error) {
	if err := raw.Check(); err != nil {
		return nil, err
	}
	res := &Result{}

	// Step 1: resolve both teams, creating them when unknown.
	sides, err := n.resolveTeams(ctx, raw, res)
	if err != nil {
		return nil, err
	}

	// Step 2: captain/wicketkeeper roles from the innings entries.
	n.extractCaptains(raw, sides)

	// Step 3: merge batting and bowling contributions per player, and credit
	// fielding from the opposing side's dismissals.
	if err := n.extractPlayers(ctx, raw, sides, res); err != nil {
		return nil, err
	}

	// Step 4: structured scores from the "runs/wickets" strings.
	n.computeScores(raw, sides, res)

	// Step 5: map the free-text winner to a team ID.
	result := n.determineResult(raw, sides, res)

	// Step 6: fall-of-wicket entries linked to resolved player IDs.
	n.buildFallOfWickets(raw, sides, res)

	// Step 7 (Clean) applies to map-shaped legacy documents; typed documents
	// built here carry no undefined fields by construction.

	match, err := n.assemble(ctx, raw, sides, result)
	if err != nil {
		return nil, err
	}
	res.Match = match
	if err := cricket.Validate(match); err != nil {
		return nil, err
	}
	return res, nil
}

func (n *Normalizer) resolveTeams(ctx context.Context, raw *source.RawMatch, res *Result) ([2]*side, error) {
	var sides [2]*side
	for i, name := range []string{raw.Teams.Team1, raw.Teams.Team2} {
		teamID, created, err := n.rc.ResolveOrCreateTeam(ctx, name)
		if err != nil {
			return sides, crerr.Wrapf(err, "match %q: resolve team %q", raw.MatchID, name)
		}
		if created != nil {
			res.NewTeams = append(res.NewTeams, created)
		}
		sides[i] = &side{
			rawName: name,
			teamID:  teamID,
			team:    created,
			captain: cricket.CaptainTBD,
			perfs:   make(map[string]*cricket.PlayerPerformance),
		}
	}
	return sides, nil
}

// sideOf maps an innings' team name onto one of the two match sides;
// unmatched names fall back to innings position.
func sideOf(raw *source.RawMatch, sides [2]*side, inningsTeam string, inningsIdx int) *side {
	normalized := resolver.NormalizeName(inningsTeam)
	for _, s := range sides {
		if resolver.NormalizeName(s.rawName) == normalized {
			return s
		}
	}
	for _, s := range sides {
		sn := resolver.NormalizeName(s.rawName)
		if strings.Contains(sn, normalized) || strings.Contains(normalized, sn) {
			return s
		}
	}
	log.Warn("Innings team matched neither side, assigning by position",
		"matchId", raw.MatchID, "team", inningsTeam, "innings", inningsIdx)
	return sides[inningsIdx%2]
}

func other(sides [2]*side, s *side) *side {
	if sides[0] == s {
		return sides[1]
	}
	return sides[0]
}

func (n *Normalizer) extractCaptains(raw *source.RawMatch, sides [2]*side) {
	for i, inn := range raw.Innings {
		batting := sideOf(raw, sides, inn.Team, i)
		for _, b := range inn.Batting {
			if b.IsCaptain && batting.captain == cricket.CaptainTBD {
				batting.captain = b.Name
			}
			if b.IsWicketKeeper && batting.keeper == "" {
				batting.keeper = b.Name
			}
		}
	}
}

func (n *Normalizer) extractPlayers(ctx context.Context, raw *source.RawMatch, sides [2]*side, res *Result) error {
	// Offset of each innings' first batting entry within its side's embedded
	// innings record, for the dismissal-linking pass below.
	inningsStart := make([]int, len(raw.Innings))
	for i, inn := range raw.Innings {
		batting := sideOf(raw, sides, inn.Team, i)
		fielding := other(sides, batting)

		if batting.innings == nil {
			inningsID, err := n.seq.NewDisplayID(ctx, sequence.Innings)
			if err != nil {
				return crerr.Wrapf(err, "match %q: allocate innings id", raw.MatchID)
			}
			batting.innings = &cricket.Innings{InningsID: inningsID, Extras: inn.Extras}
		}

		inningsStart[i] = len(batting.innings.Batting)
		for _, b := range inn.Batting {
			playerID, err := n.playerID(ctx, b.Name, res)
			if err != nil {
				return crerr.Wrapf(err, "match %q: batter %q", raw.MatchID, b.Name)
			}
			entry := cricket.BattingEntry{
				PlayerID:  playerID,
				Name:      b.Name,
				Runs:      b.Runs,
				Balls:     b.Balls,
				Fours:     b.Fours,
				Sixes:     b.Sixes,
				Dismissed: b.Dismissed(),
			}
			perf := batting.perf(playerID, b.Name)
			perf.Batting = &entry
			batting.innings.Batting = append(batting.innings.Batting, entry)
		}

		for _, bw := range inn.Bowling {
			// Bowlers in this innings play for the fielding side.
			playerID, err := n.playerID(ctx, bw.Name, res)
			if err != nil {
				return crerr.Wrapf(err, "match %q: bowler %q", raw.MatchID, bw.Name)
			}
			entry := cricket.BowlingEntry{
				PlayerID: playerID,
				Name:     bw.Name,
				Overs:    bw.Overs,
				Maidens:  bw.Maidens,
				Runs:     bw.Runs,
				Wickets:  bw.Wickets,
			}
			perf := fielding.perf(playerID, bw.Name)
			perf.Bowling = &entry
			batting.innings.Bowling = append(batting.innings.Bowling, entry)
		}
	}

	// Second pass: link dismissals and credit fielders, now that every
	// same-match player is in a pool.
	for i := range raw.Innings {
		inn := raw.Innings[i]
		batting := sideOf(raw, sides, inn.Team, i)
		fielding := other(sides, batting)
		for bi, b := range inn.Batting {
			if b.HowOut == nil || !b.Dismissed() {
				continue
			}
			dismissal := n.linkDismissal(raw, b, fielding, res)
			idx := inningsStart[i] + bi
			if idx >= len(batting.innings.Batting) {
				continue
			}
			batting.innings.Batting[idx].Dismissal = dismissal
			if perf, ok := batting.perfs[batting.innings.Batting[idx].PlayerID]; ok && perf.Batting != nil {
				perf.Batting.Dismissal = dismissal
			}
		}
	}
	return nil
}

func (n *Normalizer) playerID(ctx context.Context, name string, res *Result) (string, error) {
	playerID, created, err := n.rc.ResolveOrCreatePlayer(ctx, name)
	if err != nil {
		return "", err
	}
	if created != nil {
		res.NewPlayers = append(res.NewPlayers, created)
	}
	return playerID, nil
}

func (s *side) perf(playerID, name string) *cricket.PlayerPerformance {
	if p, ok := s.perfs[playerID]; ok {
		return p
	}
	p := &cricket.PlayerPerformance{PlayerID: playerID, Name: name}
	s.perfs[playerID] = p
	s.order = append(s.order, playerID)
	return p
}

// linkDismissal resolves the bowler and fielder(s) named on a dismissal to
// player IDs from the fielding side's same-match pool and credits catches,
// run outs and stumpings. Unresolvable names stay nil; a fielder name that
// matches more than one player is flagged, first found credited.
func (n *Normalizer) linkDismissal(raw *source.RawMatch, b source.RawBatting, fielding *side, res *Result) *cricket.Dismissal {
	d := &cricket.Dismissal{Type: b.HowOut.Type, Text: b.HowOut.Text}

	if b.HowOut.Bowler != "" {
		if id, _, ok := matchInPool(b.HowOut.Bowler, fielding); ok {
			d.BowlerID = &id
		} else {
			res.Warnings = append(res.Warnings, Warning{
				Kind:     WarnUnresolvedName,
				MatchRef: raw.MatchID,
				Detail:   fmt.Sprintf("dismissal bowler %q not in fielding side", b.HowOut.Bowler),
			})
		}
	}

	for _, fielderName := range b.HowOut.FielderNames() {
		id, ambiguous, ok := matchInPool(fielderName, fielding)
		if !ok {
			res.Warnings = append(res.Warnings, Warning{
				Kind:     WarnUnresolvedName,
				MatchRef: raw.MatchID,
				Detail:   fmt.Sprintf("fielder %q not in fielding side", fielderName),
			})
			continue
		}
		if ambiguous {
			res.Warnings = append(res.Warnings, Warning{
				Kind:     WarnAmbiguousFielder,
				MatchRef: raw.MatchID,
				Detail:   fmt.Sprintf("fielder %q matches multiple players, credited first found", fielderName),
			})
		}
		d.FielderIDs = append(d.FielderIDs, id)
		perf := fielding.perfs[id]
		if perf == nil {
			continue
		}
		switch b.HowOut.Type {
		case "caught", "caught and bowled":
			perf.Catches++
		case "run out":
			// Run outs may credit every listed fielder.
			perf.RunOuts++
		case "stumped":
			perf.Stumpings++
		}
	}
	return d
}

// matchInPool resolves a free-text name against one side's same-match player
// pool: exact normalized, then containment, then token overlap, in pool
// order. ambiguous reports whether more than one pool member matched.
func matchInPool(name string, s *side) (id string, ambiguous, ok bool) {
	normalized := resolver.NormalizeName(name)
	if normalized == "" {
		return "", false, false
	}
	pool := resolver.NewIndex()
	for _, playerID := range s.order {
		pool.Add(resolver.NormalizeName(s.perfs[playerID].Name), playerID)
	}

	for _, m := range []resolver.NameMatcher{resolver.ExactMatcher{}, resolver.ContainmentMatcher{}, resolver.TokenOverlapMatcher{}} {
		if matchedID, found := m.Match(normalized, pool); found {
			id = matchedID
			break
		}
	}
	if id == "" {
		return "", false, false
	}
	// Count distinct pool members the winning tier would accept, to flag
	// ambiguity without changing the first-found outcome.
	distinct := 0
	for _, entry := range pool.Entries() {
		single := resolver.NewIndex()
		single.Add(entry.Name, entry.ID)
		for _, m := range []resolver.NameMatcher{resolver.ExactMatcher{}, resolver.ContainmentMatcher{}, resolver.TokenOverlapMatcher{}} {
			if _, found := m.Match(normalized, single); found {
				distinct++
				break
			}
		}
	}
	return id, distinct > 1, true
}

func (n *Normalizer) computeScores(raw *source.RawMatch, sides [2]*side, res *Result) {
	for i, inn := range raw.Innings {
		batting := sideOf(raw, sides, inn.Team, i)
		if batting.hasScore {
			continue
		}
		parsed, err := source.ParseScore(inn.Score)
		if err != nil {
			log.Warn("Unparseable score", "matchId", raw.MatchID, "team", inn.Team, "score", inn.Score)
			continue
		}
		batting.score = cricket.Score{
			Runs:     parsed.Runs,
			Wickets:  parsed.Wickets,
			Overs:    inn.Overs,
			Declared: parsed.Declared,
		}
		batting.hasScore = true
	}
}

func (n *Normalizer) determineResult(raw *source.RawMatch, sides [2]*side, res *Result) cricket.Result {
	if raw.Result == nil {
		return cricket.Result{ResultType: cricket.ResultAbandoned}
	}
	winner := strings.TrimSpace(raw.Result.Winner)

	// Match the winner against the two sides before sniffing the free text
	// for tie or abandonment markers, so a team whose name happens to
	// contain one (say "Forties") still gets credited with the win.
	if s := matchTeamName(winner, sides); s != nil {
		return cricket.Result{
			ResultType:   cricket.ResultNormal,
			WinnerTeamID: &s.teamID,
			WinnerName:   winner,
			Margin:       raw.Result.Margin,
		}
	}

	lower := strings.ToLower(winner + " " + raw.Result.Margin)
	switch {
	case strings.Contains(lower, "tie"):
		return cricket.Result{ResultType: cricket.ResultTie, Margin: raw.Result.Margin}
	case winner == "" || strings.Contains(lower, "abandon") || strings.Contains(lower, "no result"):
		return cricket.Result{ResultType: cricket.ResultAbandoned, Margin: raw.Result.Margin}
	}
	// Unresolved winner stays a normal result with a nil winner — flagged,
	// not recorded as a draw.
	res.Warnings = append(res.Warnings, Warning{
		Kind:     WarnUnresolvedWinner,
		MatchRef: raw.MatchID,
		Detail:   fmt.Sprintf("winner %q matches neither %q nor %q", winner, raw.Teams.Team1, raw.Teams.Team2),
	})
	return cricket.Result{
		ResultType: cricket.ResultNormal,
		WinnerName: winner,
		Margin:     raw.Result.Margin,
	}
}

// matchTeamName maps free text onto one of the two sides by exact then
// substring match.
func matchTeamName(name string, sides [2]*side) *side {
	normalized := resolver.NormalizeName(name)
	if normalized == "" {
		return nil
	}
	for _, s := range sides {
		if resolver.NormalizeName(s.rawName) == normalized {
			return s
		}
	}
	for _, s := range sides {
		sn := resolver.NormalizeName(s.rawName)
		if strings.Contains(sn, normalized) || strings.Contains(normalized, sn) {
			return s
		}
	}
	return nil
}

func (n *Normalizer) buildFallOfWickets(raw *source.RawMatch, sides [2]*side, res *Result) {
	for i, inn := range raw.Innings {
		batting := sideOf(raw, sides, inn.Team, i)
		if batting.innings == nil {
			continue
		}
		// Dismissals were linked onto the batting card already; index them
		// so each fall-of-wicket entry carries the same bowler and fielder
		// credits as the batter it records.
		dismissals := make(map[string]*cricket.Dismissal, len(batting.innings.Batting))
		for j := range batting.innings.Batting {
			be := &batting.innings.Batting[j]
			if be.PlayerID != "" && be.Dismissal != nil {
				dismissals[be.PlayerID] = be.Dismissal
			}
		}
		for _, fow := range inn.FallOfWickets {
			entry := cricket.FallOfWicket{
				Wicket:     fow.Wicket,
				Score:      fow.Score,
				Over:       fow.Over,
				PlayerName: fow.Player,
			}
			if id, _, ok := matchInPool(fow.Player, batting); ok {
				entry.PlayerID = &id
				if d := dismissals[id]; d != nil {
					entry.BowlerID = d.BowlerID
					entry.FielderIDs = d.FielderIDs
				}
			} else if fow.Player != "" {
				res.Warnings = append(res.Warnings, Warning{
					Kind:     WarnUnresolvedName,
					MatchRef: raw.MatchID,
					Detail:   fmt.Sprintf("fall-of-wicket batter %q not in batting side", fow.Player),
				})
			}
			batting.innings.FallOfWickets = append(batting.innings.FallOfWickets, entry)
		}
	}
}

func (n *Normalizer) assemble(ctx context.Context, raw *source.RawMatch, sides [2]*side, result cricket.Result) (*cricket.Match, error) {
	matchID, displayID, err := n.seq.Allocate(ctx, sequence.Matches)
	if err != nil {
		return nil, crerr.Wrapf(err, "match %q: allocate id", raw.MatchID)
	}
	now := n.now().UTC()
	match := &cricket.Match{
		MatchID:     matchID,
		DisplayID:   displayID,
		ExternalRef: raw.MatchID,
		Date:        source.ParseDate(raw.Date),
		Ground:      raw.Ground,
		Tournament:  raw.Tournament,
		Result:      result,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	teams := [2]*cricket.MatchTeam{&match.Team1, &match.Team2}
	for i, s := range sides {
		mt := teams[i]
		mt.TeamID = s.teamID
		mt.Name = strings.TrimSpace(s.rawName)
		mt.Score = s.score
		mt.Innings = s.innings
		if s.team != nil {
			mt.ShortName = s.team.ShortName
		} else if n.shortName != nil {
			if sn, ok := n.shortName(s.teamID); ok {
				mt.ShortName = sn
			}
		}
		if s.captain != cricket.CaptainTBD {
			mt.CaptainName = s.captain
			if id, _, ok := matchInPool(s.captain, s); ok {
				mt.CaptainID = id
			}
		} else {
			mt.CaptainName = cricket.CaptainTBD
		}
		for _, playerID := range s.order {
			perf := s.perfs[playerID]
			mt.Players = append(mt.Players, *perf)
			mt.Squad = append(mt.Squad, cricket.SquadPlayer{
				PlayerID:       playerID,
				Name:           perf.Name,
				IsCaptain:      s.captain != cricket.CaptainTBD && resolver.NormalizeName(perf.Name) == resolver.NormalizeName(s.captain),
				IsWicketKeeper: s.keeper != "" && resolver.NormalizeName(perf.Name) == resolver.NormalizeName(s.keeper),
			})
		}
	}

	if raw.Toss != nil {
		toss := &cricket.Toss{WinnerName: raw.Toss.Winner, Decision: raw.Toss.Decision}
		if s := matchTeamName(raw.Toss.Winner, sides); s != nil {
			toss.WinnerTeamID = s.teamID
		}
		match.Toss = toss
	}
	return match, nil
}
