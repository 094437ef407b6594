package migration

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/journal"
	"github.com/wagonwheel/crickstats/internal/normalizer"
	"github.com/wagonwheel/crickstats/internal/resolver"
	"github.com/wagonwheel/crickstats/internal/sequence"
	"github.com/wagonwheel/crickstats/internal/stats"
)

// wipedCollections are the derived collections an opt-in wipe clears. The
// legacy matchSquads collection survives: it is a migration source, not a
// migration product.
var wipedCollections = []string{
	cricket.CollectionMatches,
	cricket.CollectionPlayers,
	cricket.CollectionTeams,
	cricket.CollectionTournaments,
}

func (r *run) phaseWipe(ctx context.Context, _ int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats
	if !r.opts.Wipe {
		return tally, nil
	}
	for _, collection := range wipedCollections {
		if r.opts.DryRun {
			log.Info("[Dry Run] Would wipe collection", "collection", collection)
			continue
		}
		deleted, err := r.o.store.DeleteAll(ctx, collection)
		if err != nil {
			return tally, crerr.Wrapf(err, "wipe %s", collection)
		}
		tally.Processed += deleted
		tally.Migrated += deleted
		log.Info("Wiped collection", "collection", collection, "deleted", deleted)
	}
	return tally, nil
}

func (r *run) phaseResetSequences(ctx context.Context, _ int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats
	if !r.opts.Wipe {
		return tally, nil
	}
	if r.opts.DryRun {
		log.Info("[Dry Run] Would reset sequence counters")
		return tally, nil
	}
	if err := r.seq.ResetAll(ctx); err != nil {
		return tally, err
	}
	tally.Processed = len(sequence.All)
	tally.Migrated = len(sequence.All)
	return tally, nil
}

// phaseTeams creates a team record for every team name in the corpus that
// does not resolve to an existing one.
func (r *run) phaseTeams(ctx context.Context, offset int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats
	for i := offset; i < len(r.st.corpus); i++ {
		raw := &r.st.corpus[i]
		for _, name := range []string{raw.Teams.Team1, raw.Teams.Team2} {
			tally.Processed++
			teamID, created, err := r.rc.ResolveOrCreateTeam(ctx, name)
			if err != nil {
				tally.Errors++
				r.o.metrics.IncMigrationErrors("teams")
				log.Warn("Failed to resolve team", "match", raw.MatchID, "name", name, "error", err)
				continue
			}
			if created != nil {
				r.st.teams[teamID] = created
				r.writer.Set(ctx, cricket.CollectionTeams, teamID, created)
				tally.Migrated++
				r.o.metrics.IncMigrated("teams")
			}
		}
	}
	return tally, r.writer.Flush(ctx)
}

// phasePlayers creates a player record for every batting and bowling name in
// the corpus. Fielder-only names are rare and picked up during the matches
// phase.
func (r *run) phasePlayers(ctx context.Context, offset int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats
	for i := offset; i < len(r.st.corpus); i++ {
		raw := &r.st.corpus[i]
		for _, inning := range raw.Innings {
			names := make([]string, 0, len(inning.Batting)+len(inning.Bowling))
			for _, b := range inning.Batting {
				names = append(names, b.Name)
			}
			for _, b := range inning.Bowling {
				names = append(names, b.Name)
			}
			for _, name := range names {
				tally.Processed++
				playerID, created, err := r.rc.ResolveOrCreatePlayer(ctx, name)
				if err != nil {
					tally.Errors++
					r.o.metrics.IncMigrationErrors("players")
					log.Warn("Failed to resolve player", "match", raw.MatchID, "name", name, "error", err)
					continue
				}
				if created != nil {
					r.st.players[playerID] = created
					r.writer.Set(ctx, cricket.CollectionPlayers, playerID, created)
					tally.Migrated++
					r.o.metrics.IncMigrated("players")
				}
			}
		}
	}
	return tally, r.writer.Flush(ctx)
}

// phaseMatches normalizes every corpus match not already in the store, folds
// the per-match performances into player careers and persists both. Career
// folds are at-most-once: a match whose external reference is already known
// is skipped entirely.
func (r *run) phaseMatches(ctx context.Context, offset int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats
	touched := make(map[string]bool)

	flushPlayers := func() error {
		for id := range touched {
			r.writer.Set(ctx, cricket.CollectionPlayers, id, r.st.players[id])
		}
		touched = make(map[string]bool)
		return r.writer.Flush(ctx)
	}

	for i := offset; i < len(r.st.corpus); i++ {
		raw := &r.st.corpus[i]
		tally.Processed++

		if r.st.externalRefs[raw.MatchID] {
			continue
		}

		res, err := r.norm.Normalize(ctx, raw)
		if err != nil {
			tally.Errors++
			r.o.metrics.IncMigrationErrors("matches")
			log.Warn("Failed to normalize match", "match", raw.MatchID, "error", err)
			continue
		}

		for _, team := range res.NewTeams {
			r.st.teams[team.TeamID] = team
			r.writer.Set(ctx, cricket.CollectionTeams, team.TeamID, team)
		}
		for _, player := range res.NewPlayers {
			r.st.players[player.PlayerID] = player
			touched[player.PlayerID] = true
		}
		for _, w := range res.Warnings {
			r.st.warnings = append(r.st.warnings, w)
			r.o.metrics.IncOperatorWarnings(string(w.Kind))
		}

		match := res.Match
		if err := r.registerTournament(ctx, match.Tournament); err != nil {
			tally.Errors++
			r.o.metrics.IncMigrationErrors("tournaments")
			log.Warn("Failed to register tournament", "match", raw.MatchID, "tournament", match.Tournament, "error", err)
		}

		r.foldCareers(match, touched)

		r.writer.Set(ctx, cricket.CollectionMatches, match.MatchID, match)
		r.st.matches = append(r.st.matches, match)
		r.st.externalRefs[match.ExternalRef] = true
		tally.Migrated++
		r.o.metrics.IncMigrated("matches")

		if (i-offset+1)%checkpointEvery == 0 {
			if err := flushPlayers(); err != nil {
				return tally, err
			}
			if err := r.o.journal.SaveCheckpoint(r.opts.RunID, PhaseMatches, i+1, false, tally); err != nil {
				return tally, crerr.Wrap(err, "save matches checkpoint")
			}
		}
	}
	return tally, flushPlayers()
}

// foldCareers applies both sides' performances to the cached player records.
func (r *run) foldCareers(match *cricket.Match, touched map[string]bool) {
	for _, side := range []*cricket.MatchTeam{&match.Team1, &match.Team2} {
		for _, perf := range side.Players {
			player, ok := r.st.players[perf.PlayerID]
			if !ok {
				log.Warn("Performance references unknown player", "match", match.ExternalRef, "playerId", perf.PlayerID)
				continue
			}
			stats.FoldPlayerMatch(player, perf, match.MatchID, side.TeamID, match.Date)
			touched[perf.PlayerID] = true
		}
	}
}

func (r *run) registerTournament(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if _, ok := r.st.tournaments[name]; ok {
		return nil
	}
	id, displayID, err := r.seq.Allocate(ctx, sequence.Tournaments)
	if err != nil {
		return err
	}
	t := &cricket.Tournament{
		TournamentID: id,
		DisplayID:    displayID,
		Name:         name,
		CreatedAt:    r.o.now().UTC(),
	}
	r.st.tournaments[name] = id
	r.writer.Set(ctx, cricket.CollectionTournaments, id, t)
	return nil
}

// phaseCaptains backfills each team's captain from its most recent match
// with a known captain. Needs every player resolved, so it runs after the
// matches phase.
func (r *run) phaseCaptains(ctx context.Context, _ int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats

	// Most recent first, so the first named captain per team wins.
	ordered := make([]*cricket.Match, len(r.st.matches))
	copy(ordered, r.st.matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.After(ordered[j].Date)
	})

	captains := make(map[string]string)
	for _, match := range ordered {
		for _, side := range []*cricket.MatchTeam{&match.Team1, &match.Team2} {
			if side.CaptainID == "" {
				continue
			}
			if _, ok := captains[side.TeamID]; !ok {
				captains[side.TeamID] = side.CaptainID
			}
		}
	}

	for _, teamID := range sortedKeys(r.st.teams) {
		team := r.st.teams[teamID]
		tally.Processed++
		captainID, ok := captains[teamID]
		if !ok || team.CaptainID == captainID {
			continue
		}
		player, ok := r.st.players[captainID]
		if !ok {
			tally.Errors++
			r.o.metrics.IncMigrationErrors("captains")
			log.Warn("Captain references unknown player", "teamId", teamID, "captainId", captainID)
			continue
		}
		team.CaptainID = captainID
		team.Captain = &cricket.PlayerSummary{
			PlayerID: player.PlayerID,
			Name:     player.Name,
			Role:     player.Role,
		}
		team.UpdatedAt = r.o.now().UTC()
		r.writer.Set(ctx, cricket.CollectionTeams, teamID, team)
		tally.Migrated++
		r.o.metrics.IncMigrated("captains")
	}
	return tally, r.writer.Flush(ctx)
}

// phaseSquads folds legacy v1 match-squad documents into the owning match's
// team sub-objects. Matches normalized this run already embed their squads;
// this phase only serves corpora migrated before squads were embedded.
func (r *run) phaseSquads(ctx context.Context, _ int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats

	docs, err := r.o.store.GetAll(ctx, cricket.CollectionMatchSquads)
	if err != nil {
		return tally, crerr.Wrap(err, "load legacy match squads")
	}

	byRef := make(map[string]*cricket.Match, len(r.st.matches))
	for _, m := range r.st.matches {
		byRef[m.ExternalRef] = m
	}

	for _, doc := range docs {
		tally.Processed++
		if err := r.foldSquadDoc(ctx, doc, byRef, &tally); err != nil {
			tally.Errors++
			r.o.metrics.IncMigrationErrors("squads")
			log.Warn("Failed to fold legacy squad", "squadId", doc.ID(), "error", err)
		}
	}
	return tally, r.writer.Flush(ctx)
}

// foldSquadDoc applies one legacy squad document. Legacy docs are map-shaped
// ({matchRef, teamName, players:[{name,isCaptain,isWicketKeeper}]}) and go
// through Clean before any field is trusted.
func (r *run) foldSquadDoc(ctx context.Context, doc docstore.Document, byRef map[string]*cricket.Match, tally *journal.PhaseStats) error {
	data := normalizer.Clean(doc.Data())

	matchRef, _ := data["matchRef"].(string)
	teamName, _ := data["teamName"].(string)
	if matchRef == "" || teamName == "" {
		return crerr.New("legacy squad missing matchRef or teamName")
	}
	match, ok := byRef[matchRef]
	if !ok {
		return crerr.Newf("no match for external ref %q", matchRef)
	}

	side := matchSide(match, r.rc, teamName)
	if side == nil {
		return crerr.Newf("team %q is not part of match %q", teamName, matchRef)
	}
	if len(side.Squad) > 0 {
		// Embedded squads win over the legacy intermediate documents.
		return nil
	}

	rawPlayers, _ := data["players"].([]any)
	squad := make([]cricket.SquadPlayer, 0, len(rawPlayers))
	for _, rp := range rawPlayers {
		entry, ok := rp.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		isCaptain, _ := entry["isCaptain"].(bool)
		isKeeper, _ := entry["isWicketKeeper"].(bool)
		playerID, resolved := r.rc.ResolvePlayer(name)
		if !resolved {
			r.st.warnings = append(r.st.warnings, normalizer.Warning{
				Kind:     normalizer.WarnUnresolvedName,
				MatchRef: matchRef,
				Detail:   "legacy squad player " + name,
			})
			r.o.metrics.IncOperatorWarnings(string(normalizer.WarnUnresolvedName))
		}
		squad = append(squad, cricket.SquadPlayer{
			PlayerID:       playerID,
			Name:           name,
			IsCaptain:      isCaptain,
			IsWicketKeeper: isKeeper,
		})
	}

	side.Squad = squad
	match.UpdatedAt = r.o.now().UTC()
	r.writer.Set(ctx, cricket.CollectionMatches, match.MatchID, match)
	tally.Migrated++
	r.o.metrics.IncMigrated("squads")
	return nil
}

// matchSide maps a free-text team name onto one of the match's two sides.
func matchSide(match *cricket.Match, rc *resolver.Context, teamName string) *cricket.MatchTeam {
	if id, ok := rc.ResolveTeam(teamName); ok {
		switch id {
		case match.Team1.TeamID:
			return &match.Team1
		case match.Team2.TeamID:
			return &match.Team2
		}
	}
	normalized := resolver.NormalizeName(teamName)
	if resolver.NormalizeName(match.Team1.Name) == normalized {
		return &match.Team1
	}
	if resolver.NormalizeName(match.Team2.Name) == normalized {
		return &match.Team2
	}
	return nil
}

// phaseRosters rebuilds every team's roster by replaying the full migrated
// match set. Rosters are wiped first so the phase is a pure function of the
// match data.
func (r *run) phaseRosters(ctx context.Context, _ int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats

	for _, team := range r.st.teams {
		stats.ResetRoster(team)
	}
	for _, match := range r.st.matches {
		for _, side := range []*cricket.MatchTeam{&match.Team1, &match.Team2} {
			team, ok := r.st.teams[side.TeamID]
			if !ok {
				tally.Errors++
				r.o.metrics.IncMigrationErrors("rosters")
				log.Warn("Match references unknown team", "match", match.ExternalRef, "teamId", side.TeamID)
				continue
			}
			for _, perf := range side.Players {
				player, ok := r.st.players[perf.PlayerID]
				if !ok {
					continue
				}
				summary := cricket.PlayerSummary{
					PlayerID: player.PlayerID,
					Name:     player.Name,
					Role:     player.Role,
				}
				stats.FoldRoster(team, summary, perf, match.Date)
			}
		}
	}

	for _, teamID := range sortedKeys(r.st.teams) {
		team := r.st.teams[teamID]
		tally.Processed++
		team.UpdatedAt = r.o.now().UTC()
		r.writer.Set(ctx, cricket.CollectionTeams, teamID, team)
		tally.Migrated++
		r.o.metrics.IncMigrated("rosters")
	}
	return tally, r.writer.Flush(ctx)
}

// phaseTeamStats rebuilds win/loss aggregates and recent-match lists for
// every team from the full migrated match set.
func (r *run) phaseTeamStats(ctx context.Context, _ int) (journal.PhaseStats, error) {
	var tally journal.PhaseStats

	for _, team := range r.st.teams {
		stats.ResetTeamStats(team)
	}

	// Oldest first so recent-match lists end up most-recent-first.
	ordered := make([]*cricket.Match, len(r.st.matches))
	copy(ordered, r.st.matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	for _, match := range ordered {
		for _, side := range []*cricket.MatchTeam{&match.Team1, &match.Team2} {
			team, ok := r.st.teams[side.TeamID]
			if !ok {
				continue
			}
			stats.FoldTeamResult(&team.TeamStats, side.TeamID, match.Result)
			stats.FoldTeamMatch(team, cricket.MatchRef{
				MatchID: match.MatchID,
				TeamID:  side.TeamID,
				Date:    match.Date,
			})
		}
	}

	for _, teamID := range sortedKeys(r.st.teams) {
		team := r.st.teams[teamID]
		tally.Processed++
		team.UpdatedAt = r.o.now().UTC()
		r.writer.Set(ctx, cricket.CollectionTeams, teamID, team)
		tally.Migrated++
		r.o.metrics.IncMigrated("team-stats")
	}
	return tally, r.writer.Flush(ctx)
}

// sortedKeys keeps team iteration deterministic across runs.
func sortedKeys(m map[string]*cricket.Team) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
