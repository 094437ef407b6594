// Package migration orchestrates the full raw-corpus migration: entity
// phases in a strict order, journaled checkpoints for resume, per-item error
// counting and a final per-entity report.
package migration

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/wagonwheel/crickstats/internal/batch"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/journal"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/normalizer"
	"github.com/wagonwheel/crickstats/internal/notifier"
	"github.com/wagonwheel/crickstats/internal/pubsub"
	"github.com/wagonwheel/crickstats/internal/resolver"
	"github.com/wagonwheel/crickstats/internal/sequence"
	"github.com/wagonwheel/crickstats/internal/source"
	"github.com/wagonwheel/crickstats/internal/stats"
)

// checkpointEvery is how many corpus items the matches phase processes
// between journal checkpoints.
const checkpointEvery = 25

var _ Migrator = (*Orchestrator)(nil)

// Orchestrator runs migrations. It is safe to reuse across runs; all per-run
// state lives in the run object.
type Orchestrator struct {
	store    docstore.Store
	journal  journal.Journal
	metrics  metrics.Metrics
	tallies  metrics.MetricsStore
	pubsub   pubsub.PubSubClient
	notifier notifier.Notifier

	workers int
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithWorkers sets the batch commit pool size.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// New creates an Orchestrator.
func New(store docstore.Store, jrnl journal.Journal, m metrics.Metrics, tallies metrics.MetricsStore, ps pubsub.PubSubClient, notif notifier.Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		journal:  jrnl,
		metrics:  m,
		tallies:  tallies,
		pubsub:   ps,
		notifier: notif,
		workers:  batch.DefaultWorkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run bundles the per-run resources every phase shares.
type run struct {
	o      *Orchestrator
	opts   Options
	seq    *sequence.Allocator
	rc     *resolver.Context
	norm   *normalizer.Normalizer
	writer *batch.Writer
	st     *state
}

// Run executes a full migration. Per-item failures are counted and reported;
// only infrastructure failures (store, journal) abort the run.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.RunID == "" {
		return nil, crerr.New("migration run requires a run ID")
	}
	startedAt := o.now().UTC()
	log.Info("Starting migration run", "runId", opts.RunID, "corpus", opts.CorpusPath, "wipe", opts.Wipe, "dryRun", opts.DryRun, "resume", opts.Resume)

	corpus, err := source.LoadCorpus(opts.CorpusPath)
	if err != nil {
		return nil, crerr.Wrap(err, "load corpus")
	}
	log.Info("Loaded corpus", "matches", len(corpus))

	if !opts.Resume {
		if err := o.journal.StartRun(opts.RunID, opts.CorpusPath, opts.Wipe); err != nil {
			return nil, crerr.Wrap(err, "journal start")
		}
	}

	seq := sequence.New(o.store)
	rc := resolver.NewContext(seq, resolver.WithMatchCallback(o.metrics.IncResolverMatch))
	writer, err := batch.New(o.store, o.workers, batch.WithDryRun(opts.DryRun))
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	st := &state{
		corpus:       corpus,
		players:      make(map[string]*cricket.Player),
		teams:        make(map[string]*cricket.Team),
		tournaments:  make(map[string]string),
		externalRefs: make(map[string]bool),
	}
	norm := normalizer.New(rc, seq, normalizer.WithTeamLookup(func(teamID string) (string, bool) {
		t, ok := st.teams[teamID]
		if !ok {
			return "", false
		}
		return t.ShortName, true
	}))

	r := &run{
		o:      o,
		opts:   opts,
		seq:    seq,
		rc:     rc,
		norm:   norm,
		writer: writer,
		st:     st,
	}

	report := &Report{
		RunID:     opts.RunID,
		StartedAt: startedAt,
		Phases:    make(map[string]journal.PhaseStats),
	}

	phases := map[string]func(context.Context, int) (journal.PhaseStats, error){
		PhaseWipe:           r.phaseWipe,
		PhaseResetSequences: r.phaseResetSequences,
		PhaseTeams:          r.phaseTeams,
		PhasePlayers:        r.phasePlayers,
		PhaseMatches:        r.phaseMatches,
		PhaseCaptains:       r.phaseCaptains,
		PhaseSquads:         r.phaseSquads,
		PhaseRosters:        r.phaseRosters,
		PhaseTeamStats:      r.phaseTeamStats,
	}

	primed := false
	for _, phase := range phaseOrder {
		offset := 0
		if opts.Resume {
			cp, err := o.journal.Checkpoint(opts.RunID, phase)
			if err != nil {
				return nil, crerr.Wrapf(err, "checkpoint for %s", phase)
			}
			if cp != nil && cp.Completed {
				report.Phases[phase] = cp.Stats
				log.Info("Skipping completed phase", "phase", phase)
				continue
			}
			if cp != nil {
				offset = cp.Offset
			}
		}

		// Entity phases need existing store state in memory. Priming after
		// wipe/reset sees the post-wipe (empty) collections.
		if !primed && phase != PhaseWipe && phase != PhaseResetSequences {
			if err := r.prime(ctx); err != nil {
				o.failRun(opts.RunID)
				return nil, crerr.Wrap(err, "prime run state")
			}
			primed = true
		}

		tally, err := o.runPhase(ctx, opts.RunID, phase, offset, phases[phase])
		report.Phases[phase] = tally
		if err != nil {
			o.failRun(opts.RunID)
			return report, crerr.Wrapf(err, "phase %s", phase)
		}
	}

	report.Duration = o.now().UTC().Sub(startedAt)
	report.Warnings = r.st.warnings

	if err := o.journal.CompleteRun(opts.RunID, journal.StatusCompleted); err != nil {
		log.Error("Failed to complete journal run", "error", err)
	}
	o.recordTallies(report)
	o.publish(pubsub.EventMigrationCompleted, pubsub.ProgressEvent{
		RunID: opts.RunID,
		At:    o.now().Unix(),
	})
	o.notify(report, opts.DryRun)

	log.Info("Migration run finished", "runId", opts.RunID, "duration", report.Duration, "hadErrors", report.HadErrors())
	return report, nil
}

// runPhase wraps one phase with its checkpoint, timing, counters and events.
func (o *Orchestrator) runPhase(ctx context.Context, runID, phase string, offset int, fn func(context.Context, int) (journal.PhaseStats, error)) (journal.PhaseStats, error) {
	log.Info("Phase started", "phase", phase, "offset", offset)
	o.publish(pubsub.EventPhaseStarted, pubsub.ProgressEvent{RunID: runID, Phase: phase, At: o.now().Unix()})

	start := o.now()
	tally, err := fn(ctx, offset)
	o.metrics.ObservePhaseDuration(phase, o.now().Sub(start).Seconds())
	if err != nil {
		if jerr := o.journal.SaveCheckpoint(runID, phase, offset, false, tally); jerr != nil {
			log.Error("Failed to save failure checkpoint", "phase", phase, "error", jerr)
		}
		return tally, err
	}

	if err := o.journal.SaveCheckpoint(runID, phase, tally.Processed, true, tally); err != nil {
		return tally, crerr.Wrapf(err, "save checkpoint for %s", phase)
	}
	o.publish(pubsub.EventPhaseCompleted, pubsub.ProgressEvent{
		RunID:     runID,
		Phase:     phase,
		Processed: tally.Processed,
		Migrated:  tally.Migrated,
		Errors:    tally.Errors,
		At:        o.now().Unix(),
	})
	log.Info("Phase completed", "phase", phase, "processed", tally.Processed, "migrated", tally.Migrated, "errors", tally.Errors)
	return tally, nil
}

func (o *Orchestrator) failRun(runID string) {
	if err := o.journal.CompleteRun(runID, journal.StatusFailed); err != nil {
		log.Error("Failed to mark run failed", "runId", runID, "error", err)
	}
}

func (o *Orchestrator) publish(topic pubsub.EventType, event pubsub.ProgressEvent) {
	if o.pubsub == nil {
		return
	}
	if err := o.pubsub.SendMessage(topic, event); err != nil {
		log.Error("Failed to publish progress event", "topic", topic, "error", err)
	}
}

// recordTallies persists lifetime counters, independent of the run journal.
func (o *Orchestrator) recordTallies(report *Report) {
	if o.tallies == nil {
		return
	}
	o.tallies.Increment("runs_total")
	for phase, s := range report.Phases {
		o.tallies.IncrementBy(phase+"_migrated", int64(s.Migrated))
		o.tallies.IncrementBy(phase+"_errors", int64(s.Errors))
	}
}

func (o *Orchestrator) notify(report *Report, dryRun bool) {
	if o.notifier == nil {
		return
	}
	summary := notifier.MigrationSummary{
		RunID:     report.RunID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		HadErrors: report.HadErrors(),
	}
	for _, phase := range phaseOrder {
		s := report.Phases[phase]
		summary.Phases = append(summary.Phases, notifier.PhaseSummary{
			Phase:     phase,
			Processed: s.Processed,
			Migrated:  s.Migrated,
			Errors:    s.Errors,
		})
	}
	if err := o.notifier.SendMigrationSummary(summary, dryRun); err != nil {
		log.Error("Failed to send migration summary", "error", err)
	}

	var lines []string
	for _, w := range report.Warnings {
		lines = append(lines, string(w.Kind)+" ["+w.MatchRef+"]: "+w.Detail)
	}
	if err := o.notifier.SendOperatorWarnings(report.RunID, lines, dryRun); err != nil {
		log.Error("Failed to send operator warnings", "error", err)
	}
}

// MergePlayers folds one player's career into another and soft-deactivates
// the source. Both documents are rewritten in a single transaction.
func (o *Orchestrator) MergePlayers(ctx context.Context, sourceID, targetID string) error {
	err := o.store.RunTransaction(ctx, func(tx docstore.Transaction) error {
		var src, dst cricket.Player
		if err := tx.Get(cricket.CollectionPlayers, sourceID, &src); err != nil {
			return crerr.Wrapf(err, "load source player %s", sourceID)
		}
		if err := tx.Get(cricket.CollectionPlayers, targetID, &dst); err != nil {
			return crerr.Wrapf(err, "load target player %s", targetID)
		}
		if err := stats.MergePlayers(&dst, &src, o.now().UTC()); err != nil {
			return err
		}
		if err := tx.Set(cricket.CollectionPlayers, targetID, &dst); err != nil {
			return err
		}
		return tx.Set(cricket.CollectionPlayers, sourceID, &src)
	})
	if err != nil {
		return err
	}
	if o.tallies != nil {
		o.tallies.Increment("players_merged")
	}
	o.publish(pubsub.EventEntityMerged, pubsub.ProgressEvent{
		RunID: sourceID + "->" + targetID,
		At:    o.now().Unix(),
	})
	log.Info("Merged players", "sourceId", sourceID, "targetId", targetID)
	return nil
}

// prime loads the current store contents into the run's working set and the
// resolver indexes. On a wiped run the collections are empty and this is a
// no-op; on an incremental or resumed run it is what makes the entity phases
// idempotent.
func (r *run) prime(ctx context.Context) error {
	store := r.o.store

	teamDocs, err := store.GetAll(ctx, cricket.CollectionTeams)
	if err != nil {
		return crerr.Wrap(err, "load teams")
	}
	for _, doc := range teamDocs {
		var team cricket.Team
		if err := doc.DataTo(&team); err != nil {
			return crerr.Wrapf(err, "decode team %s", doc.ID())
		}
		r.st.teams[team.TeamID] = &team
		r.rc.RegisterTeam(team.Name, team.TeamID)
	}

	playerDocs, err := store.GetAll(ctx, cricket.CollectionPlayers)
	if err != nil {
		return crerr.Wrap(err, "load players")
	}
	for _, doc := range playerDocs {
		var player cricket.Player
		if err := doc.DataTo(&player); err != nil {
			return crerr.Wrapf(err, "decode player %s", doc.ID())
		}
		r.st.players[player.PlayerID] = &player
		r.rc.RegisterPlayer(player.Name, player.PlayerID)
	}

	matchDocs, err := store.GetAll(ctx, cricket.CollectionMatches)
	if err != nil {
		return crerr.Wrap(err, "load matches")
	}
	for _, doc := range matchDocs {
		var match cricket.Match
		if err := doc.DataTo(&match); err != nil {
			return crerr.Wrapf(err, "decode match %s", doc.ID())
		}
		r.st.matches = append(r.st.matches, &match)
		r.st.externalRefs[match.ExternalRef] = true
	}

	tournamentDocs, err := store.GetAll(ctx, cricket.CollectionTournaments)
	if err != nil {
		return crerr.Wrap(err, "load tournaments")
	}
	for _, doc := range tournamentDocs {
		var t cricket.Tournament
		if err := doc.DataTo(&t); err != nil {
			return crerr.Wrapf(err, "decode tournament %s", doc.ID())
		}
		r.st.tournaments[t.Name] = t.TournamentID
	}

	log.Info("Primed run state", "teams", len(r.st.teams), "players", len(r.st.players), "matches", len(r.st.matches), "tournaments", len(r.st.tournaments))
	return nil
}
