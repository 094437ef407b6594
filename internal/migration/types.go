package migration

import (
	"context"
	"time"

	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/journal"
	"github.com/wagonwheel/crickstats/internal/normalizer"
	"github.com/wagonwheel/crickstats/internal/source"
)

// Phase names, in execution order.
const (
	PhaseWipe           = "wipe"
	PhaseResetSequences = "reset-sequences"
	PhaseTeams          = "teams"
	PhasePlayers        = "players"
	PhaseMatches        = "matches"
	PhaseCaptains       = "captains"
	PhaseSquads         = "squads"
	PhaseRosters        = "rosters"
	PhaseTeamStats      = "team-stats"
)

// phaseOrder is the strict execution order. Derived-aggregate phases come
// last so they replay the full migrated match set.
var phaseOrder = []string{
	PhaseWipe,
	PhaseResetSequences,
	PhaseTeams,
	PhasePlayers,
	PhaseMatches,
	PhaseCaptains,
	PhaseSquads,
	PhaseRosters,
	PhaseTeamStats,
}

// Phases returns the phase names in execution order.
func Phases() []string {
	out := make([]string, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Options configures a single migration run.
type Options struct {
	// RunID identifies the run in the journal. Required.
	RunID string
	// CorpusPath is the raw export file to migrate.
	CorpusPath string
	// Wipe deletes all derived collections and resets sequences first.
	Wipe bool
	// DryRun logs every write instead of committing it.
	DryRun bool
	// Resume continues a previously interrupted run, skipping completed
	// phases and re-entering partial ones at their saved offset.
	Resume bool
}

// Report is the final per-entity outcome of a run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	// Phases maps phase name to its tallies, in phaseOrder.
	Phases map[string]journal.PhaseStats
	// Warnings are the operator-facing conditions raised during the run.
	Warnings []normalizer.Warning
}

// HadErrors reports whether any phase recorded a per-item failure.
func (r *Report) HadErrors() bool {
	for _, s := range r.Phases {
		if s.Errors > 0 {
			return true
		}
	}
	return false
}

// Migrator is the orchestrator contract the HTTP layer and CLI depend on.
type Migrator interface {
	Run(ctx context.Context, opts Options) (*Report, error)
	MergePlayers(ctx context.Context, sourceID, targetID string) error
}

// state is the in-memory working set shared by the phases of one run. A
// resumed run rebuilds it by priming from the store before any phase touches
// it, which is what makes the entity phases idempotent.
type state struct {
	corpus []source.RawMatch

	// players/teams cache every entity touched this run, keyed by ID. The
	// entity phases mutate these and persist them at phase boundaries.
	players map[string]*cricket.Player
	teams   map[string]*cricket.Team

	// matches is the full migrated match set, loaded or produced during the
	// matches phase and replayed by the aggregate phases.
	matches []*cricket.Match

	// tournaments maps tournament name to ID, deduplicated exactly.
	tournaments map[string]string

	// externalRefs indexes already-migrated matches so re-running the
	// matches phase never double-folds career stats.
	externalRefs map[string]bool

	warnings []normalizer.Warning
}
