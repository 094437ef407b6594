package notifier

import "time"

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// SendMigrationSummary posts the final per-entity report of a migration run.
	SendMigrationSummary(summary MigrationSummary, dryRun bool) error
	// SendOperatorWarnings posts conditions that need a human decision:
	// unresolved winners, ambiguous fielder credits.
	SendOperatorWarnings(runID string, warnings []string, dryRun bool) error
}

// MigrationSummary is the provider-independent shape of a final run report.
type MigrationSummary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Phases    []PhaseSummary
	HadErrors bool
}

// PhaseSummary is one phase's tally within a summary.
type PhaseSummary struct {
	Phase     string
	Processed int
	Migrated  int
	Errors    int
}
