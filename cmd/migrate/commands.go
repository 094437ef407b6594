package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/database"
	"github.com/wagonwheel/crickstats/internal/docstore"
	"github.com/wagonwheel/crickstats/internal/journal"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/migration"
	"github.com/wagonwheel/crickstats/internal/notifier"
	"github.com/wagonwheel/crickstats/internal/notifier/slack"
	"github.com/wagonwheel/crickstats/internal/sequence"
)

var wipeBeforeRun bool

func init() {
	runCmd.Flags().BoolVar(&wipeBeforeRun, "wipe", false, "Wipe derived collections and reset sequences first")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(reportCmd)
}

// deps is everything a direct (non-HTTP) migration needs.
type deps struct {
	store    docstore.Store
	journal  journal.Journal
	tallies  metrics.MetricsStore
	migrator *migration.Orchestrator
	teardown func()
}

func setup(cmd *cobra.Command) (*deps, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}
	if projectID == "" {
		return nil, fmt.Errorf("a GCP project is required (--project or GCP_PROJECT)")
	}

	db, dbTeardown, err := database.InitDB(journalDB, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("initialize journal database: %w", err)
	}

	store, err := docstore.NewFirestore(cmd.Context(), projectID, databaseID)
	if err != nil {
		dbTeardown()
		return nil, fmt.Errorf("initialize document store: %w", err)
	}

	metricsSvc := metrics.NewService()
	jrnl := journal.New(db)
	tallies := metrics.New(db)

	// Slack is optional for CLI runs; without a token the summary only goes
	// to the log.
	var notif notifier.Notifier
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		notif = slack.NewNotifier(token, os.Getenv("SLACK_CHANNEL_ID"), metricsSvc)
	}

	migrator := migration.New(store, jrnl, metricsSvc, tallies, nil, notif)
	return &deps{
		store:    store,
		journal:  jrnl,
		tallies:  tallies,
		migrator: migrator,
		teardown: func() {
			store.Close()
			dbTeardown()
		},
	}, nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full migration of the raw corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.teardown()

		report, err := d.migrator.Run(cmd.Context(), migration.Options{
			RunID:      uuid.NewString(),
			CorpusPath: corpusPath,
			Wipe:       wipeBeforeRun,
			DryRun:     dryRun,
		})
		if err != nil {
			return err
		}
		printReport(report)
		if report.HadErrors() {
			return fmt.Errorf("migration finished with per-item errors")
		}
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the latest interrupted migration run",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.teardown()

		run, err := d.journal.LatestIncompleteRun()
		if err != nil {
			return err
		}
		if run == nil {
			fmt.Println("No incomplete run to resume.")
			return nil
		}
		fmt.Printf("Resuming run %s (started %s)\n", run.ID, run.StartedAt.Format("2006-01-02 15:04:05"))

		report, err := d.migrator.Run(cmd.Context(), migration.Options{
			RunID:      run.ID,
			CorpusPath: run.CorpusPath,
			Wipe:       false,
			DryRun:     dryRun,
			Resume:     true,
		})
		if err != nil {
			return err
		}
		printReport(report)
		if report.HadErrors() {
			return fmt.Errorf("migration finished with per-item errors")
		}
		return nil
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all derived collections and reset sequence counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.teardown()

		for _, collection := range []string{
			cricket.CollectionMatches,
			cricket.CollectionPlayers,
			cricket.CollectionTeams,
			cricket.CollectionTournaments,
		} {
			if dryRun {
				fmt.Printf("[Dry Run] Would wipe %s\n", collection)
				continue
			}
			deleted, err := d.store.DeleteAll(cmd.Context(), collection)
			if err != nil {
				return fmt.Errorf("wipe %s: %w", collection, err)
			}
			fmt.Printf("Wiped %s (%d documents)\n", collection, deleted)
		}
		if dryRun {
			return nil
		}
		return sequence.New(d.store).ResetAll(cmd.Context())
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Print the journal checkpoints for a run and lifetime tallies",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.teardown()

		runID := ""
		if len(args) > 0 {
			runID = args[0]
		} else {
			run, err := d.journal.LatestIncompleteRun()
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Println("No incomplete run; pass a run ID to inspect a completed one.")
			} else {
				runID = run.ID
			}
		}

		if runID != "" {
			checkpoints, err := d.journal.Checkpoints(runID)
			if err != nil {
				return err
			}
			fmt.Printf("Run %s:\n", runID)
			for _, cp := range checkpoints {
				state := "in progress"
				if cp.Completed {
					state = "completed"
				}
				fmt.Printf("  %-16s %-12s processed=%d migrated=%d errors=%d offset=%d\n",
					cp.Phase, state, cp.Stats.Processed, cp.Stats.Migrated, cp.Stats.Errors, cp.Offset)
			}
		}

		tallies, err := d.tallies.GetAll()
		if err != nil {
			return err
		}
		fmt.Println("Lifetime tallies:")
		for key, value := range tallies {
			fmt.Printf("  %s = %d\n", key, value)
		}
		return nil
	},
}

func printReport(report *migration.Report) {
	fmt.Printf("Run %s finished in %s\n", report.RunID, report.Duration)
	for _, phase := range migration.Phases() {
		s := report.Phases[phase]
		fmt.Printf("  %-16s processed=%d migrated=%d errors=%d\n", phase, s.Processed, s.Migrated, s.Errors)
	}
	if len(report.Warnings) > 0 {
		fmt.Printf("Operator warnings (%d):\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Printf("  %s [%s]: %s\n", w.Kind, w.MatchRef, w.Detail)
		}
	}
}
