package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	corpusPath    string
	journalDB     string
	migrationsDir string
	projectID     string
	databaseID    string
	dryRun        bool
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run and inspect crickstats data migrations",
	Long: `A command-line interface for running the raw-corpus migration directly,
resuming interrupted runs and inspecting the run journal.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "./data/matches.json", "Path to the raw corpus JSON file")
	rootCmd.PersistentFlags().StringVar(&journalDB, "journal-db", "./crickstats.db", "Path to the sqlite journal database")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "./migrations", "Path to the journal schema migrations")
	rootCmd.PersistentFlags().StringVar(&projectID, "project", os.Getenv("GCP_PROJECT"), "GCP project ID")
	rootCmd.PersistentFlags().StringVar(&databaseID, "database", "(default)", "Firestore database ID")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log writes instead of committing them")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
