package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wagonwheel/crickstats/internal/config"
	"github.com/wagonwheel/crickstats/internal/database"
	"github.com/wagonwheel/crickstats/internal/docstore"
	server "github.com/wagonwheel/crickstats/internal/http"
	"github.com/wagonwheel/crickstats/internal/journal"
	"github.com/wagonwheel/crickstats/internal/metrics"
	"github.com/wagonwheel/crickstats/internal/migration"
	"github.com/wagonwheel/crickstats/internal/notifier/slack"
	"github.com/wagonwheel/crickstats/internal/pubsub"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	db, dbTeardown, err := database.InitDB(cfg.JournalDBName, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Journal database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize journal database: %s", err)
	}
	defer func() {
		log.Info("Closing journal database connection")
		dbTeardown()
	}()

	ctx := context.Background()
	store, err := docstore.NewFirestore(ctx, cfg.ProjectID, cfg.Firestore.DatabaseID)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %s", err)
	}
	defer store.Close()

	jrnl := journal.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	tallies := metrics.New(db)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	pubsub := pubsub.New(cfg.ProjectID)
	migrator := migration.New(store, jrnl, metricsSvc, tallies, pubsub, notifier)

	s := server.NewServer(
		store,
		metricsSvc,
		metricsHandler,
		cfg,
		migrator,
		pubsub,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
