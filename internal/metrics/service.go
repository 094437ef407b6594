package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Migrated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crickstats_entities_migrated_total",
			Help: "The total number of entities migrated, by entity type.",
		}, []string{"entity_type"}),
		MigrationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crickstats_migration_errors_total",
			Help: "The total number of per-item migration failures, by entity type.",
		}, []string{"entity_type"}),
		ResolverMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crickstats_resolver_matches_total",
			Help: "The total number of successful name resolutions, by match tier.",
		}, []string{"tier"}),
		OperatorWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crickstats_operator_warnings_total",
			Help: "The total number of conditions flagged to an operator, by kind.",
		}, []string{"kind"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crickstats_migration_phase_duration_seconds",
			Help:    "The duration of each migration phase.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"phase"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crickstats_slack_notifications_sent_total",
			Help: "The total number of Slack notifications sent successfully.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crickstats_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crickstats_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Migrated,
		s.MigrationErrors,
		s.ResolverMatches,
		s.OperatorWarnings,
		s.PhaseDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMigrated(entityType string) {
	s.Migrated.WithLabelValues(entityType).Inc()
}

func (s *Service) IncMigrationErrors(entityType string) {
	s.MigrationErrors.WithLabelValues(entityType).Inc()
}

func (s *Service) IncResolverMatch(tier string) {
	s.ResolverMatches.WithLabelValues(tier).Inc()
}

func (s *Service) IncOperatorWarnings(kind string) {
	s.OperatorWarnings.WithLabelValues(kind).Inc()
}

func (s *Service) ObservePhaseDuration(phase string, seconds float64) {
	s.PhaseDuration.WithLabelValues(phase).Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
