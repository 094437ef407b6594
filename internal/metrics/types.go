package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Migrated           *prometheus.CounterVec
	MigrationErrors    *prometheus.CounterVec
	ResolverMatches    *prometheus.CounterVec
	OperatorWarnings   *prometheus.CounterVec
	PhaseDuration      *prometheus.HistogramVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
