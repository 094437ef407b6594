package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncMigrated(entityType string)
	IncMigrationErrors(entityType string)
	IncResolverMatch(tier string)
	IncOperatorWarnings(kind string)
	ObservePhaseDuration(phase string, seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(seconds float64)
}

// MetricsStore persists lifetime tallies across runs, independent of the
// process-scoped Prometheus registry.
type MetricsStore interface {
	Increment(key string)
	IncrementBy(key string, delta int64)
	GetAll() (map[string]int64, error)
}
