package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	migrated         map[string]int
	migrationErrors  map[string]int
	resolverMatches  map[string]int
	operatorWarnings map[string]int
	phaseDurations   map[string][]float64
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		migrated:         make(map[string]int),
		migrationErrors:  make(map[string]int),
		resolverMatches:  make(map[string]int),
		operatorWarnings: make(map[string]int),
		phaseDurations:   make(map[string][]float64),
	}
}

func (m *Mock) IncMigrated(entityType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrated[entityType]++
}

func (m *Mock) IncMigrationErrors(entityType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrationErrors[entityType]++
}

func (m *Mock) IncResolverMatch(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolverMatches[tier]++
}

func (m *Mock) IncOperatorWarnings(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operatorWarnings[kind]++
}

func (m *Mock) ObservePhaseDuration(phase string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseDurations[phase] = append(m.phaseDurations[phase], seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// Migrated returns the recorded count for an entity type.
func (m *Mock) Migrated(entityType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrated[entityType]
}

// MigrationErrors returns the recorded error count for an entity type.
func (m *Mock) MigrationErrors(entityType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrationErrors[entityType]
}

// ResolverMatches returns the recorded count for a match tier.
func (m *Mock) ResolverMatches(tier string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolverMatches[tier]
}

// SlackNotifSent returns the recorded number of successful Slack sends.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the recorded number of failed Slack sends.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// OperatorWarnings returns the recorded count for a warning kind.
func (m *Mock) OperatorWarnings(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operatorWarnings[kind]
}
