package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendMigrationSummaryFunc func(summary MigrationSummary, dryRun bool) error
	SendOperatorWarningsFunc func(runID string, warnings []string, dryRun bool) error

	// Call records
	SendMigrationSummaryCalls []MigrationSummary
	SendOperatorWarningsCalls []struct {
		RunID    string
		Warnings []string
	}
}

// NewMock creates a new mock Notifier.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendMigrationSummary(summary MigrationSummary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMigrationSummaryCalls = append(m.SendMigrationSummaryCalls, summary)
	if m.SendMigrationSummaryFunc != nil {
		return m.SendMigrationSummaryFunc(summary, dryRun)
	}
	return nil
}

func (m *Mock) SendOperatorWarnings(runID string, warnings []string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendOperatorWarningsCalls = append(m.SendOperatorWarningsCalls, struct {
		RunID    string
		Warnings []string
	}{RunID: runID, Warnings: warnings})
	if m.SendOperatorWarningsFunc != nil {
		return m.SendOperatorWarningsFunc(runID, warnings, dryRun)
	}
	return nil
}
