package migration

import "context"

var _ Migrator = (*Mock)(nil)

// Mock is a spy implementation of the Migrator interface for testing.
type Mock struct {
	RunFunc          func(ctx context.Context, opts Options) (*Report, error)
	MergePlayersFunc func(ctx context.Context, sourceID, targetID string) error

	RunCalls          []Options
	MergePlayersCalls []MergePlayersCall
}

// MergePlayersCall records the arguments of one MergePlayers invocation.
type MergePlayersCall struct {
	SourceID string
	TargetID string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Run(ctx context.Context, opts Options) (*Report, error) {
	m.RunCalls = append(m.RunCalls, opts)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, opts)
	}
	return &Report{RunID: opts.RunID}, nil
}

func (m *Mock) MergePlayers(ctx context.Context, sourceID, targetID string) error {
	m.MergePlayersCalls = append(m.MergePlayersCalls, MergePlayersCall{SourceID: sourceID, TargetID: targetID})
	if m.MergePlayersFunc != nil {
		return m.MergePlayersFunc(ctx, sourceID, targetID)
	}
	return nil
}
