package journal

// Journal records migration progress so a failed multi-minute run over
// thousands of documents can be diagnosed and resumed instead of leaving
// only log output behind.
type Journal interface {
	StartRun(runID, corpusPath string, wipe bool) error
	CompleteRun(runID, status string) error
	LatestIncompleteRun() (*Run, error)
	SaveCheckpoint(runID, phase string, offset int, completed bool, stats PhaseStats) error
	Checkpoint(runID, phase string) (*Checkpoint, error)
	Checkpoints(runID string) ([]Checkpoint, error)
}
