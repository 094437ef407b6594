package journal

import (
	"database/sql"
	"sync"
	"time"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// store handles all journal database operations.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// Run is one migration run's journal row.
type Run struct {
	ID          string
	CorpusPath  string
	Wipe        bool
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Checkpoint records how far a phase got within a run. Stats is the
// msgpack-decoded per-phase tally blob.
type Checkpoint struct {
	RunID     string
	Phase     string
	Offset    int
	Completed bool
	Stats     PhaseStats
	UpdatedAt time.Time
}

// PhaseStats is the per-phase tally persisted with every checkpoint.
type PhaseStats struct {
	Processed int `msgpack:"processed"`
	Migrated  int `msgpack:"migrated"`
	Errors    int `msgpack:"errors"`
}
