package journal

import (
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a Journal backed by the given SQLite database.
func New(db *sql.DB) Journal {
	return &store{db: db}
}

func (s *store) StartRun(runID, corpusPath string, wipe bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO migration_runs (id, corpus_path, wipe, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		runID, corpusPath, boolToInt(wipe), StatusRunning, time.Now().Unix())
	return crerr.Wrapf(err, "start run %s", runID)
}

func (s *store) CompleteRun(runID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE migration_runs SET status = ?, completed_at = ? WHERE id = ?`,
		status, time.Now().Unix(), runID)
	return crerr.Wrapf(err, "complete run %s", runID)
}

func (s *store) LatestIncompleteRun() (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT id, corpus_path, wipe, status, started_at, completed_at
		FROM migration_runs
		WHERE status = ?
		ORDER BY started_at DESC
		LIMIT 1`, StatusRunning)

	var run Run
	var wipe int
	var startedAt int64
	var completedAt sql.NullInt64
	err := row.Scan(&run.ID, &run.CorpusPath, &wipe, &run.Status, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrap(err, "query latest incomplete run")
	}
	run.Wipe = wipe != 0
	run.StartedAt = time.Unix(startedAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		run.CompletedAt = &t
	}
	return &run, nil
}

func (s *store) SaveCheckpoint(runID, phase string, offset int, completed bool, stats PhaseStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := msgpack.Marshal(stats)
	if err != nil {
		return crerr.Wrap(err, "encode phase stats")
	}
	_, err = s.db.Exec(`
		INSERT INTO phase_checkpoints (run_id, phase, item_offset, completed, stats_blob, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, phase) DO UPDATE SET
			item_offset = excluded.item_offset,
			completed = excluded.completed,
			stats_blob = excluded.stats_blob,
			updated_at = excluded.updated_at`,
		runID, phase, offset, boolToInt(completed), blob, time.Now().Unix())
	return crerr.Wrapf(err, "save checkpoint %s/%s", runID, phase)
}

func (s *store) Checkpoint(runID, phase string) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT run_id, phase, item_offset, completed, stats_blob, updated_at
		FROM phase_checkpoints
		WHERE run_id = ? AND phase = ?`, runID, phase)
	cp, err := scanCheckpoint(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "query checkpoint %s/%s", runID, phase)
	}
	return cp, nil
}

func (s *store) Checkpoints(runID string) ([]Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT run_id, phase, item_offset, completed, stats_blob, updated_at
		FROM phase_checkpoints
		WHERE run_id = ?
		ORDER BY updated_at ASC`, runID)
	if err != nil {
		return nil, crerr.Wrapf(err, "query checkpoints %s", runID)
	}
	defer rows.Close()

	var checkpoints []Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows.Scan)
		if err != nil {
			return nil, crerr.Wrap(err, "scan checkpoint row")
		}
		checkpoints = append(checkpoints, *cp)
	}
	return checkpoints, rows.Err()
}

func scanCheckpoint(scan func(...any) error) (*Checkpoint, error) {
	var cp Checkpoint
	var completed int
	var blob []byte
	var updatedAt int64
	if err := scan(&cp.RunID, &cp.Phase, &cp.Offset, &completed, &blob, &updatedAt); err != nil {
		return nil, err
	}
	cp.Completed = completed != 0
	cp.UpdatedAt = time.Unix(updatedAt, 0)
	if len(blob) > 0 {
		if err := msgpack.Unmarshal(blob, &cp.Stats); err != nil {
			return nil, crerr.Wrap(err, "decode phase stats")
		}
	}
	return &cp, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
