package journal

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/database"
)

func newTestJournal(t *testing.T) (Journal, *sql.DB) {
	t.Helper()
	db, teardown, err := database.InitDB(filepath.Join(t.TempDir(), "journal.db"), "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return New(db), db
}

func TestRunLifecycle(t *testing.T) {
	jrnl, _ := newTestJournal(t)

	require.NoError(t, jrnl.StartRun("run-1", "./data/matches.json", true))

	run, err := jrnl.LatestIncompleteRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "./data/matches.json", run.CorpusPath)
	assert.True(t, run.Wipe)
	assert.Equal(t, StatusRunning, run.Status)
	assert.False(t, run.StartedAt.IsZero())
	assert.Nil(t, run.CompletedAt)

	require.NoError(t, jrnl.CompleteRun("run-1", StatusCompleted))

	run, err = jrnl.LatestIncompleteRun()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestLatestIncompleteRunNoRows(t *testing.T) {
	jrnl, _ := newTestJournal(t)

	run, err := jrnl.LatestIncompleteRun()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestLatestIncompleteRunSkipsFinished(t *testing.T) {
	jrnl, db := newTestJournal(t)

	require.NoError(t, jrnl.StartRun("run-old", "a.json", false))
	require.NoError(t, jrnl.StartRun("run-new", "b.json", false))
	// Force a deterministic ordering regardless of clock resolution.
	_, err := db.Exec(`UPDATE migration_runs SET started_at = 100 WHERE id = 'run-old'`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE migration_runs SET started_at = 200 WHERE id = 'run-new'`)
	require.NoError(t, err)

	run, err := jrnl.LatestIncompleteRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-new", run.ID)

	require.NoError(t, jrnl.CompleteRun("run-new", StatusFailed))

	run, err = jrnl.LatestIncompleteRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "run-old", run.ID)
}

func TestSaveCheckpointUpsert(t *testing.T) {
	jrnl, _ := newTestJournal(t)
	require.NoError(t, jrnl.StartRun("run-1", "a.json", false))

	require.NoError(t, jrnl.SaveCheckpoint("run-1", "matches", 25, false, PhaseStats{Processed: 25, Migrated: 24, Errors: 1}))

	cp, err := jrnl.Checkpoint("run-1", "matches")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 25, cp.Offset)
	assert.False(t, cp.Completed)
	assert.Equal(t, PhaseStats{Processed: 25, Migrated: 24, Errors: 1}, cp.Stats)

	// Same run and phase again replaces the row rather than adding one.
	require.NoError(t, jrnl.SaveCheckpoint("run-1", "matches", 50, true, PhaseStats{Processed: 50, Migrated: 48, Errors: 2}))

	cp, err = jrnl.Checkpoint("run-1", "matches")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 50, cp.Offset)
	assert.True(t, cp.Completed)
	assert.Equal(t, PhaseStats{Processed: 50, Migrated: 48, Errors: 2}, cp.Stats)

	all, err := jrnl.Checkpoints("run-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCheckpointMissing(t *testing.T) {
	jrnl, _ := newTestJournal(t)

	cp, err := jrnl.Checkpoint("run-1", "teams")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestCheckpointsAcrossPhasesAndRuns(t *testing.T) {
	jrnl, _ := newTestJournal(t)
	require.NoError(t, jrnl.StartRun("run-1", "a.json", false))
	require.NoError(t, jrnl.StartRun("run-2", "b.json", false))

	require.NoError(t, jrnl.SaveCheckpoint("run-1", "teams", 4, true, PhaseStats{Processed: 4, Migrated: 4}))
	require.NoError(t, jrnl.SaveCheckpoint("run-1", "players", 9, true, PhaseStats{Processed: 9, Migrated: 8, Errors: 1}))
	require.NoError(t, jrnl.SaveCheckpoint("run-2", "teams", 2, false, PhaseStats{Processed: 2, Migrated: 2}))

	all, err := jrnl.Checkpoints("run-1")
	require.NoError(t, err)
	require.Len(t, all, 2)

	byPhase := make(map[string]Checkpoint, len(all))
	for _, cp := range all {
		byPhase[cp.Phase] = cp
	}
	assert.Equal(t, 4, byPhase["teams"].Offset)
	assert.True(t, byPhase["teams"].Completed)
	assert.Equal(t, PhaseStats{Processed: 9, Migrated: 8, Errors: 1}, byPhase["players"].Stats)
	assert.False(t, byPhase["players"].UpdatedAt.IsZero())
}
