package batch

import (
	"context"
	"sync"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagonwheel/crickstats/internal/docstore"
)

func TestFlushCommitsPartialChunk(t *testing.T) {
	store := docstore.NewMemory()
	w, err := New(store, 2)
	require.NoError(t, err)
	defer w.Close()

	ctx := context.Background()
	w.Set(ctx, "players", "p1", map[string]any{"name": "A"})
	w.Set(ctx, "players", "p2", map[string]any{"name": "B"})

	// Under the chunk size nothing has been committed yet.
	assert.Equal(t, 0, store.Len("players"))

	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 2, store.Len("players"))
	assert.Equal(t, 2, w.Committed())
}

func TestAutoFlushAtChunkSize(t *testing.T) {
	store := docstore.NewMemory()
	w, err := New(store, 2, WithChunkSize(3))
	require.NoError(t, err)
	defer w.Close()

	ctx := context.Background()
	for i := 0; i < 7; i++ {
		w.Set(ctx, "players", string(rune('a'+i)), map[string]any{"n": i})
	}
	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 7, store.Len("players"))
	assert.Equal(t, 7, w.Committed())
}

func TestFlushEmptyWriter(t *testing.T) {
	store := docstore.NewMemory()
	w, err := New(store, 1)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Flush(context.Background()))
	assert.Equal(t, 0, w.Committed())
}

func TestDryRunDiscardsChunks(t *testing.T) {
	store := docstore.NewMemory()
	w, err := New(store, 2, WithChunkSize(2), WithDryRun(true))
	require.NoError(t, err)
	defer w.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		w.Set(ctx, "players", string(rune('a'+i)), map[string]any{"n": i})
	}
	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 0, store.Len("players"))
	assert.Equal(t, 0, w.Committed())
}

func TestMixedOperations(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "players", "stale", map[string]any{"name": "old"}))
	require.NoError(t, store.Set(ctx, "players", "keep", map[string]any{"name": "keep", "runs": 1}))

	w, err := New(store, 2)
	require.NoError(t, err)
	defer w.Close()

	w.Set(ctx, "players", "fresh", map[string]any{"name": "new"})
	w.Update(ctx, "players", "keep", []docstore.Update{{Path: "runs", Value: 9}})
	w.Delete(ctx, "players", "stale")
	require.NoError(t, w.Flush(ctx))

	assert.Equal(t, []string{"fresh", "keep"}, store.IDs("players"))
	var kept map[string]any
	require.NoError(t, store.Get(ctx, "players", "keep", &kept))
	assert.Equal(t, float64(9), kept["runs"])
}

// failingBatchStore wraps the in-memory store with batches that fail commit.
type failingBatchStore struct {
	docstore.Store
	mu       sync.Mutex
	failures int
}

func (s *failingBatchStore) Batch() docstore.Batch {
	return &failingBatch{Batch: s.Store.Batch(), store: s}
}

type failingBatch struct {
	docstore.Batch
	store *failingBatchStore
}

func (b *failingBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	fail := b.store.failures > 0
	if fail {
		b.store.failures--
	}
	b.store.mu.Unlock()
	if fail {
		return crerr.New("commit refused")
	}
	return b.Batch.Commit(ctx)
}

func TestFlushReturnsFirstCommitError(t *testing.T) {
	store := &failingBatchStore{Store: docstore.NewMemory(), failures: 1}
	w, err := New(store, 1, WithChunkSize(1))
	require.NoError(t, err)
	defer w.Close()

	ctx := context.Background()
	w.Set(ctx, "players", "p1", map[string]any{"name": "A"}) // fails
	w.Set(ctx, "players", "p2", map[string]any{"name": "B"}) // lands

	err = w.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit refused")
	assert.Equal(t, 1, w.Committed())

	// The error is consumed; a subsequent Flush starts clean.
	w.Set(ctx, "players", "p3", map[string]any{"name": "C"})
	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 2, w.Committed())
}
