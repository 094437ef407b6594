// Package batch provides the one chunked-write component every migration
// phase shares: a bounded queue that flushes full chunks as atomic batches,
// committing them on a bounded worker pool.
package batch

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/wagonwheel/crickstats/internal/docstore"
)

const (
	// DefaultChunkSize stays under the store's 500-op batch cap.
	DefaultChunkSize = 400
	// DefaultWorkers bounds how many chunk commits are in flight at once.
	DefaultWorkers = 4
)

// Writer accumulates document writes and commits them in fixed-size atomic
// chunks. It is not safe for concurrent producers; phases enqueue from a
// single goroutine and the pool fans out only the commits.
type Writer struct {
	store     docstore.Store
	chunkSize int
	dryRun    bool

	pool  *ants.Pool
	chunk docstore.Batch
	wg    sync.WaitGroup

	mu        sync.Mutex
	firstErr  error
	committed int
}

// Option configures a Writer.
type Option func(*Writer)

// WithChunkSize overrides the flush threshold.
func WithChunkSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.chunkSize = n
		}
	}
}

// WithDryRun makes Flush discard chunks instead of committing them.
func WithDryRun(dryRun bool) Option {
	return func(w *Writer) { w.dryRun = dryRun }
}

// New creates a Writer with its own commit pool. Close releases the pool.
func New(store docstore.Store, workers int, opts ...Option) (*Writer, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create commit pool")
	}
	w := &Writer{
		store:     store,
		chunkSize: DefaultChunkSize,
		pool:      pool,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Set queues a full-document write.
func (w *Writer) Set(ctx context.Context, collection, id string, doc any) {
	w.ensureChunk()
	w.chunk.Set(collection, id, doc)
	w.maybeFlush(ctx)
}

// Update queues field-level updates.
func (w *Writer) Update(ctx context.Context, collection, id string, updates []docstore.Update) {
	w.ensureChunk()
	w.chunk.Update(collection, id, updates)
	w.maybeFlush(ctx)
}

// Delete queues a document delete.
func (w *Writer) Delete(ctx context.Context, collection, id string) {
	w.ensureChunk()
	w.chunk.Delete(collection, id)
	w.maybeFlush(ctx)
}

func (w *Writer) ensureChunk() {
	if w.chunk == nil {
		w.chunk = w.store.Batch()
	}
}

func (w *Writer) maybeFlush(ctx context.Context) {
	if w.chunk.Len() >= w.chunkSize {
		w.flushAsync(ctx)
	}
}

// flushAsync hands the current chunk to the pool and starts a new one.
func (w *Writer) flushAsync(ctx context.Context) {
	chunk := w.chunk
	w.chunk = nil
	if chunk == nil || chunk.Len() == 0 {
		return
	}
	if w.dryRun {
		log.Debug("[Dry Run] Would commit chunk", "ops", chunk.Len())
		return
	}
	n := chunk.Len()
	w.wg.Add(1)
	err := w.pool.Submit(func() {
		defer w.wg.Done()
		if err := chunk.Commit(ctx); err != nil {
			w.recordErr(err)
			return
		}
		w.mu.Lock()
		w.committed += n
		w.mu.Unlock()
	})
	if err != nil {
		w.wg.Done()
		w.recordErr(crerr.Wrap(err, "submit chunk commit"))
	}
}

func (w *Writer) recordErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstErr == nil {
		w.firstErr = err
	}
	log.Error("Batch chunk commit failed", "error", err)
}

// Flush commits the partial chunk and waits for every in-flight commit. It
// returns the first commit error encountered since the last Flush.
func (w *Writer) Flush(ctx context.Context) error {
	w.flushAsync(ctx)
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.firstErr
	w.firstErr = nil
	return err
}

// Committed reports how many operations have been committed so far.
func (w *Writer) Committed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.committed
}

// Close waits for outstanding commits and releases the pool.
func (w *Writer) Close() {
	w.wg.Wait()
	w.pool.Release()
}
