package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	crerr "github.com/cockroachdb/errors"
	"github.com/wagonwheel/crickstats/internal/cricket"
	"github.com/wagonwheel/crickstats/internal/docstore"
)

// EntityType names one logical counter.
type EntityType string

const (
	Matches     EntityType = "matches"
	Players     EntityType = "players"
	Teams       EntityType = "teams"
	Innings     EntityType = "innings"
	Tournaments EntityType = "tournaments"
)

// All lists every counter, in reset order.
var All = []EntityType{Matches, Players, Teams, Innings, Tournaments}

// ErrWriteConflict marks counter updates that kept losing the transactional
// race after all retries.
var ErrWriteConflict = crerr.New("counter write conflict")

// Allocator issues monotonically increasing integers per entity type via the
// store's transactional read-modify-write, never via read-then-separate-write.
type Allocator struct {
	store       docstore.Store
	now         func() time.Time
	maxAttempts int
	baseDelay   time.Duration
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// WithRetry overrides the conflict retry policy.
func WithRetry(attempts int, base time.Duration) Option {
	return func(a *Allocator) {
		a.maxAttempts = attempts
		a.baseDelay = base
	}
}

// New creates an Allocator. Contention is expected under batch migration, so
// aborted transactions are retried with exponential backoff before surfacing.
func New(store docstore.Store, opts ...Option) *Allocator {
	a := &Allocator{
		store:       store,
		now:         time.Now,
		maxAttempts: 5,
		baseDelay:   50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextValue atomically increments the counter for entityType and returns the
// new value. No two concurrent callers can observe the same pre-increment
// value.
func (a *Allocator) NextValue(ctx context.Context, entityType EntityType) (int64, error) {
	var next int64
	var lastErr error
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := a.baseDelay << (attempt - 1)
			log.Debug("Retrying counter increment", "entityType", entityType, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
		lastErr = a.store.RunTransaction(ctx, func(tx docstore.Transaction) error {
			var counter cricket.SequenceCounter
			err := tx.Get(cricket.CollectionCounters, string(entityType), &counter)
			if err != nil && !crerr.Is(err, docstore.ErrNotFound) {
				return err
			}
			counter.CurrentValue++
			next = counter.CurrentValue
			return tx.Set(cricket.CollectionCounters, string(entityType), counter)
		})
		if lastErr == nil {
			return next, nil
		}
	}
	return 0, crerr.Mark(crerr.Wrapf(lastErr, "increment %s after %d attempts", entityType, a.maxAttempts), ErrWriteConflict)
}

// Allocate issues one sequence value and derives both identifiers from it:
// the 19-digit stable internal ID (millisecond timestamp prefix plus a
// zero-padded 6-digit sequence suffix) and the small-integer display ID.
// The two are distinct types and must never be confused.
func (a *Allocator) Allocate(ctx context.Context, entityType EntityType) (id string, displayID int64, err error) {
	seq, err := a.NextValue(ctx, entityType)
	if err != nil {
		return "", 0, err
	}
	id = fmt.Sprintf("%013d%06d", a.now().UnixMilli(), seq%1000000)
	return id, seq, nil
}

// NewDisplayID synthesizes a time-ordered external identifier: a
// YYYYMMDDHHMMSS timestamp prefix plus a zero-padded 7-digit sequence
// suffix, so lexicographic order approximates creation order even across
// entity types.
func (a *Allocator) NewDisplayID(ctx context.Context, entityType EntityType) (string, error) {
	seq, err := a.NextValue(ctx, entityType)
	if err != nil {
		return "", err
	}
	return a.now().UTC().Format("20060102150405") + fmt.Sprintf("%07d", seq), nil
}

// ResetAll zeroes every counter. Run only as part of an explicit full
// migration that also wipes the entity collections.
func (a *Allocator) ResetAll(ctx context.Context) error {
	for _, entityType := range All {
		err := a.store.Set(ctx, cricket.CollectionCounters, string(entityType), cricket.SequenceCounter{CurrentValue: 0})
		if err != nil {
			return crerr.Wrapf(err, "reset counter %s", entityType)
		}
	}
	log.Info("Sequence counters reset", "counters", len(All))
	return nil
}
