package docstore

import (
	"context"

	crerr "github.com/cockroachdb/errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = crerr.New("document not found")

// Store is the document-store contract the rest of the application is written
// against: collection-scoped reads with query-by-field, single-document
// writes, atomic batches and a transactional read-modify-write primitive.
type Store interface {
	// Get reads a single document into out. Returns ErrNotFound when absent.
	Get(ctx context.Context, collection, id string, out any) error
	// GetAll returns every document in a collection matching the filters.
	GetAll(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// Set creates or fully overwrites a document.
	Set(ctx context.Context, collection, id string, doc any) error
	// Update applies field-level updates to an existing document.
	Update(ctx context.Context, collection, id string, updates []Update) error
	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// DeleteAll removes every document in a collection and returns the count.
	DeleteAll(ctx context.Context, collection string) (int, error)
	// Batch starts a new atomic write batch.
	Batch() Batch
	// RunTransaction executes fn inside the store's transaction primitive.
	// The store may retry fn on write conflicts; fn must be idempotent.
	RunTransaction(ctx context.Context, fn func(tx Transaction) error) error
	// Close releases the underlying client.
	Close() error
}

// Filter is a single field predicate for GetAll.
type Filter struct {
	Path  string
	Op    string // "==", "<", "<=", ">", ">="
	Value any
}

// Update is one field-level mutation for Update.
type Update struct {
	Path  string
	Value any
}

// Document is a read result: an ID plus lazily-decoded data.
type Document interface {
	ID() string
	// DataTo decodes the document into a struct pointer.
	DataTo(out any) error
	// Data returns the raw document as a map, for schemaless passes over
	// legacy layouts.
	Data() map[string]any
}

// Batch accumulates writes that commit atomically.
type Batch interface {
	Set(collection, id string, doc any)
	Update(collection, id string, updates []Update)
	Delete(collection, id string)
	Len() int
	Commit(ctx context.Context) error
}

// Transaction is the view of the store inside RunTransaction. All reads must
// happen before all writes, per the underlying store's rules.
type Transaction interface {
	Get(collection, id string, out any) error
	Set(collection, id string, doc any) error
}
