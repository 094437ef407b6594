package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// Memory is an in-process Store used by tests and dry runs. Documents are
// kept as JSON blobs so typed reads and schemaless map reads behave like the
// real store.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
	order       map[string][]string // per-collection insertion order
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string][]byte),
		order:       make(map[string][]string),
	}
}

func (m *Memory) Get(ctx context.Context, collection, id string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(collection, id, out)
}

func (m *Memory) get(collection, id string, out any) error {
	blob, ok := m.collections[collection][id]
	if !ok {
		return crerr.Mark(crerr.Newf("%s/%s", collection, id), ErrNotFound)
	}
	return sonic.Unmarshal(blob, out)
}

func (m *Memory) GetAll(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var docs []Document
	for _, id := range m.order[collection] {
		blob, ok := m.collections[collection][id]
		if !ok {
			continue
		}
		var data map[string]any
		if err := sonic.Unmarshal(blob, &data); err != nil {
			return nil, err
		}
		if !matchesFilters(data, filters) {
			continue
		}
		docs = append(docs, &memoryDoc{id: id, blob: blob, data: data})
	}
	return docs, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(collection, id, doc)
}

func (m *Memory) set(collection, id string, doc any) error {
	blob, err := sonic.Marshal(doc)
	if err != nil {
		return err
	}
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string][]byte)
	}
	if _, exists := m.collections[collection][id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	m.collections[collection][id] = blob
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, updates []Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data map[string]any
	if err := m.get(collection, id, &data); err != nil {
		return err
	}
	for _, u := range updates {
		setPath(data, u.Path, u.Value)
	}
	return m.set(collection, id, data)
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) DeleteAll(ctx context.Context, collection string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.collections[collection])
	delete(m.collections, collection)
	delete(m.order, collection)
	return n, nil
}

func (m *Memory) Batch() Batch {
	return &memoryBatch{store: m}
}

// RunTransaction holds the store lock for the duration of fn, which gives the
// same single-writer guarantee the real store's transactions provide.
func (m *Memory) RunTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memoryTx{store: m})
}

func (m *Memory) Close() error { return nil }

// Len reports the number of documents in a collection, for test assertions.
func (m *Memory) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collections[collection])
}

// IDs returns the sorted document IDs of a collection, for test assertions.
func (m *Memory) IDs(collection string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type memoryDoc struct {
	id   string
	blob []byte
	data map[string]any
}

func (d *memoryDoc) ID() string { return d.id }

func (d *memoryDoc) DataTo(out any) error { return sonic.Unmarshal(d.blob, out) }

func (d *memoryDoc) Data() map[string]any { return d.data }

type memoryBatch struct {
	store *Memory
	ops   []func() error
	n     int
}

func (b *memoryBatch) Set(collection, id string, doc any) {
	blob, err := sonic.Marshal(doc)
	b.ops = append(b.ops, func() error {
		if err != nil {
			return err
		}
		var copied any
		if err := sonic.Unmarshal(blob, &copied); err != nil {
			return err
		}
		return b.store.set(collection, id, copied)
	})
	b.n++
}

func (b *memoryBatch) Update(collection, id string, updates []Update) {
	b.ops = append(b.ops, func() error {
		var data map[string]any
		if err := b.store.get(collection, id, &data); err != nil {
			return err
		}
		for _, u := range updates {
			setPath(data, u.Path, u.Value)
		}
		return b.store.set(collection, id, data)
	})
	b.n++
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, func() error {
		delete(b.store.collections[collection], id)
		return nil
	})
	b.n++
}

func (b *memoryBatch) Len() int { return b.n }

func (b *memoryBatch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, op := range b.ops {
		if err := op(); err != nil {
			return err
		}
	}
	b.ops = nil
	b.n = 0
	return nil
}

type memoryTx struct {
	store *Memory
}

func (t *memoryTx) Get(collection, id string, out any) error {
	return t.store.get(collection, id, out)
}

func (t *memoryTx) Set(collection, id string, doc any) error {
	return t.store.set(collection, id, doc)
}

func matchesFilters(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := lookupPath(data, f.Path)
		if !ok {
			return false
		}
		switch f.Op {
		case "==":
			if !looseEqual(v, f.Value) {
				return false
			}
		default:
			// Only equality is needed by this codebase.
			return false
		}
	}
	return true
}

func lookupPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = data
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func setPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := data
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// looseEqual compares across the numeric widenings JSON decoding introduces.
func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
