package resolver

// Index is an in-memory normalized-name → entity-ID index. It is rebuilt
// fresh at the start of each migration run and is process-scoped, never
// persisted. Insertion order is preserved so "first candidate found" is
// deterministic, which Go's map iteration would not give us.
type Index struct {
	ids     map[string]string
	ordered []Entry
}

// Entry is one indexed name.
type Entry struct {
	Name string // normalized
	ID   string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{ids: make(map[string]string)}
}

// Add registers a normalized name. The first registration of a name wins;
// later duplicates are ignored.
func (ix *Index) Add(normalized, id string) {
	if normalized == "" {
		return
	}
	if _, exists := ix.ids[normalized]; exists {
		return
	}
	ix.ids[normalized] = id
	ix.ordered = append(ix.ordered, Entry{Name: normalized, ID: id})
}

// Lookup returns the ID registered for an exact normalized name.
func (ix *Index) Lookup(normalized string) (string, bool) {
	id, ok := ix.ids[normalized]
	return id, ok
}

// Entries returns the indexed names in insertion order.
func (ix *Index) Entries() []Entry {
	return ix.ordered
}

// Len reports the number of indexed names.
func (ix *Index) Len() int {
	return len(ix.ordered)
}
