package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// store handles metric-related database operations: lifetime tallies that
// survive process restarts, kept in the journal database.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new metrics Store.
func New(db *sql.DB) MetricsStore {
	return &store{db: db}
}

// Increment upserts a metric key and increments its value by one.
func (s *store) Increment(key string) {
	s.IncrementBy(key, 1)
}

// IncrementBy upserts a metric key and adds delta to its value.
func (s *store) IncrementBy(key string, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metrics (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = value + excluded.value;
	`, key, delta)
	if err != nil {
		log.Error("Failed to increment metric", "error", err, "key", key)
	}
}

// GetAll returns every persisted tally.
func (s *store) GetAll() (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, value FROM metrics")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}
