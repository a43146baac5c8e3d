package wcx

import (
	"sort"
	"sync"
)

// Store maps component names to records. It is the source of truth for
// what a Builder knows locally.
//
// Records are cloned on the way in and out, so callers may keep mutating
// their own copies. A Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Put stores rec under its name, replacing any earlier record.
// It reports whether a record was replaced.
func (s *Store) Put(rec *Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.records[rec.Name]
	s.records[rec.Name] = rec.Clone()
	return replaced
}

// Get returns a copy of the record stored under name.
func (s *Store) Get(name string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[name]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Names returns the stored names in lexical order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
