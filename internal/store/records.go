package store

import (
	"sort"
	"sync"

	"go-data-processor/internal/model"
)

// RecordStore maps source names to ordered record sets. Ingestion adapters
// write whole sets; the execution engine and Join stages read them. Reads
// return copies so callers never alias the stored backing array.
type RecordStore struct {
	mu   sync.RWMutex
	sets map[string][]model.DataRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{sets: make(map[string][]model.DataRecord)}
}

// Put replaces the record set for a source.
func (s *RecordStore) Put(source string, records []model.DataRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[source] = records
}

// Get returns a copy of the named record set.
func (s *RecordStore) Get(source string) ([]model.DataRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.sets[source]
	if !ok {
		return nil, false
	}
	out := make([]model.DataRecord, len(records))
	copy(out, records)
	return out, true
}

// Sources lists the known source names in lexical order.
func (s *RecordStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sets))
	for name := range s.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of records held for a source.
func (s *RecordStore) Count(source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets[source])
}
