// Package fake provides in-memory record and policy stores for tests
// and prototypes. They should not be used in production.
package fake

import (
	"fmt"
	"sync"

	"github.com/supremind/authorize/types"
)

var _ types.RecordStore = (*RecordStore)(nil)

// RecordStore keeps resource records in memory and evaluates predicates
// with the reference Match semantics
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]map[string]types.Record
}

// NewRecordStore creates an empty in-memory record store
func NewRecordStore(records ...types.Record) *RecordStore {
	s := &RecordStore{records: make(map[string]map[string]types.Record)}
	for _, r := range records {
		s.Save(r)
	}
	return s
}

// Save inserts or updates a record
func (s *RecordStore) Save(r types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records[r.Class] == nil {
		s.records[r.Class] = make(map[string]types.Record)
	}
	s.records[r.Class][r.ID] = r
	return nil
}

// Remove deletes a record
func (s *RecordStore) Remove(class, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[class][id]; !ok {
		return fmt.Errorf("%w: record %s:%s", types.ErrNotFound, class, id)
	}
	delete(s.records[class], id)
	return nil
}

// Get returns one record
func (s *RecordStore) Get(class, id string) (types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[class][id]
	if !ok {
		return types.Record{}, fmt.Errorf("%w: record %s:%s", types.ErrNotFound, class, id)
	}
	return r, nil
}

// Query returns all records of the class matching the predicate
func (s *RecordStore) Query(class string, p types.Predicate) ([]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Record, 0)
	for _, r := range s.records[class] {
		if p == nil || types.Match(r, p) {
			out = append(out, r)
		}
	}
	return out, nil
}
