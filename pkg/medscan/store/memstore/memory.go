// Package memstore provides an in-memory store.Store for tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/medscan/pkg/medscan/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	results map[string]store.Result // keyed by PMID
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{results: make(map[string]store.Result)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertResult inserts or replaces a result, keyed by PMID.
func (s *Store) UpsertResult(ctx context.Context, r store.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.PMID == "" {
		return nil
	}
	s.results[r.PMID] = copyResult(r)
	return nil
}

// GetResultByPMID returns a result by PMID.
func (s *Store) GetResultByPMID(ctx context.Context, pmid string) (store.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.results[pmid]; ok {
		return copyResult(r), true, nil
	}
	return store.Result{}, false, nil
}

// ListResults returns up to limit results, newest year first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]store.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	out := make([]store.Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, copyResult(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].PMID < out[j].PMID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountResults returns the number of stored results.
func (s *Store) CountResults(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.results)), nil
}

func copyResult(r store.Result) store.Result {
	copySlice := func(in []string) []string {
		out := make([]string, len(in))
		copy(out, in)
		return out
	}

	return store.Result{
		ID:          r.ID,
		PMID:        r.PMID,
		Title:       r.Title,
		Journal:     r.Journal,
		Year:        r.Year,
		Diseases:    copySlice(r.Diseases),
		Genes:       copySlice(r.Genes),
		Drugs:       copySlice(r.Drugs),
		StudyTypes:  copySlice(r.StudyTypes),
		TrialPhases: copySlice(r.TrialPhases),
		Abstract:    r.Abstract,
	}
}
