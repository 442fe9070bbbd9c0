// Package store defines persistence for document analysis results.
package store

import "context"

// Store is the interface for persisting and querying analysis results.
type Store interface {
	Close() error

	// UpsertResult inserts or replaces a result, keyed by PMID.
	UpsertResult(ctx context.Context, r Result) error
	GetResultByPMID(ctx context.Context, pmid string) (Result, bool, error)
	// ListResults returns up to limit results, newest year first.
	ListResults(ctx context.Context, limit int) ([]Result, error)
	CountResults(ctx context.Context) (int64, error)
}

// Result is a stored analysis record. It is self-contained: the slices are
// owned by the record and never alias analyzer state.
type Result struct {
	ID          string
	PMID        string
	Title       string
	Journal     string
	Year        string
	Diseases    []string
	Genes       []string
	Drugs       []string
	StudyTypes  []string
	TrialPhases []string
	Abstract    string
}
