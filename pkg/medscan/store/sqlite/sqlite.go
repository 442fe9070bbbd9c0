// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/cognicore/medscan/pkg/medscan/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS results (
	pmid TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	title TEXT,
	journal TEXT,
	year TEXT,
	abstract TEXT
);

CREATE TABLE IF NOT EXISTS result_entities (
	pmid TEXT NOT NULL,
	class TEXT NOT NULL,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(pmid, class, position),
	FOREIGN KEY(pmid) REFERENCES results(pmid) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS result_keywords (
	pmid TEXT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(pmid, kind, value),
	FOREIGN KEY(pmid) REFERENCES results(pmid) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_results_year ON results(year);
CREATE INDEX IF NOT EXISTS idx_entities_value ON result_entities(class, value);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertResult inserts or replaces a result, keyed by PMID.
func (s *sqliteStore) UpsertResult(ctx context.Context, r store.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO results (pmid, id, title, journal, year, abstract)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(pmid) DO UPDATE SET
	id=excluded.id,
	title=excluded.title,
	journal=excluded.journal,
	year=excluded.year,
	abstract=excluded.abstract;
`

	if _, err := tx.ExecContext(ctx, stmt, r.PMID, r.ID, r.Title, r.Journal, r.Year, r.Abstract); err != nil {
		return err
	}

	if err := replaceEntities(ctx, tx, r); err != nil {
		return err
	}
	if err := replaceKeywords(ctx, tx, r); err != nil {
		return err
	}

	return tx.Commit()
}

// replaceEntities rewrites the per-class entity rows. The position column
// preserves first-seen order across round-trips.
func replaceEntities(ctx context.Context, tx *sql.Tx, r store.Result) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM result_entities WHERE pmid = ?", r.PMID); err != nil {
		return err
	}

	classes := []struct {
		name   string
		values []string
	}{
		{"Disease", r.Diseases},
		{"Gene", r.Genes},
		{"Drug", r.Drugs},
	}
	for _, c := range classes {
		for i, v := range c.values {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO result_entities (pmid, class, position, value) VALUES (?, ?, ?, ?)",
				r.PMID, c.name, i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func replaceKeywords(ctx context.Context, tx *sql.Tx, r store.Result) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM result_keywords WHERE pmid = ?", r.PMID); err != nil {
		return err
	}

	kinds := []struct {
		name   string
		values []string
	}{
		{"study_type", r.StudyTypes},
		{"trial_phase", r.TrialPhases},
	}
	for _, k := range kinds {
		for _, v := range k.values {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO result_keywords (pmid, kind, value) VALUES (?, ?, ?)",
				r.PMID, k.name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetResultByPMID returns a result by PMID.
func (s *sqliteStore) GetResultByPMID(ctx context.Context, pmid string) (store.Result, bool, error) {
	var r store.Result
	err := s.db.QueryRowContext(ctx,
		"SELECT pmid, id, title, journal, year, abstract FROM results WHERE pmid = ?", pmid).
		Scan(&r.PMID, &r.ID, &r.Title, &r.Journal, &r.Year, &r.Abstract)
	if err == sql.ErrNoRows {
		return store.Result{}, false, nil
	}
	if err != nil {
		return store.Result{}, false, err
	}

	if err := s.loadLists(ctx, &r); err != nil {
		return store.Result{}, false, err
	}
	return r, true, nil
}

// ListResults returns up to limit results, newest year first.
func (s *sqliteStore) ListResults(ctx context.Context, limit int) ([]store.Result, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT pmid, id, title, journal, year, abstract FROM results ORDER BY year DESC, pmid ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []store.Result
	for rows.Next() {
		var r store.Result
		if err := rows.Scan(&r.PMID, &r.ID, &r.Title, &r.Journal, &r.Year, &r.Abstract); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		if err := s.loadLists(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// CountResults returns the number of stored results.
func (s *sqliteStore) CountResults(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&count)
	return count, err
}

func (s *sqliteStore) loadLists(ctx context.Context, r *store.Result) error {
	r.Diseases = []string{}
	r.Genes = []string{}
	r.Drugs = []string{}
	r.StudyTypes = []string{}
	r.TrialPhases = []string{}

	rows, err := s.db.QueryContext(ctx,
		"SELECT class, value FROM result_entities WHERE pmid = ? ORDER BY class, position", r.PMID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var class, value string
		if err := rows.Scan(&class, &value); err != nil {
			return err
		}
		switch class {
		case "Disease":
			r.Diseases = append(r.Diseases, value)
		case "Gene":
			r.Genes = append(r.Genes, value)
		case "Drug":
			r.Drugs = append(r.Drugs, value)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kwRows, err := s.db.QueryContext(ctx,
		"SELECT kind, value FROM result_keywords WHERE pmid = ? ORDER BY kind, value", r.PMID)
	if err != nil {
		return err
	}
	defer kwRows.Close()

	for kwRows.Next() {
		var kind, value string
		if err := kwRows.Scan(&kind, &value); err != nil {
			return err
		}
		switch kind {
		case "study_type":
			r.StudyTypes = append(r.StudyTypes, value)
		case "trial_phase":
			r.TrialPhases = append(r.TrialPhases, value)
		}
	}
	return kwRows.Err()
}
