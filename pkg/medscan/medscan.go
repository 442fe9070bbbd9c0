// Package medscan extracts structured biomedical signals (disease, gene
// and drug mentions, study designs, trial phases) from scientific
// abstracts.
package medscan

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/medscan/pkg/medscan/aggregate"
	"github.com/cognicore/medscan/pkg/medscan/internalerr"
	"github.com/cognicore/medscan/pkg/medscan/keywords"
	"github.com/cognicore/medscan/pkg/medscan/recognizer"
	"github.com/cognicore/medscan/pkg/medscan/store"
)

// yearPattern extracts a four-digit year from the start of a MEDLINE date
// string ("2021 Jan-Feb"). Non-leading digits do not count.
var yearPattern = regexp.MustCompile(`^\d{4}`)

// Record is one bibliographic record to analyze.
type Record struct {
	PMID    string
	Title   string
	Journal string
	// Date is the raw publication date string, e.g. "2021 Jan-Feb".
	Date string
	// Abstract holds the abstract text, possibly as multiple fragments.
	Abstract []string
}

// Result is the analysis output for one record. It is immutable after
// creation and self-contained for serialization.
type Result struct {
	ID          string   `json:"id"`
	PMID        string   `json:"pmid"`
	Title       string   `json:"title"`
	Journal     string   `json:"journal"`
	Year        string   `json:"year"`
	Diseases    []string `json:"diseases"`
	Genes       []string `json:"genes"`
	Drugs       []string `json:"drugs"`
	StudyTypes  []string `json:"study_types"`
	TrialPhases []string `json:"trial_phases"`
	Abstract    string   `json:"abstract"`
}

// Options configures a Miner.
type Options struct {
	// Recognizer is the NER capability run over each chunk. Required.
	Recognizer recognizer.Recognizer

	// Store, when set, receives results from Process.
	Store store.Store

	// MaxChunkChars bounds the text sent to the recognizer per call.
	// Values <= 0 use the chunker default.
	MaxChunkChars int

	// StudyTypePatterns and TrialPhasePatterns override the default
	// keyword pattern sets when non-nil.
	StudyTypePatterns  []string
	TrialPhasePatterns []string
}

// Miner analyzes bibliographic records one at a time. Each call is
// stateless given its inputs; a Miner may be reused across documents but
// is only as concurrency-safe as its recognizer backend.
type Miner struct {
	agg     *aggregate.Aggregator
	study   *keywords.Matcher
	phase   *keywords.Matcher
	store   store.Store
	entropy *ulid.MonotonicEntropy
}

// New creates a Miner. Keyword patterns are compiled here, so a
// misconfigured pattern list fails at construction rather than per
// document.
func New(opts Options) (*Miner, error) {
	if opts.Recognizer == nil {
		return nil, fmt.Errorf("%w: recognizer required", internalerr.ErrInvalidConfig)
	}

	studyExprs := opts.StudyTypePatterns
	if studyExprs == nil {
		studyExprs = keywords.StudyTypePatterns
	}
	phaseExprs := opts.TrialPhasePatterns
	if phaseExprs == nil {
		phaseExprs = keywords.TrialPhasePatterns
	}

	study, err := keywords.NewMatcher(studyExprs)
	if err != nil {
		return nil, fmt.Errorf("study type patterns: %w", err)
	}
	phase, err := keywords.NewMatcher(phaseExprs)
	if err != nil {
		return nil, fmt.Errorf("trial phase patterns: %w", err)
	}

	return &Miner{
		agg:     aggregate.New(opts.Recognizer, opts.MaxChunkChars),
		study:   study,
		phase:   phase,
		store:   opts.Store,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the underlying store, when one is configured.
func (m *Miner) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Analyze extracts entities and study keywords from one record. Errors
// carry the record's PMID so the driver can decide to skip, log, or abort
// the batch.
func (m *Miner) Analyze(ctx context.Context, rec Record) (Result, error) {
	if rec.PMID == "" {
		return Result{}, fmt.Errorf("%w: record has no identifier", internalerr.ErrMalformedRecord)
	}

	text := buildContext(rec)

	buckets, err := m.agg.Extract(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("record %s: %w", rec.PMID, err)
	}

	return Result{
		ID:          ulid.MustNew(ulid.Now(), m.entropy).String(),
		PMID:        rec.PMID,
		Title:       rec.Title,
		Journal:     rec.Journal,
		Year:        extractYear(rec.Date),
		Diseases:    buckets.Diseases,
		Genes:       buckets.Genes,
		Drugs:       buckets.Drugs,
		StudyTypes:  m.study.Find(text),
		TrialPhases: m.phase.Find(text),
		Abstract:    joinAbstract(rec.Abstract),
	}, nil
}

// Process analyzes a record and persists the result.
func (m *Miner) Process(ctx context.Context, rec Record) (Result, error) {
	if m.store == nil {
		return Result{}, fmt.Errorf("%w: store required for Process", internalerr.ErrInvalidConfig)
	}

	result, err := m.Analyze(ctx, rec)
	if err != nil {
		return Result{}, err
	}

	if err := m.store.UpsertResult(ctx, toStoreResult(result)); err != nil {
		return Result{}, fmt.Errorf("record %s: store: %w", rec.PMID, err)
	}
	return result, nil
}

// joinAbstract flattens abstract fragments to a single string.
func joinAbstract(fragments []string) string {
	return strings.TrimSpace(strings.Join(fragments, " "))
}

// buildContext concatenates title and abstract for analysis, skipping
// blank parts.
func buildContext(rec Record) string {
	var parts []string
	if title := strings.TrimSpace(rec.Title); title != "" {
		parts = append(parts, title)
	}
	if abstract := joinAbstract(rec.Abstract); abstract != "" {
		parts = append(parts, abstract)
	}
	return strings.Join(parts, ". ")
}

// extractYear returns the leading four-digit year of a date string, or ""
// when the string does not start with one.
func extractYear(date string) string {
	return yearPattern.FindString(date)
}

func toStoreResult(r Result) store.Result {
	return store.Result{
		ID:          r.ID,
		PMID:        r.PMID,
		Title:       r.Title,
		Journal:     r.Journal,
		Year:        r.Year,
		Diseases:    r.Diseases,
		Genes:       r.Genes,
		Drugs:       r.Drugs,
		StudyTypes:  r.StudyTypes,
		TrialPhases: r.TrialPhases,
		Abstract:    r.Abstract,
	}
}

// FromStoreResult converts a persisted record back to a Result.
func FromStoreResult(r store.Result) Result {
	return Result{
		ID:          r.ID,
		PMID:        r.PMID,
		Title:       r.Title,
		Journal:     r.Journal,
		Year:        r.Year,
		Diseases:    r.Diseases,
		Genes:       r.Genes,
		Drugs:       r.Drugs,
		StudyTypes:  r.StudyTypes,
		TrialPhases: r.TrialPhases,
		Abstract:    r.Abstract,
	}
}
