// Package aggregate runs a recognizer over chunked document text and
// merges the recognized entities into canonical class buckets.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/medscan/pkg/medscan/chunker"
	"github.com/cognicore/medscan/pkg/medscan/internalerr"
	"github.com/cognicore/medscan/pkg/medscan/recognizer"
	"github.com/cognicore/medscan/pkg/medscan/taxonomy"
)

// Buckets holds the deduplicated entity surface strings per canonical
// class, in order of first occurrence across the document.
type Buckets struct {
	Diseases []string
	Genes    []string
	Drugs    []string
}

// Aggregator extracts entity buckets from documents of arbitrary length by
// chunking them to the recognizer's input limit.
type Aggregator struct {
	rec      recognizer.Recognizer
	maxChars int
}

// New creates an Aggregator. maxChunkChars bounds the text passed to the
// recognizer per call; values <= 0 fall back to chunker.DefaultMaxChars.
func New(rec recognizer.Recognizer, maxChunkChars int) *Aggregator {
	return &Aggregator{rec: rec, maxChars: maxChunkChars}
}

// Extract runs the recognizer over text chunk by chunk, in document order,
// and returns the merged buckets. Empty or whitespace-only text yields
// empty buckets without invoking the recognizer.
//
// A recognizer error on any chunk fails the whole document: no partial
// buckets are returned. Retry policy belongs to the caller.
func (a *Aggregator) Extract(ctx context.Context, text string) (Buckets, error) {
	empty := Buckets{Diseases: []string{}, Genes: []string{}, Drugs: []string{}}
	if strings.TrimSpace(text) == "" {
		return empty, nil
	}

	chunks := chunker.Split(text, a.maxChars)

	acc := map[taxonomy.Class][]string{}
	for i, ch := range chunks {
		if strings.TrimSpace(ch) == "" {
			continue
		}
		spans, err := a.rec.Recognize(ctx, ch)
		if err != nil {
			return empty, fmt.Errorf("%w: chunk %d/%d: %w", internalerr.ErrRecognizer, i+1, len(chunks), err)
		}
		for _, span := range spans {
			class := taxonomy.Canonicalize(span.Label)
			if class == taxonomy.Other {
				continue
			}
			surface := strings.TrimSpace(span.Text)
			if surface == "" {
				continue
			}
			acc[class] = append(acc[class], surface)
		}
	}

	return Buckets{
		Diseases: uniqueFold(acc[taxonomy.Disease]),
		Genes:    uniqueFold(acc[taxonomy.Gene]),
		Drugs:    uniqueFold(acc[taxonomy.Drug]),
	}, nil
}

// uniqueFold removes case-insensitive duplicates, keeping the casing of
// the first occurrence.
func uniqueFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, val := range in {
		key := strings.ToLower(val)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, val)
	}
	return out
}
