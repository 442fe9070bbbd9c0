// Package recognizer defines the named-entity recognition capability
// consumed by the aggregation pipeline.
package recognizer

import "context"

// Span is one entity mention returned by a recognizer for a piece of text.
type Span struct {
	// Text is the surface form as it appeared in the input.
	Text string

	// Label is the recognizer's raw type label (for example "B-DISEASE"
	// or "Gene_or_gene_product"); callers canonicalize it.
	Label string

	// Score is the recognizer's confidence, when available.
	Score float64
}

// Recognizer runs named-entity recognition over a bounded-length text.
// This interface allows swapping backends (remote inference endpoint,
// local dictionary recognizer, test stubs) without touching the pipeline.
//
// Implementations backed by a single accelerator are not assumed safe for
// concurrent calls; callers either serialize or hold one instance per
// worker. Recognize must return spans in the order they occur in the text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}
