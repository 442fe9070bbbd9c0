// Package lexical implements a dictionary-backed recognizer. It is useful
// as an offline fallback and in tests, where a model endpoint is not
// available.
package lexical

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/medscan/pkg/medscan/recognizer"
)

// Recognizer matches a fixed term list against text, case-insensitively.
type Recognizer struct {
	entries []entry
}

type entry struct {
	term  string // lowercase
	label string
}

// New creates a recognizer from a label → terms mapping. Labels are raw
// recognizer labels ("DISEASE", "CHEMICAL"); canonicalization happens in
// the aggregation pipeline like for any other backend.
func New(terms map[string][]string) *Recognizer {
	var entries []entry
	for label, list := range terms {
		for _, term := range list {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			entries = append(entries, entry{term: term, label: label})
		}
	}
	// Deterministic scan order regardless of map iteration.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].label != entries[j].label {
			return entries[i].label < entries[j].label
		}
		return entries[i].term < entries[j].term
	})
	return &Recognizer{entries: entries}
}

type termFile struct {
	Terms map[string][]string `yaml:"terms"`
}

// LoadFile reads a YAML term list: a "terms" mapping of label → phrases.
func LoadFile(path string) (*Recognizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read term list %s: %w", path, err)
	}
	var tf termFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse term list %s: %w", path, err)
	}
	return New(tf.Terms), nil
}

// Recognize scans text for dictionary terms and returns spans in order of
// appearance. The surface text keeps the casing found in the input.
func (r *Recognizer) Recognize(ctx context.Context, text string) ([]recognizer.Span, error) {
	low, offs := foldOffsets(text)

	type hit struct {
		pos  int
		span recognizer.Span
	}
	var hits []hit

	for _, e := range r.entries {
		from := 0
		for {
			idx := strings.Index(low[from:], e.term)
			if idx < 0 {
				break
			}
			pos := from + idx
			end := pos + len(e.term)
			if wordBoundary(low, pos, end) {
				start, stop := pos, end
				if offs != nil {
					start, stop = offs[pos], offs[end]
				}
				hits = append(hits, hit{
					pos: start,
					span: recognizer.Span{
						Text:  text[start:stop],
						Label: e.label,
						Score: 1,
					},
				})
			}
			from = end
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	spans := make([]recognizer.Span, len(hits))
	for i, h := range hits {
		spans[i] = h.span
	}
	return spans, nil
}

// foldOffsets lowers text for matching. Lowering can change rune byte
// lengths, so for non-ASCII input the second result maps every byte of
// the lowered string (plus one sentinel) back to its offset in text; a
// nil map means offsets line up as is.
func foldOffsets(text string) (string, []int) {
	ascii := true
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(text), nil
	}

	var b strings.Builder
	b.Grow(len(text))
	offs := make([]int, 0, len(text)+1)
	for i, r := range text {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offs = append(offs, i)
		}
		b.WriteRune(lr)
	}
	offs = append(offs, len(text))
	return b.String(), offs
}

// wordBoundary reports whether [start,end) is not embedded in a longer word.
func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return false
		}
	}
	if end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			return false
		}
	}
	return true
}
