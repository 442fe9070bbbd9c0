// Package taxonomy maps raw recognizer label vocabularies into the fixed
// Disease/Gene/Drug taxonomy.
package taxonomy

import "strings"

// Class is a canonical entity class.
type Class string

const (
	Disease Class = "Disease"
	Gene    Class = "Gene"
	Drug    Class = "Drug"
	Other   Class = "Other"
)

// mapping pairs a normalized label key with its canonical class. Keys are
// matched exactly or as substrings of the normalized input, in order, so
// scheme prefixes like "B-" or "I-" that survive normalization still hit.
// The slice keeps matching deterministic across runs.
type mapping struct {
	key   string
	class Class
}

var canonTable = []mapping{
	{"DISEASE", Disease},
	{"DIAGNOSIS", Disease},
	{"PROBLEM", Disease},
	{"CONDITION", Disease},
	{"GENE", Gene},
	{"GENEORGENEPRODUCT", Gene},
	{"DNA", Gene},
	{"RNA", Gene},
	{"CHEMICAL", Drug},
	{"DRUG", Drug},
	{"CHEMICALSUBSTANCE", Drug},
}

// Canonicalize maps a raw entity-type label to its canonical class.
// Labels are compared after upper-casing and stripping hyphen/underscore
// separators, so "B-DISEASE", "Disease" and "disease" all map to Disease.
// Unrecognized labels map to Other; this never fails.
func Canonicalize(label string) Class {
	norm := normalize(label)
	if norm == "" {
		return Other
	}
	for _, m := range canonTable {
		if norm == m.key || strings.Contains(norm, m.key) {
			return m.class
		}
	}
	return Other
}

func normalize(label string) string {
	norm := strings.ToUpper(label)
	norm = strings.ReplaceAll(norm, "-", "")
	return strings.ReplaceAll(norm, "_", "")
}
