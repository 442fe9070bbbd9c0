// Package keywords detects study-design and trial-phase phrases in
// abstract text using a fixed pattern set.
package keywords

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/medscan/pkg/medscan/internalerr"
)

// StudyTypePatterns matches common study-design phrases.
var StudyTypePatterns = []string{
	`\brandomi[sz]ed controlled trial\b`,
	`\bclinical trial\b`,
	`\bmeta-analysis\b`,
	`\bsystematic review\b`,
	`\bcohort study\b`,
	`\bcase[- ]control study\b`,
	`\bcross[- ]sectional study\b`,
	`\bprospective study\b`,
	`\bretrospective study\b`,
	`\bcase series\b`,
	`\bcase report\b`,
}

// TrialPhasePatterns matches clinical trial phase mentions.
var TrialPhasePatterns = []string{
	`\bphase i\b`,
	`\bphase ii\b`,
	`\bphase iii\b`,
	`\bphase iv\b`,
}

// Matcher holds a compiled pattern set.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles the given pattern expressions, case-insensitively
// so a pattern with uppercase literals behaves the same as the lowercase
// defaults. A pattern that fails to compile is a configuration error,
// surfaced here rather than per document.
func NewMatcher(exprs []string) (*Matcher, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("%w: compile pattern %q: %v", internalerr.ErrInvalidConfig, expr, err)
		}
		patterns = append(patterns, re)
	}
	return &Matcher{patterns: patterns}, nil
}

// Find returns the sorted set of distinct phrases matched in text.
// Matching is case-insensitive; matches are reported in lowercase, and
// repeated occurrences of the same phrase collapse to one entry.
func (m *Matcher) Find(text string) []string {
	found := make(map[string]struct{})
	low := strings.ToLower(text)

	for _, re := range m.patterns {
		for _, match := range re.FindAllString(low, -1) {
			found[match] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for match := range found {
		out = append(out, match)
	}
	sort.Strings(out)
	return out
}
