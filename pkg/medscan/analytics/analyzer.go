// Package analytics aggregates corpus-level statistics over extraction
// results.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/medscan/pkg/medscan/store"
)

// Analyzer aggregates document-level entity and keyword stats.
type Analyzer struct {
	totalDocs  int64
	diseaseDF  map[string]int64
	geneDF     map[string]int64
	drugDF     map[string]int64
	yearCounts map[string]int64
	studyTypes map[string]int64
	pairCounts map[Pair]int64 // disease/drug co-mentions per document
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		diseaseDF:  make(map[string]int64),
		geneDF:     make(map[string]int64),
		drugDF:     make(map[string]int64),
		yearCounts: make(map[string]int64),
		studyTypes: make(map[string]int64),
		pairCounts: make(map[Pair]int64),
	}
}

// Process consumes one extraction result. Entity values are folded to
// lowercase so that casing variants across documents count as one term.
func (a *Analyzer) Process(r store.Result) {
	a.totalDocs++

	diseases := countDF(a.diseaseDF, r.Diseases)
	countDF(a.geneDF, r.Genes)
	drugs := countDF(a.drugDF, r.Drugs)

	if r.Year != "" {
		a.yearCounts[r.Year]++
	}
	for _, st := range r.StudyTypes {
		a.studyTypes[st]++
	}

	// Disease/drug co-mention: each distinct pair once per document.
	for _, d := range diseases {
		for _, dr := range drugs {
			a.pairCounts[Pair{Disease: d, Drug: dr}]++
		}
	}
}

// countDF bumps the document frequency of each distinct folded value and
// returns the distinct values, sorted for deterministic pair iteration.
func countDF(df map[string]int64, values []string) []string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		df[v]++
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Stats exposes the aggregated counts.
type Stats struct {
	TotalDocs  int64
	DiseaseDF  map[string]int64
	GeneDF     map[string]int64
	DrugDF     map[string]int64
	YearCounts map[string]int64
	StudyTypes map[string]int64
	PairCounts map[Pair]int64
}

// Snapshot returns a copy of the accumulated statistics.
func (a *Analyzer) Snapshot() Stats {
	copyCounts := func(in map[string]int64) map[string]int64 {
		out := make(map[string]int64, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out
	}
	copyPairs := make(map[Pair]int64, len(a.pairCounts))
	for p, count := range a.pairCounts {
		copyPairs[p] = count
	}
	return Stats{
		TotalDocs:  a.totalDocs,
		DiseaseDF:  copyCounts(a.diseaseDF),
		GeneDF:     copyCounts(a.geneDF),
		DrugDF:     copyCounts(a.drugDF),
		YearCounts: copyCounts(a.yearCounts),
		StudyTypes: copyCounts(a.studyTypes),
		PairCounts: copyPairs,
	}
}

// TermCount is one term with its document frequency.
type TermCount struct {
	Term string `json:"term"`
	Docs int64  `json:"docs"`
}

// topTerms ranks the terms of one class by document frequency, ties
// broken alphabetically.
func topTerms(df map[string]int64, limit int) []TermCount {
	out := make([]TermCount, 0, len(df))
	for term, docs := range df {
		out = append(out, TermCount{Term: term, Docs: docs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Docs == out[j].Docs {
			return out[i].Term < out[j].Term
		}
		return out[i].Docs > out[j].Docs
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopDiseases returns the most mentioned diseases.
func (s Stats) TopDiseases(limit int) []TermCount { return topTerms(s.DiseaseDF, limit) }

// TopGenes returns the most mentioned genes.
func (s Stats) TopGenes(limit int) []TermCount { return topTerms(s.GeneDF, limit) }

// TopDrugs returns the most mentioned drugs.
func (s Stats) TopDrugs(limit int) []TermCount { return topTerms(s.DrugDF, limit) }

// ComentionStat describes a disease/drug pair with its association
// strength.
type ComentionStat struct {
	Disease string  `json:"disease"`
	Drug    string  `json:"drug"`
	Support int64   `json:"support"`
	PMI     float64 `json:"pmi"`
}

// TopComentions returns disease/drug pairs co-mentioned in at least
// minSupport documents, ranked by PMI then support. PMI separates real
// associations from pairs that merely ride on two common terms.
func (s Stats) TopComentions(limit int, minSupport int64) []ComentionStat {
	if s.TotalDocs == 0 {
		return nil
	}

	var stats []ComentionStat
	for p, count := range s.PairCounts {
		if count < minSupport {
			continue
		}
		dfDisease := s.DiseaseDF[p.Disease]
		dfDrug := s.DrugDF[p.Drug]
		if dfDisease == 0 || dfDrug == 0 {
			continue
		}
		stats = append(stats, ComentionStat{
			Disease: p.Disease,
			Drug:    p.Drug,
			Support: count,
			PMI:     computePMI(count, dfDisease, dfDrug, s.TotalDocs),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PMI == stats[j].PMI {
			if stats[i].Support == stats[j].Support {
				if stats[i].Disease == stats[j].Disease {
					return stats[i].Drug < stats[j].Drug
				}
				return stats[i].Disease < stats[j].Disease
			}
			return stats[i].Support > stats[j].Support
		}
		return stats[i].PMI > stats[j].PMI
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func computePMI(pairCount, dfA, dfB, totalDocs int64) float64 {
	if dfA == 0 || dfB == 0 || totalDocs == 0 {
		return 0
	}
	smooth := 1.0
	numerator := (float64(pairCount) + smooth) / float64(totalDocs)
	denominator := ((float64(dfA) + smooth) / float64(totalDocs)) * ((float64(dfB) + smooth) / float64(totalDocs))
	return math.Log(numerator / denominator)
}

// Pair is a disease/drug co-mention key, both terms lowercase.
type Pair struct {
	Disease string
	Drug    string
}
