package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/medscan/pkg/medscan/analytics"
	"github.com/cognicore/medscan/pkg/medscan/store/sqlite"
)

type report struct {
	TotalDocs   int64                     `json:"total_docs"`
	Years       map[string]int64          `json:"years"`
	StudyTypes  map[string]int64          `json:"study_types"`
	TopDiseases []analytics.TermCount     `json:"top_diseases"`
	TopGenes    []analytics.TermCount     `json:"top_genes"`
	TopDrugs    []analytics.TermCount     `json:"top_drugs"`
	Comentions  []analytics.ComentionStat `json:"disease_drug_comentions"`
}

func main() {
	var (
		dbPath     = flag.String("db", "", "SQLite database path (required)")
		limit      = flag.Int("limit", 20, "Entries per ranking")
		minSupport = flag.Int64("min-support", 2, "Minimum documents for a co-mention pair")
		maxDocs    = flag.Int("max-docs", 10000, "Maximum results to read from the database")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	results, err := st.ListResults(ctx, *maxDocs)
	if err != nil {
		log.Fatal("Failed to list results:", err)
	}

	analyzer := analytics.NewAnalyzer()
	for _, r := range results {
		analyzer.Process(r)
	}
	stats := analyzer.Snapshot()

	rep := report{
		TotalDocs:   stats.TotalDocs,
		Years:       stats.YearCounts,
		StudyTypes:  stats.StudyTypes,
		TopDiseases: stats.TopDiseases(*limit),
		TopGenes:    stats.TopGenes(*limit),
		TopDrugs:    stats.TopDrugs(*limit),
		Comentions:  stats.TopComentions(*limit, *minSupport),
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}
