package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/cognicore/medscan/internal/medline"
	"github.com/cognicore/medscan/pkg/medscan"
	"github.com/cognicore/medscan/pkg/medscan/config"
	"github.com/cognicore/medscan/pkg/medscan/export"
	"github.com/cognicore/medscan/pkg/medscan/recognizer"
	"github.com/cognicore/medscan/pkg/medscan/recognizer/biobert"
	"github.com/cognicore/medscan/pkg/medscan/recognizer/lexical"
	"github.com/cognicore/medscan/pkg/medscan/store"
	"github.com/cognicore/medscan/pkg/medscan/store/sqlite"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file (optional)")
		dataPath    = flag.String("data", "", "Input records JSONL file (required)")
		dbPath      = flag.String("db", "", "SQLite database path (overrides config)")
		jsonlPath   = flag.String("jsonl", "", "Results JSONL file (overrides config)")
		csvPath     = flag.String("csv", "", "Results CSV file (overrides config)")
		lexiconPath = flag.String("lexicon", "", "Lexicon YAML for the dictionary recognizer (overrides config)")
	)
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("--data required")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal("Failed to load config:", err)
		}
	}
	if *dbPath != "" {
		cfg.Output.DB = *dbPath
	}
	if *jsonlPath != "" {
		cfg.Output.JSONL = *jsonlPath
	}
	if *csvPath != "" {
		cfg.Output.CSV = *csvPath
	}
	if *lexiconPath != "" {
		cfg.Recognizer.Lexicon = *lexiconPath
	}

	ctx := context.Background()

	ner, err := buildRecognizer(cfg.Recognizer)
	if err != nil {
		log.Fatal("Failed to build recognizer:", err)
	}

	var st store.Store
	if cfg.Output.DB != "" {
		st, err = sqlite.Open(ctx, cfg.Output.DB)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
	}

	miner, err := medscan.New(medscan.Options{
		Recognizer:    ner,
		Store:         st,
		MaxChunkChars: cfg.MaxChunkChars,
	})
	if err != nil {
		log.Fatal("Failed to create miner:", err)
	}
	defer miner.Close()

	records, err := medline.LoadFromJSONL(*dataPath)
	if err != nil {
		log.Fatal("Failed to load records:", err)
	}
	log.Printf("Loaded %d records from %s", len(records), *dataPath)

	var results []medscan.Result
	failed := 0
	for i, rec := range records {
		in := medscan.Record{
			PMID:     rec.PMID,
			Title:    rec.Title,
			Journal:  rec.Journal,
			Date:     rec.Date,
			Abstract: rec.Abstract,
		}

		var result medscan.Result
		if st != nil {
			result, err = miner.Process(ctx, in)
		} else {
			result, err = miner.Analyze(ctx, in)
		}
		if err != nil {
			log.Printf("Failed to process record %d (PMID %s): %v", i, rec.PMID, err)
			failed++
			continue
		}
		results = append(results, result)

		if (i+1)%10 == 0 {
			log.Printf("Processed %d/%d records", i+1, len(records))
		}
	}

	if cfg.Output.JSONL != "" {
		if err := export.WriteJSONLFile(cfg.Output.JSONL, results); err != nil {
			log.Fatal("Failed to write JSONL:", err)
		}
		log.Printf("Wrote %s", cfg.Output.JSONL)
	}
	if cfg.Output.CSV != "" {
		if err := export.WriteCSVFile(cfg.Output.CSV, results); err != nil {
			log.Fatal("Failed to write CSV:", err)
		}
		log.Printf("Wrote %s", cfg.Output.CSV)
	}

	log.Printf("Done: %d processed, %d failed", len(results), failed)
}

// buildRecognizer picks the NER backend: the hosted model when an
// endpoint is configured, the local lexicon otherwise.
func buildRecognizer(cfg config.RecognizerConfig) (recognizer.Recognizer, error) {
	if cfg.Endpoint != "" {
		return &biobert.Client{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
		}, nil
	}
	if cfg.Lexicon != "" {
		return lexical.LoadFile(cfg.Lexicon)
	}
	return nil, errors.New("no recognizer configured: set recognizer.endpoint or recognizer.lexicon")
}
