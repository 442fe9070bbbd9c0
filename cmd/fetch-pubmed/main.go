package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/medscan/internal/entrez"
	"github.com/cognicore/medscan/internal/medline"
)

func main() {
	var (
		query  = flag.String("query", "", "PubMed search expression (required)")
		retmax = flag.Int("retmax", 100, "Maximum number of PMIDs to retrieve")
		batch  = flag.Int("batch", 50, "Records per efetch request")
		email  = flag.String("email", "", "Contact email passed to NCBI")
		apiKey = flag.String("api-key", "", "NCBI API key (raises the rate limit)")
		out    = flag.String("out", "records.jsonl", "Output JSONL file")
	)
	flag.Parse()

	if *query == "" {
		log.Fatal("--query required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &entrez.Client{
		Email:  *email,
		APIKey: *apiKey,
	}

	log.Printf("Searching PubMed: %s", *query)
	pmids, err := client.Search(ctx, *query, *retmax)
	if err != nil {
		log.Fatal("Search failed:", err)
	}
	log.Printf("Found %d PMIDs", len(pmids))

	if len(pmids) == 0 {
		log.Println("Nothing to fetch")
		return
	}

	log.Printf("Fetching MEDLINE records in batches of %d...", *batch)
	records, err := client.FetchMedline(ctx, pmids, *batch)
	if err != nil {
		// Keep whatever made it through before the failure.
		log.Printf("Fetch stopped early: %v", err)
	}
	if len(records) == 0 {
		log.Fatal("No records fetched")
	}

	if err := medline.SaveToJSONL(*out, records); err != nil {
		log.Fatal("Failed to write output:", err)
	}
	log.Printf("Wrote %d records to %s", len(records), *out)
}
