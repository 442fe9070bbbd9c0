// Package export writes extraction results to JSONL and CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/medscan/pkg/medscan"
)

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, results []medscan.Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode result %s: %w", r.PMID, err)
		}
	}
	return nil
}

// csvHeader is the fixed column layout. List fields are joined with "; "
// so a row stays one line.
var csvHeader = []string{
	"pmid", "title", "journal", "year",
	"diseases", "genes", "drugs",
	"study_types", "trial_phases",
}

// WriteCSV writes a header row followed by one row per result.
func WriteCSV(w io.Writer, results []medscan.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.PMID, r.Title, r.Journal, r.Year,
			strings.Join(r.Diseases, "; "),
			strings.Join(r.Genes, "; "),
			strings.Join(r.Drugs, "; "),
			strings.Join(r.StudyTypes, "; "),
			strings.Join(r.TrialPhases, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write result %s: %w", r.PMID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSONLFile writes results to a JSONL file, creating or truncating
// it.
func WriteJSONLFile(path string, results []medscan.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSONL(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSVFile writes results to a CSV file, creating or truncating it.
func WriteCSVFile(path string, results []medscan.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
