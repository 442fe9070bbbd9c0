package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/medscan/pkg/medscan"
)

func sampleResults() []medscan.Result {
	return []medscan.Result{
		{
			PMID:        "34567890",
			Title:       "Latanoprost in open-angle glaucoma",
			Journal:     "Ophthalmology",
			Year:        "2021",
			Diseases:    []string{"open-angle glaucoma", "ocular hypertension"},
			Genes:       []string{"MYOC"},
			Drugs:       []string{"latanoprost"},
			StudyTypes:  []string{"randomized controlled trial"},
			TrialPhases: []string{"phase iii"},
		},
		{
			PMID:  "11111111",
			Title: "A case with, comma and \"quotes\"",
			Year:  "2019",
		},
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var first medscan.Result
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("First line is not valid JSON: %v", err)
	}
	if first.PMID != "34567890" || len(first.Diseases) != 2 {
		t.Errorf("First result: %+v", first)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "pmid" || rows[0][4] != "diseases" {
		t.Errorf("Header = %v", rows[0])
	}
	if rows[1][4] != "open-angle glaucoma; ocular hypertension" {
		t.Errorf("List field should join with '; ', got %q", rows[1][4])
	}
	if !strings.Contains(rows[2][1], `"quotes"`) {
		t.Errorf("Quoted title should survive round-trip, got %q", rows[2][1])
	}
}

func TestWriteFiles(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "out.jsonl")
	csvPath := filepath.Join(tmpDir, "out.csv")

	if err := WriteJSONLFile(jsonlPath, sampleResults()); err != nil {
		t.Fatalf("WriteJSONLFile: %v", err)
	}
	if err := WriteCSVFile(csvPath, sampleResults()); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}

	data, err := os.ReadFile(jsonlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("34567890")) {
		t.Error("JSONL file should contain the PMID")
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, nil); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("No results should produce empty output, got %q", buf.String())
	}

	buf.Reset()
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "pmid,") {
		t.Errorf("CSV should still have a header, got %q", buf.String())
	}
}
