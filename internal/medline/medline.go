// Package medline parses PubMed records in MEDLINE tagged format.
package medline

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// Record is one bibliographic record as fetched from PubMed.
type Record struct {
	PMID     string   `json:"pmid"`
	Title    string   `json:"title"`
	Journal  string   `json:"journal"`
	Date     string   `json:"date"`
	Abstract []string `json:"abstract"`
}

// Parse splits MEDLINE text into records. Records are separated by blank
// lines; each field line is "TAG - value" with the tag padded to four
// characters, and lines starting with six spaces continue the previous
// field.
func Parse(text string) []Record {
	var records []Record

	for _, block := range strings.Split(text, "\n\n") {
		rec, ok := parseBlock(block)
		if ok {
			records = append(records, rec)
		}
	}
	return records
}

func parseBlock(block string) (Record, bool) {
	var rec Record
	var tag string
	var journalAbbrev string

	flush := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		switch tag {
		case "PMID":
			if rec.PMID == "" {
				rec.PMID = value
			}
		case "TI":
			rec.Title = value
		case "AB":
			rec.Abstract = append(rec.Abstract, value)
		case "JT":
			rec.Journal = value
		case "TA":
			journalAbbrev = value
		case "DP":
			rec.Date = value
		}
	}

	var value strings.Builder
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, "      ") {
			// Continuation of the previous field.
			value.WriteString(" ")
			value.WriteString(strings.TrimSpace(line))
			continue
		}

		flush(value.String())
		value.Reset()
		tag = ""

		if len(line) < 6 || line[4:6] != "- " {
			continue
		}
		tag = strings.TrimSpace(line[:4])
		value.WriteString(line[6:])
	}
	flush(value.String())

	// Full journal title when present, abbreviation otherwise.
	if rec.Journal == "" {
		rec.Journal = journalAbbrev
	}

	if rec.PMID == "" && rec.Title == "" && len(rec.Abstract) == 0 {
		return Record{}, false
	}
	return rec, true
}

// LoadFromJSONL loads records from a JSONL file, one record per line.
// Malformed lines are skipped with a warning so a partially corrupt
// fetch does not sink the whole run.
func LoadFromJSONL(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var records []Record
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid records found in %s", path)
	}
	return records, nil
}

// SaveToJSONL writes records to a JSONL file, one record per line.
func SaveToJSONL(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			f.Close()
			return fmt.Errorf("encode record %s: %w", rec.PMID, err)
		}
	}
	return f.Close()
}
