package medscan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/medscan/pkg/medscan/internalerr"
	"github.com/cognicore/medscan/pkg/medscan/recognizer"
	"github.com/cognicore/medscan/pkg/medscan/store/memstore"
)

// stubRecognizer returns a fixed span set and records the text it saw.
type stubRecognizer struct {
	spans  []recognizer.Span
	err    error
	inputs []string
}

func (s *stubRecognizer) Recognize(ctx context.Context, text string) ([]recognizer.Span, error) {
	s.inputs = append(s.inputs, text)
	if s.err != nil {
		return nil, s.err
	}
	return s.spans, nil
}

func TestAnalyze(t *testing.T) {
	stub := &stubRecognizer{spans: []recognizer.Span{
		{Text: "glaucoma", Label: "Disease", Score: 0.99},
		{Text: "MYOC", Label: "Gene", Score: 0.97},
		{Text: "latanoprost", Label: "Chemical", Score: 0.95},
		{Text: "patients", Label: "SPECIES", Score: 0.4},
	}}

	m, err := New(Options{Recognizer: stub})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := Record{
		PMID:    "34567890",
		Title:   "Latanoprost in open-angle glaucoma",
		Journal: "Ophthalmology",
		Date:    "2021 Jan-Feb",
		Abstract: []string{
			"A randomized controlled trial of latanoprost.",
			"This phase III study enrolled 400 patients.",
		},
	}

	got, err := m.Analyze(context.Background(), rec)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got.ID == "" {
		t.Error("Result should have an ID")
	}
	if got.PMID != "34567890" || got.Year != "2021" {
		t.Errorf("Metadata: pmid=%q year=%q", got.PMID, got.Year)
	}
	if len(got.Diseases) != 1 || got.Diseases[0] != "glaucoma" {
		t.Errorf("Diseases = %v", got.Diseases)
	}
	if len(got.Genes) != 1 || got.Genes[0] != "MYOC" {
		t.Errorf("Genes = %v", got.Genes)
	}
	if len(got.Drugs) != 1 || got.Drugs[0] != "latanoprost" {
		t.Errorf("Drugs = %v", got.Drugs)
	}
	if len(got.StudyTypes) != 1 || got.StudyTypes[0] != "randomized controlled trial" {
		t.Errorf("StudyTypes = %v", got.StudyTypes)
	}
	if len(got.TrialPhases) != 1 || got.TrialPhases[0] != "phase iii" {
		t.Errorf("TrialPhases = %v", got.TrialPhases)
	}
	wantAbstract := "A randomized controlled trial of latanoprost. This phase III study enrolled 400 patients."
	if got.Abstract != wantAbstract {
		t.Errorf("Abstract = %q", got.Abstract)
	}
}

func TestAnalyzeRejectsMissingPMID(t *testing.T) {
	m, _ := New(Options{Recognizer: &stubRecognizer{}})

	_, err := m.Analyze(context.Background(), Record{Title: "No identifier"})
	if !errors.Is(err, internalerr.ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord, got %v", err)
	}
}

func TestAnalyzeErrorCarriesPMID(t *testing.T) {
	stub := &stubRecognizer{err: errors.New("backend down")}
	m, _ := New(Options{Recognizer: stub})

	_, err := m.Analyze(context.Background(), Record{PMID: "777", Title: "Some title"})
	if !errors.Is(err, internalerr.ErrRecognizer) {
		t.Fatalf("Expected ErrRecognizer, got %v", err)
	}
	if want := "record 777"; !strings.Contains(err.Error(), want) {
		t.Errorf("Error %q should mention %q", err, want)
	}
}

func TestAnalyzeContextConstruction(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "title and abstract",
			rec:  Record{PMID: "1", Title: "Title", Abstract: []string{"Body."}},
			want: "Title. Body.",
		},
		{
			name: "title only",
			rec:  Record{PMID: "1", Title: "Title"},
			want: "Title",
		},
		{
			name: "abstract only",
			rec:  Record{PMID: "1", Abstract: []string{"Body."}},
			want: "Body.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubRecognizer{}
			m, _ := New(Options{Recognizer: stub})
			if _, err := m.Analyze(context.Background(), tc.rec); err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if len(stub.inputs) != 1 || stub.inputs[0] != tc.want {
				t.Errorf("Recognizer saw %v, want [%q]", stub.inputs, tc.want)
			}
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2021 Jan-Feb", "2021"},
		{"2019", "2019"},
		{"Winter 2020", ""},
		{"", ""},
		{"202", ""},
	}
	for _, tc := range tests {
		if got := extractYear(tc.date); got != tc.want {
			t.Errorf("extractYear(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestProcessPersists(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	stub := &stubRecognizer{spans: []recognizer.Span{{Text: "uveitis", Label: "Disease", Score: 0.9}}}

	m, err := New(Options{Recognizer: stub, Store: st})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	processed, err := m.Process(ctx, Record{PMID: "42", Title: "Uveitis case series", Date: "2020"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	stored, found, err := st.GetResultByPMID(ctx, "42")
	if err != nil {
		t.Fatalf("GetResultByPMID: %v", err)
	}
	if !found {
		t.Fatal("Result should be persisted")
	}

	got := FromStoreResult(stored)
	if got.ID != processed.ID {
		t.Errorf("Stored ID = %q, want %q", got.ID, processed.ID)
	}
	if got.Year != "2020" || len(got.Diseases) != 1 || got.Diseases[0] != "uveitis" {
		t.Errorf("Persisted result: %+v", got)
	}
}

func TestProcessRequiresStore(t *testing.T) {
	m, _ := New(Options{Recognizer: &stubRecognizer{}})

	_, err := m.Process(context.Background(), Record{PMID: "1"})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Missing recognizer: expected ErrInvalidConfig, got %v", err)
	}

	_, err := New(Options{
		Recognizer:        &stubRecognizer{},
		StudyTypePatterns: []string{"(unclosed"},
	})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Bad pattern: expected ErrInvalidConfig, got %v", err)
	}
}

func TestAnalyzeIDsAreUnique(t *testing.T) {
	m, _ := New(Options{Recognizer: &stubRecognizer{}})
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		got, err := m.Analyze(context.Background(), Record{PMID: "1", Title: "T"})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if seen[got.ID] {
			t.Fatalf("Duplicate ID %s", got.ID)
		}
		seen[got.ID] = true
	}
}
