package entrez

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func TestSearch(t *testing.T) {
	client := &Client{
		BaseURL: "https://eutils.test/entrez/eutils",
		Email:   "dev@example.org",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if !strings.Contains(req.URL.Path, "esearch.fcgi") {
					t.Fatalf("unexpected path %s", req.URL.Path)
				}
				q := req.URL.Query()
				if q.Get("db") != "pubmed" || q.Get("retmode") != "json" {
					t.Fatalf("unexpected query %v", q)
				}
				if q.Get("term") != "glaucoma" || q.Get("retmax") != "5" {
					t.Fatalf("unexpected term/retmax %v", q)
				}
				if q.Get("sort") != "relevance" {
					t.Fatalf("results should be relevance sorted, got %v", q)
				}
				if q.Get("email") != "dev@example.org" {
					t.Fatalf("email should be passed, got %v", q)
				}
				return &http.Response{
					StatusCode: 200,
					Body: io.NopCloser(strings.NewReader(`{
						"esearchresult":{"count":"2","idlist":["34567890","11111111"]}
					}`)),
					Header: make(http.Header),
				}
			}),
		},
	}

	ids, err := client.Search(context.Background(), "glaucoma", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 2 || ids[0] != "34567890" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestSearchError(t *testing.T) {
	client := &Client{
		BaseURL: "https://eutils.test/entrez/eutils",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader(`{"ERROR":"Invalid db name"}`)),
					Header:     make(http.Header),
				}
			}),
		},
	}
	if _, err := client.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchHTTPError(t *testing.T) {
	client := &Client{
		BaseURL: "https://eutils.test/entrez/eutils",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return &http.Response{
					StatusCode: 429,
					Status:     "429 Too Many Requests",
					Body:       io.NopCloser(strings.NewReader("")),
					Header:     make(http.Header),
				}
			}),
		},
	}
	if _, err := client.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestFetchMedlineBatches(t *testing.T) {
	var batches []string
	client := &Client{
		BaseURL: "https://eutils.test/entrez/eutils",
		Delay:   time.Millisecond,
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if !strings.Contains(req.URL.Path, "efetch.fcgi") {
					t.Fatalf("unexpected path %s", req.URL.Path)
				}
				ids := req.URL.Query().Get("id")
				batches = append(batches, ids)
				var body strings.Builder
				for _, id := range strings.Split(ids, ",") {
					body.WriteString("PMID- " + id + "\nTI  - Title " + id + ".\n\n")
				}
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader(body.String())),
					Header:     make(http.Header),
				}
			}),
		},
	}

	records, err := client.FetchMedline(context.Background(), []string{"1", "2", "3", "4", "5"}, 2)
	if err != nil {
		t.Fatalf("FetchMedline: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	if len(batches) != 3 || batches[0] != "1,2" || batches[2] != "5" {
		t.Fatalf("unexpected batching %v", batches)
	}
	if records[0].PMID != "1" || records[4].Title != "Title 5." {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestFetchMedlineStripsMarkup(t *testing.T) {
	client := &Client{
		BaseURL: "https://eutils.test/entrez/eutils",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				body := "PMID- 1\nTI  - Expression of <i>MYOC</i> in glaucoma.\nAB  - H<sub>2</sub>O levels rose.\n"
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader(body)),
					Header:     make(http.Header),
				}
			}),
		},
	}

	records, err := client.FetchMedline(context.Background(), []string{"1"}, 10)
	if err != nil {
		t.Fatalf("FetchMedline: %v", err)
	}
	if records[0].Title != "Expression of MYOC in glaucoma." {
		t.Fatalf("markup should be stripped from title, got %q", records[0].Title)
	}
	if records[0].Abstract[0] != "H2O levels rose." {
		t.Fatalf("markup should be stripped from abstract, got %q", records[0].Abstract[0])
	}
}

func TestFetchMedlineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	client := &Client{
		BaseURL: "https://eutils.test/entrez/eutils",
		Delay:   10 * time.Second, // pause would block without cancellation
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				calls++
				cancel()
				return &http.Response{
					StatusCode: 200,
					Body:       io.NopCloser(strings.NewReader("PMID- 1\nTI  - T.\n")),
					Header:     make(http.Header),
				}
			}),
		},
	}

	records, err := client.FetchMedline(ctx, []string{"1", "2"}, 1)
	if err == nil {
		t.Fatal("expected context error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
	if len(records) != 1 {
		t.Fatalf("partial records should be returned, got %d", len(records))
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"<i>BRCA1</i> variants", "BRCA1 variants"},
		{"CO<sub>2</sub> exposure", "CO2 exposure"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := StripMarkup(tc.in); got != tc.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	client := &Client{}
	if _, err := client.Search(context.Background(), "", 5); err == nil {
		t.Fatal("expected error for empty query")
	}
}
