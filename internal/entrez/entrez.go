// Package entrez is a minimal client for the NCBI E-utilities API.
package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/medscan/internal/medline"
)

// DefaultBaseURL is the production E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// DefaultDelay spaces out requests to stay under NCBI's rate limit for
// anonymous clients (3 requests per second).
const DefaultDelay = 340 * time.Millisecond

// Client calls PubMed esearch and efetch.
type Client struct {
	BaseURL string
	// Email identifies the caller to NCBI, as their usage policy asks.
	Email  string
	APIKey string
	// Delay is the pause between consecutive requests.
	Delay time.Duration

	HTTPClient *http.Client
}

type searchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
	Error string `json:"ERROR"`
}

// Search runs an esearch query and returns up to retmax PMIDs.
func (c *Client) Search(ctx context.Context, query string, retmax int) ([]string, error) {
	if query == "" {
		return nil, fmt.Errorf("entrez: query required")
	}
	if retmax <= 0 {
		retmax = 100
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(retmax))
	params.Set("retmode", "json")
	// Relevance order decides which PMIDs survive the retmax cap.
	params.Set("sort", "relevance")
	c.identify(params)

	body, err := c.get(ctx, "/esearch.fcgi", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var payload searchResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("entrez: decode esearch response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("entrez: esearch: %s", payload.Error)
	}
	return payload.ESearchResult.IDList, nil
}

// FetchMedline retrieves MEDLINE records for the given PMIDs, batch IDs
// at a time, pausing between requests.
func (c *Client) FetchMedline(ctx context.Context, pmids []string, batch int) ([]medline.Record, error) {
	if batch <= 0 {
		batch = 50
	}

	var records []medline.Record
	for start := 0; start < len(pmids); start += batch {
		if start > 0 {
			if err := c.pause(ctx); err != nil {
				return records, err
			}
		}

		end := start + batch
		if end > len(pmids) {
			end = len(pmids)
		}

		chunk, err := c.fetchBatch(ctx, pmids[start:end])
		if err != nil {
			return records, fmt.Errorf("entrez: fetch batch %d-%d: %w", start, end, err)
		}
		records = append(records, chunk...)
	}
	return records, nil
}

func (c *Client) fetchBatch(ctx context.Context, pmids []string) ([]medline.Record, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("rettype", "medline")
	params.Set("retmode", "text")
	c.identify(params)

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	records := medline.Parse(string(data))
	for i := range records {
		records[i].Title = StripMarkup(records[i].Title)
		for j, ab := range records[i].Abstract {
			records[i].Abstract[j] = StripMarkup(ab)
		}
	}
	return records, nil
}

func (c *Client) identify(params url.Values) {
	if c.Email != "" {
		params.Set("email", c.Email)
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("entrez: %s returned %s", path, resp.Status)
	}
	return resp.Body, nil
}

func (c *Client) pause(ctx context.Context) error {
	delay := c.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// StripMarkup removes HTML tags that PubMed leaves in titles and
// abstracts, such as <i> and <sub>, keeping the text content.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var buf strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(buf.String())
		case html.TextToken:
			buf.Write(tok.Text())
		}
	}
}
