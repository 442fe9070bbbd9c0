// Package biobert calls a hosted token-classification endpoint serving a
// BioBERT-style NER model.
package biobert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/medscan/pkg/medscan/recognizer"
)

// Client calls a Hugging Face style inference endpoint.
type Client struct {
	// Endpoint is the full URL of the token-classification endpoint.
	Endpoint string
	// APIKey, when set, is sent as a bearer token.
	APIKey string

	HTTPClient *http.Client
}

type inferRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters inferParameters `json:"parameters"`
}

type inferParameters struct {
	AggregationStrategy string `json:"aggregation_strategy"`
}

// inferSpan mirrors the endpoint's span JSON. Some deployments report the
// label under "entity_group", older ones under "entity".
type inferSpan struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

type inferError struct {
	Error string `json:"error"`
}

// Recognize sends text to the endpoint and returns the recognized spans in
// document order.
func (c *Client) Recognize(ctx context.Context, text string) ([]recognizer.Span, error) {
	if c.Endpoint == "" {
		return nil, fmt.Errorf("biobert: endpoint required")
	}

	reqBody, err := json.Marshal(inferRequest{
		Inputs:     text,
		Parameters: inferParameters{AggregationStrategy: "simple"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr inferError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("biobert: %s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("biobert: unexpected status %d", resp.StatusCode)
	}

	var raw []inferSpan
	if err := json.Unmarshal(body, &raw); err != nil {
		// A 200 with an error object instead of a span array.
		var apiErr inferError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("biobert: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("biobert: malformed response: %w", err)
	}

	spans := make([]recognizer.Span, 0, len(raw))
	for _, r := range raw {
		label := r.EntityGroup
		if label == "" {
			label = r.Entity
		}
		spans = append(spans, recognizer.Span{
			Text:  strings.TrimSpace(r.Word),
			Label: label,
			Score: r.Score,
		})
	}
	return spans, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}
