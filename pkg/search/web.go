// Package search holds the external retrieval collaborators: metasearch
// web queries and the exchange price API, combined behind one searcher.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"exchange-support-be/pkg/store"
)

// WebProvider queries a SearxNG-compatible metasearch instance and fails
// over to a secondary instance when the primary is unreachable.
type WebProvider struct {
	primaryURL  string
	fallbackURL string
	maxResults  int
	client      *http.Client
	logger      *log.Logger
}

func NewWebProvider(primaryURL, fallbackURL string, maxResults int, logger *log.Logger) *WebProvider {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebProvider{
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		maxResults:  maxResults,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

type searxResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (p *WebProvider) Search(ctx context.Context, query string) ([]store.RetrievalRecord, error) {
	results, err := p.searchInstance(ctx, p.primaryURL, query)
	if err == nil {
		return results, nil
	}
	if p.fallbackURL == "" {
		return nil, err
	}
	p.logger.Printf("[SEARCH] Primary instance failed (%v), trying fallback", err)
	return p.searchInstance(ctx, p.fallbackURL, query)
}

func (p *WebProvider) searchInstance(ctx context.Context, baseURL, query string) ([]store.RetrievalRecord, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	records := make([]store.RetrievalRecord, 0, p.maxResults)
	for _, r := range parsed.Results {
		if len(records) >= p.maxResults {
			break
		}
		text := r.Content
		if text == "" {
			text = r.Title
		}
		records = append(records, store.RetrievalRecord{
			Text:   text,
			Source: "web",
			Score:  r.Score,
			URL:    r.URL,
		})
	}
	return records, nil
}
