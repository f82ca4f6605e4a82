// Package txlookup is the client for the multi-chain transaction lookup
// service. The bot core treats it as a single opaque collaborator; the
// service itself fans out to the individual blockchain explorers.
package txlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ChainResult is one chain's view of a transaction hash.
type ChainResult struct {
	Chain         string  `json:"chain"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Symbol        string  `json:"symbol"`
	Confirmations int     `json:"confirmations"`
	ExplorerURL   string  `json:"explorer_url"`
}

// Service resolves a transaction hash across all supported chains. Zero
// results is a valid outcome, not an error.
type Service interface {
	Lookup(ctx context.Context, hash string) ([]ChainResult, error)
}

type HTTPService struct {
	baseURL string
	client  *http.Client
}

var _ Service = &HTTPService{}

func NewHTTPService(baseURL string) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type lookupResponse struct {
	Results []ChainResult `json:"results"`
}

func (s *HTTPService) Lookup(ctx context.Context, hash string) ([]ChainResult, error) {
	endpoint := fmt.Sprintf("%s/api/v1/tx/%s", s.baseURL, url.PathEscape(hash))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transaction lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transaction lookup returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return parsed.Results, nil
}
