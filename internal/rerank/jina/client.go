// Package jina implements rerank.Reranker against a Jina-compatible
// /rerank endpoint. A local text-embeddings-inference server hosting
// bge-reranker-base speaks the same protocol, so the base URL decides
// whether scoring happens remotely or on the box.
package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/liliang-cn/chaosagent/internal/rerank"
)

// Client calls a Jina-compatible rerank API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

var _ rerank.Reranker = (*Client)(nil)

// New creates a rerank client. apiKey may be empty for unauthenticated local
// servers.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ModelName implements rerank.Reranker.
func (c *Client) ModelName() string { return c.model }

// Rerank implements rerank.Reranker.
func (c *Client) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed rerankResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("rerank api returned error: %s", parsed.Error.Message)
	}

	// The API returns results sorted by score; map them back to input order
	// and insist on a full batch.
	scores := make([]float64, len(documents))
	seen := make([]bool, len(documents))
	for _, r := range parsed.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("rerank result index %d out of range", r.Index)
		}
		scores[r.Index] = r.RelevanceScore
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank response missing score for document %d", i)
		}
	}

	return scores, nil
}
