package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"paper-agent/config"
	apperrors "paper-agent/errors"
	"paper-agent/web/types"

	"go.uber.org/zap"
)

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string               `json:"answer"`
	Results []types.SearchResult `json:"results"`
}

// Client queries the web-search service used to augment single chat turns
// with fresh context before generation.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.SearchTimeout},
		logger:     logger,
	}
}

// Search runs one query and returns ranked results. Failures are
// classified with the same sentinels as the generation client so the
// handler can map them to distinct statuses.
func (c *Client) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	reqBody := searchRequest{
		APIKey:     c.cfg.SearchAPIKey,
		Query:      query,
		MaxResults: c.cfg.SearchMaxResults,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := strings.TrimRight(c.cfg.SearchAPIHost, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send search request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.ErrAuthFailed
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("Search service returned failure status",
			zap.String("status", resp.Status))
		return nil, fmt.Errorf("%w: status %s", apperrors.ErrUpstreamUnavailable, resp.Status)
	}

	var sr searchResponse
	if err := json.Unmarshal(bodyBytes, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return sr.Results, nil
}

// FormatResults renders search hits into a compact context block the
// generation prompt can cite from.
func FormatResults(results []types.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Relevant web search results:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] %s (%s)\n%s\n", i+1, r.Title, r.URL, r.Content)
	}
	return sb.String()
}
