package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paper-agent/config"
	apperrors "paper-agent/errors"
	"paper-agent/web/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SearchAPIHost:    srv.URL,
		SearchAPIKey:     "test-key",
		SearchTimeout:    5 * time.Second,
		SearchMaxResults: 3,
	}
	return New(cfg, zap.NewNop())
}

func TestSearchDecodesResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"results": [
				{"title": "Entanglement", "url": "https://example.org/a", "content": "spooky action", "score": 0.9},
				{"title": "Bell tests", "url": "https://example.org/b", "content": "inequality violations", "score": 0.7}
			]
		}`))
	})

	results, err := c.Search(context.Background(), "quantum entanglement")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "Entanglement", results[0].Title)
}

func TestSearchClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "rate_limited", status: http.StatusTooManyRequests, wantErr: apperrors.ErrRateLimited},
		{name: "auth_failed", status: http.StatusUnauthorized, wantErr: apperrors.ErrAuthFailed},
		{name: "upstream_error", status: http.StatusServiceUnavailable, wantErr: apperrors.ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.Search(context.Background(), "query")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormatResults(t *testing.T) {
	require.Equal(t, "", FormatResults(nil))

	block := FormatResults([]types.SearchResult{
		{Title: "A", URL: "https://a", Content: "alpha"},
		{Title: "B", URL: "https://b", Content: "beta"},
	})
	require.True(t, strings.Contains(block, "[1] A (https://a)"))
	require.True(t, strings.Contains(block, "[2] B (https://b)"))
	require.True(t, strings.Contains(block, "beta"))
}
