package genclient

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

	"go.uber.org/zap"
)

// Options are the decoding parameters for one generation request.
// Zero values fall back to the service defaults below.
type Options struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

const (
	defaultTemperature     = 0.7
	defaultTopK            = 40
	defaultTopP            = 0.95
	defaultMaxOutputTokens = 8192
)

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role,omitempty"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback"`
}

// Default safety thresholds sent with every request.
var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.GenerationTimeout},
		logger:     logger,
	}
}

// Generate performs a single non-streaming generation call and returns the
// first candidate's text. Upstream failures are classified so callers can
// choose a per-kind retry or surfacing policy:
// HTTP 429 -> ErrRateLimited, 401 -> ErrAuthFailed, other non-2xx ->
// ErrUpstreamUnavailable, safety rejection -> ErrContentFiltered.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopK == 0 {
		opts.TopK = defaultTopK
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	if opts.MaxOutputTokens == 0 {
		opts.MaxOutputTokens = defaultMaxOutputTokens
	}

	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []contentPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			TopK:            opts.TopK,
			TopP:            opts.TopP,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
		SafetySettings: defaultSafetySettings,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.GenerationAPIHost, "/"), c.cfg.GenerationModel)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.GenerationAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send generate request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return "", apperrors.ErrAuthFailed
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("Generation service returned failure status",
			zap.String("status", resp.Status),
			zap.Int("body_bytes", len(bodyBytes)))
		return "", fmt.Errorf("%w: status %s", apperrors.ErrUpstreamUnavailable, resp.Status)
	}

	var gr generateResponse
	if err := json.Unmarshal(bodyBytes, &gr); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", apperrors.ErrContentFiltered, gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", apperrors.ErrInvalidGenerationOutput)
	}

	first := gr.Candidates[0]
	if strings.EqualFold(first.FinishReason, "SAFETY") {
		return "", fmt.Errorf("%w: candidate finished with SAFETY", apperrors.ErrContentFiltered)
	}

	var sb strings.Builder
	for _, part := range first.Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty candidate text", apperrors.ErrInvalidGenerationOutput)
	}
	return text, nil
}
