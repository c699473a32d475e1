package pdfextract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RemoteClient talks to an optional out-of-process extraction service.
// Different service versions answer with different JSON shapes, so the
// payload is decoded as a variant and normalized in one place instead of
// shape-sniffing at every call site.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewRemoteClient(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ExtractText uploads the document bytes and returns the normalized plain
// text plus the page count when the service reports one.
func (c *RemoteClient) ExtractText(ctx context.Context, name string, data []byte) (string, int, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", 0, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", 0, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", body)
	if err != nil {
		return "", 0, fmt.Errorf("create extract request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", 0, fmt.Errorf("%w: %v", ErrFetchTimeout, err)
		}
		return "", 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read extract response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("%w: extractor status %s", ErrFetchFailed, resp.Status)
	}

	text, pages, err := NormalizePayload(raw)
	if err != nil {
		return "", 0, err
	}

	c.logger.Debug("Remote extraction normalized",
		zap.String("name", name),
		zap.Int("pages", pages),
		zap.Int("characters", len(text)))
	return text, pages, nil
}

// textLikeFields are tried, in order, when the payload is an object of an
// unknown shape.
var textLikeFields = []string{"text", "content", "body", "plain_text"}

// NormalizePayload reduces the extractor's variant reply shapes to one
// plain-text representation with page markers. Recognized variants:
//
//	["page one", "page two"]            array of strings
//	[{"text": "page one"}, ...]         array of objects
//	"whole document"                    single string
//	{"text": "whole document"}          wrapped string
//	{"pages": [...]}                    nested, recurses on pages
//
// Objects of any other shape fall back to the first known text-like
// field; anything else is a decoding error, not silently empty text.
func NormalizePayload(raw json.RawMessage) (string, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", 0, fmt.Errorf("%w: empty extractor payload", ErrCorruptOrEncrypted)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)
		}
		return s, 1, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)
		}
		var sb strings.Builder
		for i, item := range items {
			pageText, _, err := NormalizePayload(item)
			if err != nil {
				return "", 0, err
			}
			fmt.Fprintf(&sb, "--- Page %d ---\n%s\n\n", i+1, pageText)
		}
		return sb.String(), len(items), nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)
		}
		if pages, ok := obj["pages"]; ok {
			return NormalizePayload(pages)
		}
		for _, field := range textLikeFields {
			if v, ok := obj[field]; ok {
				return NormalizePayload(v)
			}
		}
		return "", 0, fmt.Errorf("%w: no text-like field in extractor payload", ErrCorruptOrEncrypted)
	}

	return "", 0, fmt.Errorf("%w: unrecognized extractor payload", ErrCorruptOrEncrypted)
}
