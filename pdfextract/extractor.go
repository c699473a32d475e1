package pdfextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"

	"paper-agent/config"

	lru "github.com/hashicorp/golang-lru"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Extraction failure taxonomy. Each kind is distinguishable so callers
// can label failed documents without aborting a batch.
var (
	ErrFetchTimeout       = errors.New("document fetch timed out")
	ErrFetchFailed        = errors.New("document fetch failed")
	ErrPayloadTooLarge    = errors.New("document payload too large")
	ErrEmptyPayload       = errors.New("document payload is empty")
	ErrCorruptOrEncrypted = errors.New("document is corrupt or encrypted")
	ErrUnsupportedFormat  = errors.New("document format not supported")
)

// Result is the outcome of extracting one document. LowConfidence marks
// text that failed the word-shape heuristic; it is a warning, not an
// error, and the text is still usable as context.
type Result struct {
	URL           string
	Name          string
	Text          string
	Pages         int
	Characters    int
	LowConfidence bool
}

// Extractor downloads PDFs and turns them into cleaned plain text.
// Extraction is a pure function of the URL apart from the network fetch,
// so successful results are cached by URL.
type Extractor struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpClient *http.Client
	cache      *lru.Cache
	remote     *RemoteClient
}

func New(cfg *config.Config, logger *zap.Logger) (*Extractor, error) {
	cache, err := lru.New(cfg.PDFCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create extraction cache: %w", err)
	}

	var remote *RemoteClient
	if cfg.PDFExtractorAddress != "" {
		remote = NewRemoteClient(cfg.PDFExtractorAddress, cfg.PDFFetchTimeout, logger)
	}

	return &Extractor{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.PDFFetchTimeout},
		cache:      cache,
		remote:     remote,
	}, nil
}

// Extract downloads the document at documentURL and returns its cleaned
// plain text. The fetch is bounded by the configured timeout and payload
// cap; anything past those bounds is a classified error, never a crash.
func (e *Extractor) Extract(ctx context.Context, documentURL string) (*Result, error) {
	if cached, ok := e.cache.Get(documentURL); ok {
		res := cached.(*Result)
		e.logger.Debug("Extraction cache hit", zap.String("url", documentURL))
		return res, nil
	}

	data, err := e.fetch(ctx, documentURL)
	if err != nil {
		return nil, err
	}

	var text string
	var pages int
	if e.remote != nil {
		text, pages, err = e.remote.ExtractText(ctx, documentName(documentURL), data)
	} else {
		text, pages, err = parsePDF(data)
	}
	if err != nil {
		return nil, err
	}

	text = CleanText(text, e.cfg.PDFMaxChars)

	res := &Result{
		URL:           documentURL,
		Name:          documentName(documentURL),
		Text:          text,
		Pages:         pages,
		Characters:    len(text),
		LowConfidence: !IsValidExtraction(text),
	}

	e.logger.Info("PDF text extraction completed",
		zap.String("url", documentURL),
		zap.Int("pages", pages),
		zap.Int("characters", res.Characters),
		zap.Bool("low_confidence", res.LowConfidence))

	e.cache.Add(documentURL, res)
	return res, nil
}

func (e *Extractor) fetch(ctx context.Context, documentURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.PDFFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, documentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrFetchFailed, resp.Status)
	}
	if resp.ContentLength > e.cfg.PDFMaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.cfg.PDFMaxPayloadBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrFetchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > e.cfg.PDFMaxPayloadBytes {
		return nil, fmt.Errorf("%w: over %d bytes", ErrPayloadTooLarge, e.cfg.PDFMaxPayloadBytes)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

// parsePDF extracts per-page text from raw PDF bytes with page-boundary
// markers. The parser panics on some malformed inputs, so those are
// recovered and reported as corrupt.
func parsePDF(data []byte) (text string, pages int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", 0, ErrUnsupportedFormat
	}

	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("%w: parser panic: %v", ErrCorruptOrEncrypted, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)
	}

	var fullText strings.Builder
	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		fullText.WriteString(fmt.Sprintf("--- Page %d ---\n", pageNum))
		fullText.WriteString(pageText)
		fullText.WriteString("\n\n")
	}

	out := fullText.String()
	if strings.TrimSpace(out) == "" {
		return "", 0, fmt.Errorf("%w: no extractable text", ErrCorruptOrEncrypted)
	}
	return out, totalPages, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func documentName(documentURL string) string {
	u, err := url.Parse(documentURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return documentURL
	}
	return path.Base(u.Path)
}
