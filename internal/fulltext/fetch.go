// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fulltext downloads paper PDFs and extracts their text, either
// whole or reduced to the key sections a reviewer cares about. Every
// failure here is recoverable: callers get ("", false) and fall back to
// the abstract.
package fulltext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Mode selects how much of the document to extract.
type Mode int

const (
	// ModeFull extracts text from every page.
	ModeFull Mode = iota

	// ModeSections scans a bounded page prefix and reduces it to the key
	// sections, falling back to a bounded raw prefix.
	ModeSections
)

// Fetcher downloads PDFs and extracts text.
type Fetcher struct {
	client *http.Client
	cfg    types.PDFConfig
}

// NewFetcher returns a Fetcher using the config's timeout and limits.
func NewFetcher(cfg types.PDFConfig) *Fetcher {
	if cfg.MaxScanPages <= 0 {
		cfg.MaxScanPages = 20
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 20000
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// FetchText downloads the PDF at url and returns extracted text. The
// second return is false when the download or extraction failed; the
// caller should substitute the abstract. The returned types.TextSource
// distinguishes located sections from the raw-prefix fallback.
func (f *Fetcher) FetchText(ctx context.Context, url string, mode Mode) (string, types.TextSource, bool) {
	data, err := f.download(ctx, url)
	if err != nil {
		return "", "", false
	}

	pageLimit := 0
	if mode == ModeSections {
		pageLimit = f.cfg.MaxScanPages
	}

	text, err := extractPages(data, pageLimit)
	if err != nil || strings.TrimSpace(text) == "" {
		return "", "", false
	}

	if mode == ModeFull {
		return text, types.TextRaw, true
	}

	if sections, ok := ExtractSections(text); ok {
		return sections, types.TextSections, true
	}

	// No recognizable sections: a bounded prefix still beats the bare abstract.
	if len(text) > f.cfg.MaxChars {
		text = text[:f.cfg.MaxChars]
	}
	return text, types.TextRaw, true
}

// download GETs url and returns the body. Non-200 statuses and transport
// errors are reported as errors; callers treat them as "no full text".
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// extractPages parses data as a PDF and concatenates non-empty page text.
// pageLimit 0 means all pages. Pages whose text extraction fails are
// skipped; the document as a whole only fails when the reader cannot open it.
func extractPages(data []byte, pageLimit int) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	total := reader.NumPage()
	if pageLimit > 0 && total > pageLimit {
		total = pageLimit
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return b.String(), nil
}
