// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv queries the arXiv export API incrementally. Results come
// back in ascending submission order; a watermark from the previous run
// marks where processing resumes, so the same paper is never digested
// twice even when date windows overlap.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/internal/httputil"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// apiBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// TextFetcher enriches a paper with text extracted from its PDF. ok is
// false when nothing beyond the abstract could be obtained.
type TextFetcher interface {
	FetchText(ctx context.Context, pdfURL string) (text string, source types.TextSource, ok bool)
}

// WatermarkStore persists the resume point between runs.
type WatermarkStore interface {
	Load() (id string, found bool, err error)
	Save(id string) error
}

// Result is the outcome of one incremental search.
type Result struct {
	// Papers are the new papers in ascending submission order, already
	// enriched with PDF text where possible.
	Papers []types.Paper

	// Scanned is how many feed entries were examined, including the ones
	// skipped while looking for the resume point.
	Scanned int

	// FirstRun is true when no watermark existed before this search.
	FirstRun bool

	// WatermarkFound is true when the stored watermark was seen in the
	// scan. When a watermark exists but was never found, Papers is empty:
	// processing anything would risk duplicates.
	WatermarkFound bool
}

// Watermark returns the ID the caller should persist after the run's
// downstream stages succeed: the newest processed paper.
func (r *Result) Watermark() string {
	if len(r.Papers) == 0 {
		return ""
	}
	return r.Papers[len(r.Papers)-1].ID
}

// Client performs incremental arXiv searches.
type Client struct {
	client *http.Client
	cfg    types.SearchConfig
	marks  WatermarkStore
	texts  TextFetcher

	// now is stubbed in tests to pin the date window.
	now func() time.Time
}

// NewClient returns a Client. texts may be nil to skip PDF enrichment.
func NewClient(cfg types.SearchConfig, marks WatermarkStore, texts TextFetcher) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 20
	}
	if cfg.SearchCeiling <= 0 {
		cfg.SearchCeiling = 288
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		marks:  marks,
		texts:  texts,
		now:    time.Now,
	}
}

// BuildQuery constructs the search_query expression: the submitted-date
// window, the scoped free-text query, and the category filter, ANDed.
func (c *Client) BuildQuery() string {
	var parts []string

	if c.cfg.DaysBack > 0 {
		today := c.now().UTC()
		start := today.AddDate(0, 0, -c.cfg.DaysBack)
		parts = append(parts, fmt.Sprintf("submittedDate:[%s TO %s]",
			start.Format("20060102"), today.Format("20060102")))
	}

	if q := c.cfg.Query; q != "" {
		switch {
		case c.cfg.TitleOnly:
			parts = append(parts, "ti:"+q)
		case c.cfg.AbstractOnly:
			parts = append(parts, "abs:"+q)
		case c.cfg.AuthorOnly:
			parts = append(parts, "au:"+q)
		default:
			parts = append(parts, q)
		}
	}

	var cats []string
	for _, cat := range c.cfg.Categories {
		if cat == "" {
			continue
		}
		if c.cfg.IncludeCrossListed {
			cats = append(cats, "cat:"+cat)
		} else {
			cats = append(cats, "primary_cat:"+cat)
		}
	}
	if len(cats) > 0 {
		parts = append(parts, "("+strings.Join(cats, " OR ")+")")
	}

	if len(parts) == 0 {
		return "*:*"
	}
	return strings.Join(parts, " AND ")
}

// Search scans the feed in ascending submission order, resumes strictly
// after the stored watermark, and returns up to MaxResults new papers.
// The watermark is not advanced here; callers persist Result.Watermark()
// once the downstream stages succeed. Progress is written to w.
func (c *Client) Search(ctx context.Context, w io.Writer) (*Result, error) {
	lastID, found, err := c.marks.Load()
	if err != nil {
		return nil, fmt.Errorf("loading watermark: %w", err)
	}

	res := &Result{FirstRun: !found}
	// With no watermark every entry is new.
	resumed := !found
	if found {
		fmt.Fprintf(w, "resuming after paper %s\n", lastID)
	} else {
		fmt.Fprintln(w, "first run, processing from the start of the window")
	}

	query := c.BuildQuery()
	fmt.Fprintf(w, "query: %s\n", query)

scan:
	for start := 0; start < c.cfg.SearchCeiling; {
		pageSize := c.cfg.PageSize
		if start+pageSize > c.cfg.SearchCeiling {
			pageSize = c.cfg.SearchCeiling - start
		}

		entries, err := c.fetchPage(ctx, query, start, pageSize)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		start += len(entries)

		for _, entry := range entries {
			res.Scanned++
			id := NormalizeID(entry.ID)
			if id == "" {
				continue
			}

			if !resumed {
				if id == lastID {
					resumed = true
					res.WatermarkFound = true
				}
				continue
			}

			if len(res.Papers) >= c.cfg.MaxResults {
				fmt.Fprintf(w, "reached processing cap of %d papers\n", c.cfg.MaxResults)
				break scan
			}

			paper := entryToPaper(entry, id)
			c.enrich(ctx, &paper, w)
			res.Papers = append(res.Papers, paper)
		}

		if len(entries) < pageSize {
			break
		}
	}

	if found && !res.WatermarkFound {
		// The watermark fell outside the scan window. Processing from the
		// start would re-digest old papers, so this run yields nothing.
		fmt.Fprintf(w, "watermark %s not found in %d scanned entries, nothing to process\n", lastID, res.Scanned)
		res.Papers = nil
	}

	fmt.Fprintf(w, "found %d new papers (scanned %d)\n", len(res.Papers), res.Scanned)
	return res, nil
}

// fetchPage requests one page of results, oldest first.
func (c *Client) fetchPage(ctx context.Context, query string, start, pageSize int) ([]atomEntry, error) {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(pageSize))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "ascending")
	if len(c.cfg.IDList) > 0 {
		params.Set("id_list", strings.Join(c.cfg.IDList, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return feed.Entries, nil
}

// enrich attaches PDF-derived text to the paper. The abstract always
// leads the full text so the reviewer sees it even when extraction found
// nothing beyond it.
func (c *Client) enrich(ctx context.Context, paper *types.Paper, w io.Writer) {
	paper.Source = types.TextAbstract
	paper.FullText = paper.Abstract

	if c.texts == nil || paper.PDFURL == "" {
		return
	}

	text, source, ok := c.texts.FetchText(ctx, paper.PDFURL)
	if !ok {
		fmt.Fprintf(w, "PDF extraction failed for %s, using abstract\n", paper.ID)
		return
	}
	paper.Source = source
	paper.FullText = fmt.Sprintf("=== Abstract ===\n%s\n\n%s", paper.Abstract, text)
}

// entryToPaper converts one feed entry.
func entryToPaper(entry atomEntry, id string) types.Paper {
	p := types.Paper{
		ID:              id,
		EntryID:         strings.TrimSpace(entry.ID),
		Title:           strings.TrimSpace(entry.Title),
		Abstract:        strings.TrimSpace(entry.Summary),
		PrimaryCategory: entry.PrimaryCategory.Term,
		DOI:             strings.TrimSpace(entry.DOI),
		Comment:         strings.TrimSpace(entry.Comment),
	}

	for _, a := range entry.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	for _, cat := range entry.Categories {
		p.Categories = append(p.Categories, cat.Term)
	}
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}

	for _, link := range entry.Links {
		p.Links = append(p.Links, link.Href)
		if link.Title == "pdf" {
			p.PDFURL = link.Href
		}
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.Published = t
	}
	if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
		p.Updated = t
	}
	return p
}

// NormalizeID extracts the bare arXiv ID from an entry identifier:
// "http://arxiv.org/abs/2601.00794v3", "arxiv:2601.00794v3", and
// "2601.00794v3" all normalize to "2601.00794".
func NormalizeID(entryID string) string {
	id := strings.TrimSpace(entryID)
	if idx := strings.Index(id, "arxiv.org/abs/"); idx >= 0 {
		id = id[idx+len("arxiv.org/abs/"):]
	} else if strings.HasPrefix(strings.ToLower(id), "arxiv:") {
		id = id[len("arxiv:"):]
	}

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// Atom feed structures for the arXiv export API.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string         `xml:"id"`
	Title           string         `xml:"title"`
	Summary         string         `xml:"summary"`
	Published       string         `xml:"published"`
	Updated         string         `xml:"updated"`
	DOI             string         `xml:"doi"`
	Comment         string         `xml:"comment"`
	Authors         []atomAuthor   `xml:"author"`
	Categories      []atomCategory `xml:"category"`
	PrimaryCategory atomCategory   `xml:"primary_category"`
	Links           []atomLink     `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}
