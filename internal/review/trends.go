// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/arxiv-digest/internal/clustering"
	"github.com/pdiddy/arxiv-digest/internal/embedding"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// trendPromptTmpl asks the model to condense representative papers into
// 2-4 research hotspots. The output format is fixed Chinese Markdown
// that the report embeds verbatim.
var trendPromptTmpl = template.Must(template.New("trends").Parse(`You are a technology intelligence analyst. Below are {{.Count}} {{.Kind}} from today's arXiv LLM papers.

Based on the keywords, pain points, and innovations in these digests, write a trend brief:
1. Group the papers into 2-4 core research hotspots (e.g. RAG optimization, multimodal, inference acceleration, safety alignment).
2. Under each hotspot, write one short "track observation" naming today's breakthrough or focus in that direction.
3. List the most representative paper titles for the hotspot (titles only).

Follow this Markdown format exactly, with all prose in Chinese:

## 📊 今日趋势速览 (Trend Analysis)

### 🔥 [hotspot name, e.g. RAG 检索增强]
> **赛道观察：** (one sentence on the direction's breakthrough today)
- (paper title 1)
- (paper title 2)

### 🤖 [hotspot name 2]
> **赛道观察：** ...
- ...

---

Paper digests to analyze:
{{.Digests}}`))

// trendFallbackLimit bounds the no-clustering fallback prompt.
const trendFallbackLimit = 15

// trendUnavailable is embedded in the report when every trend path failed.
const trendUnavailable = "*(趋势分析生成失败，请查看下方详细列表)*"

// Embedder is the vector source for trend clustering.
type Embedder interface {
	Embed(ctx context.Context, texts []string, w io.Writer) []embedding.Vector
}

// AnalyzeTrends produces the trend brief for the report. It embeds each
// paper's model-written summary, clusters the vectors, asks the model to
// analyze the representative papers, and annotates those papers in place
// with their cluster metadata for the composite sort. Anything failing
// along the way drops to a flat analysis of the first papers; if that
// fails too, a placeholder comes back. The returned string is always
// usable in the report.
func (r *Reviewer) AnalyzeTrends(ctx context.Context, embedder Embedder, cfg types.ClusteringConfig, reviewed []types.ReviewedPaper, w io.Writer) string {
	if len(reviewed) == 0 {
		return trendUnavailable
	}

	summaries := make([]string, len(reviewed))
	empty := 0
	for i, p := range reviewed {
		summaries[i] = p.Assessment.Summary
		if strings.TrimSpace(summaries[i]) == "" {
			empty++
		}
	}
	if empty == len(reviewed) {
		fmt.Fprintln(w, "no summaries to cluster, using flat trend analysis")
		return r.trendFallback(ctx, reviewed, w)
	}

	vectors := embedder.Embed(ctx, summaries, w)
	if len(vectors) != len(reviewed) {
		fmt.Fprintln(w, "embedding failed, using flat trend analysis")
		return r.trendFallback(ctx, reviewed, w)
	}

	values := make([][]float64, len(vectors))
	for i, v := range vectors {
		values[i] = v.Values
		// Mixed widths would make the distance math index out of range.
		if len(v.Values) != len(values[0]) {
			fmt.Fprintln(w, "inconsistent embedding dimensions, using flat trend analysis")
			return r.trendFallback(ctx, reviewed, w)
		}
	}

	labels := clustering.Cluster(values, cfg)

	reps := clustering.SelectRepresentatives(values, labels, cfg.TopClusters, nil)
	if len(reps) == 0 {
		fmt.Fprintln(w, "no representative papers, using flat trend analysis")
		return r.trendFallback(ctx, reviewed, w)
	}
	fmt.Fprintf(w, "selected %d representative papers from %d\n", len(reps), len(reviewed))

	digests := make([]string, 0, len(reps))
	for _, rep := range reps {
		p := &reviewed[rep.Index]
		p.ClusterID = rep.ClusterID
		p.ClusterSize = rep.ClusterSize
		p.ClusterRank = rep.ClusterRank
		p.DistanceToCenter = rep.DistanceToCenter
		digests = append(digests, paperDigest(*p, true))
	}

	out, err := r.renderAndComplete(ctx, len(reps), "representative papers selected by clustering", digests)
	if err != nil {
		fmt.Fprintf(w, "trend analysis failed: %v\n", err)
		return r.trendFallback(ctx, reviewed, w)
	}
	return out
}

// trendFallback analyzes the first papers without clustering.
func (r *Reviewer) trendFallback(ctx context.Context, reviewed []types.ReviewedPaper, w io.Writer) string {
	limit := len(reviewed)
	if limit > trendFallbackLimit {
		limit = trendFallbackLimit
	}

	digests := make([]string, 0, limit)
	for _, p := range reviewed[:limit] {
		digests = append(digests, paperDigest(p, false))
	}

	out, err := r.renderAndComplete(ctx, limit, "paper digests", digests)
	if err != nil {
		fmt.Fprintf(w, "fallback trend analysis failed: %v\n", err)
		return trendUnavailable
	}
	return out
}

func (r *Reviewer) renderAndComplete(ctx context.Context, count int, kind string, digests []string) (string, error) {
	var buf strings.Builder
	err := trendPromptTmpl.Execute(&buf, struct {
		Count   int
		Kind    string
		Digests string
	}{count, kind, strings.Join(digests, "\n\n---\n\n")})
	if err != nil {
		return "", fmt.Errorf("rendering trend prompt: %w", err)
	}
	return completeWithRetry(ctx, r.backend, buf.String(), r.cfg.RetryCount, r.cfg.RetryDelay)
}

// paperDigest formats one paper's assessment for the trend prompt.
func paperDigest(p types.ReviewedPaper, withSummary bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Paper.Title)
	fmt.Fprintf(&b, "Keywords: %s\n", p.Assessment.Keywords)
	fmt.Fprintf(&b, "Pain point: %s\n", p.Assessment.CorePainPoint)
	fmt.Fprintf(&b, "Innovation: %s", p.Assessment.TechnicalInnovation)
	if withSummary {
		fmt.Fprintf(&b, "\nSummary: %s", p.Assessment.Summary)
	}
	return b.String()
}
