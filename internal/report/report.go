// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the daily digest Markdown: a header with
// decision statistics, the trend brief, and the sorted paper list.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Counts tallies review decisions for the header and the pie chart.
type Counts struct {
	Recommend   int
	Borderline  int
	Reject      int
	Unevaluated int
}

// Total is the number of counted papers.
func (c Counts) Total() int {
	return c.Recommend + c.Borderline + c.Reject + c.Unevaluated
}

// CountDecisions tallies the decision of each reviewed paper.
func CountDecisions(papers []types.ReviewedPaper) Counts {
	var c Counts
	for _, p := range papers {
		switch p.Assessment.Decision {
		case types.DecisionRecommend:
			c.Recommend++
		case types.DecisionBorderline:
			c.Borderline++
		case types.DecisionReject:
			c.Reject++
		default:
			c.Unevaluated++
		}
	}
	return c
}

// Generator renders and saves digest reports.
type Generator struct {
	cfg types.ReportConfig
	loc *time.Location
}

// NewGenerator returns a Generator. An unknown or empty timezone falls
// back to Asia/Shanghai, the digest's home timezone.
func NewGenerator(cfg types.ReportConfig) *Generator {
	tz := cfg.Timezone
	if tz == "" {
		tz = "Asia/Shanghai"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return &Generator{cfg: cfg, loc: loc}
}

// Build renders the full report. papers must already be sorted; trend is
// the trend brief Markdown, embedded as-is. chartFile, when non-empty,
// is the relative path of the decision chart to reference.
func (g *Generator) Build(papers []types.ReviewedPaper, trend, chartFile string, generatedAt time.Time) string {
	counts := CountDecisions(papers)

	var b strings.Builder
	b.WriteString("# Arxiv LLM 每日研报\n\n")
	fmt.Fprintf(&b, "> **更新时间**：%s\n", generatedAt.In(g.loc).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "> **论文数量**：%d 篇\n", len(papers))
	fmt.Fprintf(&b, "> **推荐分布**：⭐推荐 %d 篇 | 📌边缘可看 %d 篇 | ❌不推荐 %d 篇\n",
		counts.Recommend, counts.Borderline, counts.Reject)
	b.WriteString("> **自动生成**：By arxiv-digest\n\n")

	if chartFile != "" {
		fmt.Fprintf(&b, "![决策分布](%s)\n\n", chartFile)
	}

	b.WriteString("---\n\n")
	b.WriteString(trend)
	b.WriteString("\n\n---\n\n")
	b.WriteString("## 📝 论文详细列表\n\n")

	for i, p := range papers {
		b.WriteString(formatPaper(i+1, p))
		b.WriteString("\n\n")
	}

	b.WriteString("---\n*Generated by arxiv-digest based on arXiv*\n")
	return b.String()
}

// formatPaper renders one paper's fixed-format block.
func formatPaper(num int, p types.ReviewedPaper) string {
	decision := p.Assessment.Decision
	if decision == "" {
		decision = types.DecisionUnevaluated
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %d. %s\n", num, p.Paper.Title)
	fmt.Fprintf(&b, "- **中文标题**: %s\n", p.Assessment.ChineseTitle)
	fmt.Fprintf(&b, "- **Link**: %s\n", p.Paper.EntryID)
	fmt.Fprintf(&b, "- **推荐决策:** %s\n", decision)
	fmt.Fprintf(&b, "- **决策理由:** %s\n", p.Assessment.DecisionReason)
	fmt.Fprintf(&b, "- **关键词:** %s\n", p.Assessment.Keywords)
	fmt.Fprintf(&b, "- **核心痛点:** %s\n", p.Assessment.CorePainPoint)
	fmt.Fprintf(&b, "- **应用价值:** %s\n", p.Assessment.ApplicationValue)
	fmt.Fprintf(&b, "- **总结:** %s\n", p.Assessment.Summary)
	fmt.Fprintf(&b, "- **技术创新:** %s\n", p.Assessment.TechnicalInnovation)
	b.WriteString("\n---")
	return b.String()
}

// Save writes the report and its decision chart to the output directory
// and returns the report path. File names carry the generation time so
// successive runs never clobber each other.
func (g *Generator) Save(papers []types.ReviewedPaper, trend string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	stamp := generatedAt.In(g.loc).Format("20060102_150405")

	chartFile := fmt.Sprintf("decisions_%s.svg", stamp)
	chart := PieChartSVG(CountDecisions(papers))
	if err := os.WriteFile(filepath.Join(g.cfg.OutputDir, chartFile), []byte(chart), 0o644); err != nil {
		return "", fmt.Errorf("writing chart: %w", err)
	}

	content := g.Build(papers, trend, chartFile, generatedAt)
	path := filepath.Join(g.cfg.OutputDir, fmt.Sprintf("summary_%s.md", stamp))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
