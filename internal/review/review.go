// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review scores papers with a language model. Each paper gets a
// structured assessment (translated title, keywords, pain point,
// innovation, value, summary) and a screening decision; failed batches
// degrade to an "unevaluated" decision instead of failing the run.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// reviewPromptTmpl asks the model to screen a batch of papers for the
// digest's focus areas and emit one JSON object per paper. Field values
// come back in Chinese to match the audience of the daily report; the
// decision vocabulary is fixed and checked downstream.
var reviewPromptTmpl = template.Must(template.New("review").Parse(`You are a senior technical reviewer screening research papers for "AI applications in finance".

Your task is not to judge academic rigor. For each paper below, judge whether it:
- falls inside the focus areas listed next,
- has a concrete engineering or application path,
- could plausibly transfer to financial-industry systems.

Focus areas (a paper should hit at least one):
1. Speech and audio: recognition, understanding, generation, audio-text fusion, call analysis, compliance.
2. Multimodal: text-image, text-audio, text-structured-data, alignment, grounded reasoning.
3. Large language models: engineering, reasoning, alignment, evaluation, task-specific applications, integration with business systems and tools.
4. Data synthesis: generation methods with reproducible pipelines, synthetic data for training, evaluation, or alignment.
5. Agents: tool-using or multi-step agents with a concrete system architecture.
6. Mixture of experts: routing, load balancing, inference acceleration, production-scale concerns.

Mark a paper "不推荐" outright when it is pure theory without a system, has no experiments beyond toy tasks, or its scenario has no plausible transfer to enterprise systems.

Read the {{len .Papers}} papers below and output a JSON array with one object per paper, in the same order, with these fields (values in Chinese):
- chinese_title: the title translated to Chinese
- keywords: 2-5 keyword tags separated by Chinese commas
- core_pain_point: one sentence on the gap in existing techniques
- technical_innovation: the method as a numbered list (1) 2) 3) ...), naming concrete algorithms, architectures, data scale, and key results; under 200 characters
- application_value: what the technique buys in practice, under 88 characters
- summary: a plain-language summary under 200 characters
- decision: exactly one of "推荐", "边缘可看", "不推荐"
- decision_reason: up to 150 characters on why, naming the focus area hit or missed

Rules:
1. No filler phrases; every value must be direct and technical.
2. Output ONLY the JSON array, no commentary or code fences.
3. Escape all double quotes inside values and emit no raw newlines inside strings.
4. The array must contain exactly {{len .Papers}} objects separated by commas.

Papers:
{{range $i, $p := .Papers}}
Paper {{$i}}:
Title: {{$p.Title}}
Authors: {{$p.AuthorLine}}
Published: {{$p.Published}}
Link: {{$p.EntryID}}
{{$p.ContentLabel}}:
{{$p.Content}}
{{end}}`))

// promptPaper is the per-paper view the template renders.
type promptPaper struct {
	Title        string
	AuthorLine   string
	Published    string
	EntryID      string
	ContentLabel string
	Content      string
}

// maxContentChars bounds per-paper text in the prompt so a batch stays
// inside the model's context window.
const maxContentChars = 20000

// Reviewer runs batches of papers through the model.
type Reviewer struct {
	backend ChatBackend
	cfg     types.ReviewConfig
}

// NewReviewer returns a Reviewer using backend.
func NewReviewer(backend ChatBackend, cfg types.ReviewConfig) *Reviewer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &Reviewer{backend: backend, cfg: cfg}
}

// ReviewAll assesses every paper, batch by batch. The result always has
// one entry per input paper in input order; papers in a failed batch
// carry an empty assessment with the unevaluated decision. Progress is
// written to w.
func (r *Reviewer) ReviewAll(ctx context.Context, papers []types.Paper, w io.Writer) []types.ReviewedPaper {
	out := make([]types.ReviewedPaper, 0, len(papers))

	for start := 0; start < len(papers); start += r.cfg.BatchSize {
		end := start + r.cfg.BatchSize
		if end > len(papers) {
			end = len(papers)
		}
		batch := papers[start:end]
		fmt.Fprintf(w, "reviewing papers %d-%d of %d\n", start+1, end, len(papers))

		assessments, err := r.reviewBatch(ctx, batch)
		if err != nil {
			fmt.Fprintf(w, "batch %d-%d failed, marking unevaluated: %v\n", start+1, end, err)
			assessments = make([]types.Assessment, len(batch))
			for i := range assessments {
				assessments[i].Decision = types.DecisionUnevaluated
			}
		}

		for i, p := range batch {
			out = append(out, types.ReviewedPaper{
				Paper:            p,
				Assessment:       assessments[i],
				ClusterID:        -1,
				ClusterRank:      types.NoiseRank,
				DistanceToCenter: types.NoiseDistance,
			})
		}
	}
	return out
}

// reviewBatch renders the prompt for one batch, calls the model, and
// parses the assessments.
func (r *Reviewer) reviewBatch(ctx context.Context, batch []types.Paper) ([]types.Assessment, error) {
	prompt, err := renderReviewPrompt(batch)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := completeWithRetry(ctx, r.backend, prompt, r.cfg.RetryCount, r.cfg.RetryDelay)
	if err != nil {
		return nil, err
	}

	assessments, err := parseAssessments(raw)
	if err != nil {
		return nil, err
	}
	if len(assessments) != len(batch) {
		return nil, fmt.Errorf("model returned %d assessments for %d papers", len(assessments), len(batch))
	}

	for i := range assessments {
		if types.DecisionPriority(assessments[i].Decision) > types.DecisionPriority(types.DecisionReject) {
			assessments[i].Decision = types.DecisionUnevaluated
		}
	}
	return assessments, nil
}

// renderReviewPrompt builds the batch prompt. Papers with full text get
// it, truncated; the rest fall back to the abstract.
func renderReviewPrompt(batch []types.Paper) (string, error) {
	view := struct{ Papers []promptPaper }{}
	for _, p := range batch {
		content := p.FullText
		label := "Key sections (abstract, introduction, related work, conclusion)"
		if content == "" {
			content = p.Abstract
			label = "Abstract"
		}
		if len(content) > maxContentChars {
			content = content[:maxContentChars] + "\n\n[content truncated]"
		}

		view.Papers = append(view.Papers, promptPaper{
			Title:        p.Title,
			AuthorLine:   strings.Join(p.Authors, ", "),
			Published:    p.Published.Format("2006-01-02"),
			EntryID:      p.EntryID,
			ContentLabel: label,
			Content:      content,
		})
	}

	var buf strings.Builder
	if err := reviewPromptTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// adjacentObjects repairs arrays where the model dropped the comma
// between objects.
var adjacentObjects = regexp.MustCompile(`}\s*{`)

// codeFence strips a leading markdown fence line.
var codeFence = regexp.MustCompile("^```(?:json)?\\s*")

// parseAssessments recovers a JSON array from model output. Models wrap
// answers in code fences and leak raw newlines into string values, so
// the text is scrubbed before parsing; as a last resort the outermost
// bracketed span is tried on its own.
func parseAssessments(raw string) ([]types.Assessment, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = codeFence.ReplaceAllString(s, "")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = adjacentObjects.ReplaceAllString(s, "},{")

	var assessments []types.Assessment
	if err := json.Unmarshal([]byte(s), &assessments); err == nil {
		return assessments, nil
	}

	first := strings.Index(s, "[")
	last := strings.LastIndex(s, "]")
	if first < 0 || last <= first {
		return nil, fmt.Errorf("no JSON array in model output")
	}
	if err := json.Unmarshal([]byte(s[first:last+1]), &assessments); err != nil {
		return nil, fmt.Errorf("parsing assessments: %w", err)
	}
	return assessments, nil
}

// SortByPriority orders reviewed papers for the report: recommended
// first, then by cluster rank (largest theme first), then by distance to
// the cluster center. The sort is stable, so papers the trend stage never
// annotated keep their review order within a decision band.
func SortByPriority(papers []types.ReviewedPaper) {
	sort.SliceStable(papers, func(i, j int) bool {
		pi, pj := papers[i], papers[j]
		di := types.DecisionPriority(pi.Assessment.Decision)
		dj := types.DecisionPriority(pj.Assessment.Decision)
		if di != dj {
			return di < dj
		}
		if pi.ClusterRank != pj.ClusterRank {
			return pi.ClusterRank < pj.ClusterRank
		}
		return pi.DistanceToCenter < pj.DistanceToCenter
	})
}
