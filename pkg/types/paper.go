// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the arxiv-digest pipeline.
package types

import "time"

// TextSource indicates which content the pipeline obtained for a paper.
// The pipeline treats all sources the same downstream, but the marker
// preserves the distinction between real signal and fallback.
type TextSource string

const (
	// TextSections means the PDF was fetched and key sections were located.
	TextSections TextSource = "sections"

	// TextRaw means the PDF was fetched but no key sections were found;
	// the text is a bounded raw prefix of the document.
	TextRaw TextSource = "raw"

	// TextAbstract means PDF extraction failed and only the abstract is available.
	TextAbstract TextSource = "abstract"
)

// Paper holds one arXiv entry's metadata and derived content.
type Paper struct {
	// ID is the normalized arXiv identifier with any version suffix
	// stripped (e.g. "2601.00794", never "2601.00794v3").
	ID string `json:"id" yaml:"id"`

	// EntryID is the raw identifier URL from the Atom feed.
	EntryID string `json:"entry_id" yaml:"entry_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the first submission time.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the latest revision time.
	Updated time.Time `json:"updated" yaml:"updated"`

	// Abstract is the paper abstract as returned by the API.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FullText is the enriched content: abstract plus extracted PDF
	// sections when available, or a fallback per Source.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Source records how FullText was obtained.
	Source TextSource `json:"text_source,omitempty" yaml:"text_source,omitempty"`

	// PrimaryCategory is the paper's primary arXiv category (e.g. "cs.CL").
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`

	// Categories lists all categories including cross-listings.
	Categories []string `json:"categories" yaml:"categories"`

	// Links lists the entry's link URLs in feed order.
	Links []string `json:"links,omitempty" yaml:"links,omitempty"`

	// PDFURL is the direct PDF link, empty if the feed carried none.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// DOI is the registered DOI, if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Comment is the author-supplied comment field.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Decision values produced by the review stage. The report and the
// composite sort depend on exactly these strings.
const (
	DecisionRecommend   = "推荐"
	DecisionBorderline  = "边缘可看"
	DecisionReject      = "不推荐"
	DecisionUnevaluated = "未评估"
)

// DecisionPriority maps a decision to its sort priority (lower sorts first).
// Unknown decisions sort after all known ones.
func DecisionPriority(decision string) int {
	switch decision {
	case DecisionRecommend:
		return 0
	case DecisionBorderline:
		return 1
	case DecisionReject:
		return 2
	case DecisionUnevaluated:
		return 3
	default:
		return 4
	}
}

// Assessment is the structured judgment the review model returns for one paper.
type Assessment struct {
	// ChineseTitle is the translated title.
	ChineseTitle string `json:"chinese_title" yaml:"chinese_title"`

	// Keywords is a short comma-separated tag list.
	Keywords string `json:"keywords" yaml:"keywords"`

	// CorePainPoint states the gap the paper addresses, one sentence.
	CorePainPoint string `json:"core_pain_point" yaml:"core_pain_point"`

	// TechnicalInnovation describes the method as a numbered list.
	TechnicalInnovation string `json:"technical_innovation" yaml:"technical_innovation"`

	// ApplicationValue states what the technique enables.
	ApplicationValue string `json:"application_value" yaml:"application_value"`

	// Summary is a plain-language recap of the paper.
	Summary string `json:"summary" yaml:"summary"`

	// Decision is one of the Decision* constants.
	Decision string `json:"decision" yaml:"decision"`

	// DecisionReason justifies the decision.
	DecisionReason string `json:"decision_reason" yaml:"decision_reason"`
}

// ReviewedPaper pairs a paper with its assessment and, after trend
// analysis, its cluster annotations.
type ReviewedPaper struct {
	Paper      Paper      `json:"paper" yaml:"paper"`
	Assessment Assessment `json:"assessment" yaml:"assessment"`

	// ClusterID is the cluster label, -1 for noise, or unset when trend
	// analysis did not run.
	ClusterID int `json:"cluster_id" yaml:"cluster_id"`

	// ClusterSize is the member count of the paper's cluster.
	ClusterSize int `json:"cluster_size" yaml:"cluster_size"`

	// ClusterRank orders clusters by size (0 = largest). NoiseRank marks
	// papers sampled from the noise set and papers never clustered.
	ClusterRank int `json:"cluster_rank" yaml:"cluster_rank"`

	// DistanceToCenter is the Euclidean distance from the paper's summary
	// vector to its cluster centroid. NoiseDistance for noise samples.
	DistanceToCenter float64 `json:"distance_to_center" yaml:"distance_to_center"`
}

// Sentinel annotations for papers outside any ranked cluster.
const (
	NoiseRank     = 999
	NoiseDistance = 999.0
)
