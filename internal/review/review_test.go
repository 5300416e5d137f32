// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// scriptedBackend returns canned responses in order, or errors.
type scriptedBackend struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (s *scriptedBackend) Complete(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func TestCompleteWithRetryReportsAttempts(t *testing.T) {
	backend := &scriptedBackend{errs: []error{
		fmt.Errorf("down"), fmt.Errorf("down"), fmt.Errorf("down"),
	}}

	_, err := completeWithRetry(context.Background(), backend, "prompt", 2, 0)
	require.Error(t, err)
	assert.Equal(t, 3, backend.calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func assessmentJSON(n int, decision string) string {
	var objs []string
	for i := 0; i < n; i++ {
		objs = append(objs, fmt.Sprintf(
			`{"chinese_title":"题目%d","keywords":"大模型","core_pain_point":"痛点","technical_innovation":"1) 方法","application_value":"价值","summary":"总结%d","decision":"%s","decision_reason":"理由"}`,
			i, i, decision))
	}
	return "[" + strings.Join(objs, ",") + "]"
}

func testPapers(n int) []types.Paper {
	papers := make([]types.Paper, n)
	for i := range papers {
		papers[i] = types.Paper{
			ID:       fmt.Sprintf("2601.%05d", i),
			EntryID:  fmt.Sprintf("http://arxiv.org/abs/2601.%05d", i),
			Title:    fmt.Sprintf("Paper %d", i),
			Authors:  []string{"A. Author"},
			Abstract: "We do a thing.",
		}
	}
	return papers
}

func TestReviewAll(t *testing.T) {
	backend := &scriptedBackend{responses: []string{
		assessmentJSON(2, types.DecisionRecommend),
		assessmentJSON(1, types.DecisionReject),
	}}
	r := NewReviewer(backend, types.ReviewConfig{BatchSize: 2, RetryDelay: 1})

	reviewed := r.ReviewAll(context.Background(), testPapers(3), io.Discard)
	require.Len(t, reviewed, 3)
	assert.Equal(t, 2, backend.calls)

	assert.Equal(t, types.DecisionRecommend, reviewed[0].Assessment.Decision)
	assert.Equal(t, types.DecisionRecommend, reviewed[1].Assessment.Decision)
	assert.Equal(t, types.DecisionReject, reviewed[2].Assessment.Decision)
	assert.Equal(t, "Paper 0", reviewed[0].Paper.Title)

	// Unclustered papers carry the sentinel annotations.
	assert.Equal(t, types.NoiseRank, reviewed[0].ClusterRank)
	assert.Equal(t, types.NoiseDistance, reviewed[0].DistanceToCenter)
}

func TestReviewAllFailedBatchUnevaluated(t *testing.T) {
	backend := &scriptedBackend{
		errs:      []error{fmt.Errorf("boom"), nil},
		responses: []string{"", assessmentJSON(1, types.DecisionRecommend)},
	}
	r := NewReviewer(backend, types.ReviewConfig{BatchSize: 2, RetryDelay: 1})

	reviewed := r.ReviewAll(context.Background(), testPapers(3), io.Discard)
	require.Len(t, reviewed, 3)

	assert.Equal(t, types.DecisionUnevaluated, reviewed[0].Assessment.Decision)
	assert.Equal(t, types.DecisionUnevaluated, reviewed[1].Assessment.Decision)
	assert.Equal(t, types.DecisionRecommend, reviewed[2].Assessment.Decision)
}

func TestReviewBatchCountMismatch(t *testing.T) {
	backend := &scriptedBackend{responses: []string{assessmentJSON(1, types.DecisionRecommend)}}
	r := NewReviewer(backend, types.ReviewConfig{BatchSize: 5, RetryDelay: 1})

	reviewed := r.ReviewAll(context.Background(), testPapers(2), io.Discard)
	require.Len(t, reviewed, 2)
	assert.Equal(t, types.DecisionUnevaluated, reviewed[0].Assessment.Decision)
}

func TestReviewPromptUsesFullText(t *testing.T) {
	backend := &scriptedBackend{responses: []string{assessmentJSON(1, types.DecisionRecommend)}}
	r := NewReviewer(backend, types.ReviewConfig{BatchSize: 5, RetryDelay: 1})

	papers := testPapers(1)
	papers[0].FullText = "=== Introduction ===\nthe interesting part"
	r.ReviewAll(context.Background(), papers, io.Discard)

	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "the interesting part")
	assert.Contains(t, backend.prompts[0], "Key sections")
}

func TestParseAssessments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain array", assessmentJSON(2, "推荐")},
		{"json fence", "```json\n" + assessmentJSON(2, "推荐") + "\n```"},
		{"bare fence", "```\n" + assessmentJSON(2, "推荐") + "\n```"},
		{"surrounding prose", "Here you go:\n" + assessmentJSON(2, "推荐") + "\nHope that helps!"},
		{"missing commas", strings.ReplaceAll(assessmentJSON(2, "推荐"), "},{", "} {")},
		{"raw newlines between objects", strings.ReplaceAll(assessmentJSON(2, "推荐"), "},{", "},\n{")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assessments, err := parseAssessments(tc.raw)
			require.NoError(t, err)
			require.Len(t, assessments, 2)
			assert.Equal(t, "推荐", assessments[0].Decision)
			assert.Equal(t, "题目0", assessments[0].ChineseTitle)
		})
	}
}

func TestParseAssessmentsGarbage(t *testing.T) {
	_, err := parseAssessments("I cannot answer that.")
	assert.Error(t, err)
}

func TestSortByPriority(t *testing.T) {
	mk := func(decision string, rank int, dist float64) types.ReviewedPaper {
		return types.ReviewedPaper{
			Assessment:       types.Assessment{Decision: decision},
			ClusterRank:      rank,
			DistanceToCenter: dist,
		}
	}
	papers := []types.ReviewedPaper{
		mk(types.DecisionReject, 0, 0.1),
		mk(types.DecisionRecommend, 1, 0.5),
		mk(types.DecisionUnevaluated, 0, 0.1),
		mk(types.DecisionRecommend, 0, 0.9),
		mk(types.DecisionRecommend, 0, 0.2),
		mk(types.DecisionBorderline, 0, 0.1),
	}
	SortByPriority(papers)

	decisions := make([]string, len(papers))
	for i, p := range papers {
		decisions[i] = p.Assessment.Decision
	}
	assert.Equal(t, []string{
		types.DecisionRecommend, types.DecisionRecommend, types.DecisionRecommend,
		types.DecisionBorderline, types.DecisionReject, types.DecisionUnevaluated,
	}, decisions)

	// Within the recommended band: cluster rank first, then distance.
	assert.Equal(t, 0.2, papers[0].DistanceToCenter)
	assert.Equal(t, 0.9, papers[1].DistanceToCenter)
	assert.Equal(t, 1, papers[2].ClusterRank)
}

func TestRenderReviewPromptValidJSONExample(t *testing.T) {
	// The canned responses in these tests must stay parseable themselves.
	var check []types.Assessment
	require.NoError(t, json.Unmarshal([]byte(assessmentJSON(3, "边缘可看")), &check))
	assert.Len(t, check, 3)
}
