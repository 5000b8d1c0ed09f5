package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/pkg/analyzer"
)

func newTestIngestor(t *testing.T) *Ingestor {
	t.Helper()
	s, err := store.OpenDSN(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, embedding.New(), nil, nil)
}

func strPtr(s string) *string { return &s }

func TestFromActionKnownType(t *testing.T) {
	ing := newTestIngestor(t)
	item, err := ing.FromAction(Action{
		ActionType: "decision",
		Content:    "예산 3000만원으로 확정",
		ProjectID:  strPtr("proj-1"),
	})
	require.NoError(t, err)
	require.Equal(t, "decision_pattern", item.KnowledgeType)
	require.InDelta(t, actionConfidence, item.Confidence, 1e-9)
	require.Equal(t, "team", item.Scope)
}

func TestFromActionUnknownTypeFallsBackToGeneralNote(t *testing.T) {
	ing := newTestIngestor(t)
	item, err := ing.FromAction(Action{ActionType: "mystery", Content: "무언가 발생함"})
	require.NoError(t, err)
	require.Equal(t, "general_note", item.KnowledgeType)
	require.Equal(t, "personal", item.Scope)
}

func TestFromReviewLowRatingTagsConstraint(t *testing.T) {
	ing := newTestIngestor(t)
	item, err := ing.FromReview(Review{
		Reviewer: "김경신", Reviewee: "박디자이너", Rating: 1, Comment: "마감 지연이 반복됨",
	})
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, "performance_review", item.KnowledgeType)
	require.Contains(t, item.Content, "김경신님의 박디자이너님 평가 (1점/5점): 마감 지연이 반복됨")
	require.NotNil(t, item.DialecticTag)
	require.Equal(t, "constraint", *item.DialecticTag)
}

func TestFromReviewHighRatingHasNoDialecticTag(t *testing.T) {
	ing := newTestIngestor(t)
	item, err := ing.FromReview(Review{Reviewer: "A", Reviewee: "B", Rating: 5, Comment: "정말 훌륭한 성과였습니다"})
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Nil(t, item.DialecticTag)
	require.InDelta(t, 1.0, item.Confidence, 1e-9)
}

func TestFromReviewSkipsShortComment(t *testing.T) {
	ing := newTestIngestor(t)
	item, err := ing.FromReview(Review{Reviewer: "A", Reviewee: "B", Rating: 2, Comment: "짧음"})
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestFromReviewSkipsEmptyComment(t *testing.T) {
	ing := newTestIngestor(t)
	item, err := ing.FromReview(Review{Reviewer: "A", Reviewee: "B", Rating: 4, Comment: "   "})
	require.NoError(t, err)
	require.Nil(t, item)
}

func TestFromDigestItemsAppliesThresholds(t *testing.T) {
	ing := newTestIngestor(t)
	digest := &analyzer.Digest{
		Decisions: []analyzer.DigestItem{
			{Text: "확정된 결정", Confidence: 0.7},
			{Text: "낮은 확신 결정", Confidence: 0.4},
		},
		Risks: []analyzer.DigestItem{
			{Text: "중요 리스크", Confidence: 0.55},
			{Text: "사소한 리스크", Confidence: 0.2},
		},
	}

	items, err := ing.FromDigestItems(digest, strPtr("proj-1"))
	require.NoError(t, err)
	require.Len(t, items, 2)

	var contents []string
	for _, it := range items {
		contents = append(contents, it.Content)
	}
	require.Contains(t, contents, "확정된 결정")
	require.Contains(t, contents, "중요 리스크")
	require.NotContains(t, contents, "낮은 확신 결정")
	require.NotContains(t, contents, "사소한 리스크")

	for _, it := range items {
		if it.Content == "확정된 결정" {
			require.NotNil(t, it.Outcome)
			require.Equal(t, "confirmed", *it.Outcome)
		}
		if it.Content == "중요 리스크" {
			require.Nil(t, it.Outcome)
		}
	}
}

func TestFromDigestWithoutAnalyzerErrors(t *testing.T) {
	ing := newTestIngestor(t)
	_, err := ing.FromDigest(nil, "room", nil, "transcript")
	require.Error(t, err)
}
