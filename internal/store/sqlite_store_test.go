package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenDSN(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetKnowledgeItem(t *testing.T) {
	s := newTestStore(t)

	vec := embedding.PseudoEmbed("예산 3000만원으로 확정")
	item := &KnowledgeItem{
		Content:       "예산 3000만원으로 확정",
		KnowledgeType: "budget_decision",
		SourceType:    "manual",
		Scope:         "team",
		Confidence:    0.9,
	}
	require.NoError(t, s.CreateKnowledgeItem(item, vec))
	require.NotEmpty(t, item.ID)

	got, err := s.GetKnowledgeItem(item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, item.Content, got.Content)
	require.Equal(t, "budget_decision", got.KnowledgeType)
	require.True(t, got.IsActive)
	require.LessOrEqual(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreateKnowledgeItemRejectsUnknownScope(t *testing.T) {
	s := newTestStore(t)
	item := &KnowledgeItem{Content: "x", KnowledgeType: "context", SourceType: "manual", Scope: "nonexistent"}
	err := s.CreateKnowledgeItem(item, embedding.PseudoEmbed("x"))
	require.Error(t, err)
}

func TestUpdateFeedbackClamps(t *testing.T) {
	s := newTestStore(t)
	item := &KnowledgeItem{
		Content: "x", KnowledgeType: "context", SourceType: "manual",
		Scope: "personal", Confidence: 0.5, RelevanceScore: 0.99,
	}
	require.NoError(t, s.CreateKnowledgeItem(item, embedding.PseudoEmbed("x")))

	require.NoError(t, s.UpdateFeedback(item.ID, true))
	require.NoError(t, s.UpdateFeedback(item.ID, true))
	got, err := s.GetKnowledgeItem(item.ID)
	require.NoError(t, err)
	require.InDelta(t, 1.0, got.RelevanceScore, 1e-9)

	for i := 0; i < 50; i++ {
		require.NoError(t, s.UpdateFeedback(item.ID, false))
	}
	got, err = s.GetKnowledgeItem(item.ID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, got.RelevanceScore, 0.0)
}

func TestExtractionLogIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	extracted, err := s.IsExtracted("chat_digest", "digest-1")
	require.NoError(t, err)
	require.False(t, extracted)

	require.NoError(t, s.MarkExtracted("chat_digest", "digest-1", 3))
	require.NoError(t, s.MarkExtracted("chat_digest", "digest-1", 3)) // no-op, unique pair

	extracted, err = s.IsExtracted("chat_digest", "digest-1")
	require.NoError(t, err)
	require.True(t, extracted)
}

func TestDeactivateKnowledgeItem(t *testing.T) {
	s := newTestStore(t)
	item := &KnowledgeItem{Content: "x", KnowledgeType: "context", SourceType: "manual", Scope: "personal"}
	require.NoError(t, s.CreateKnowledgeItem(item, embedding.PseudoEmbed("x")))

	require.NoError(t, s.DeactivateKnowledgeItem(item.ID))
	got, err := s.GetKnowledgeItem(item.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		item := &KnowledgeItem{Content: "x", KnowledgeType: "context", SourceType: "manual", Scope: "personal"}
		require.NoError(t, s.CreateKnowledgeItem(item, embedding.PseudoEmbed("x")))
	}
	stats, err := s.GetStats()
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalItems)
	require.Equal(t, 3, stats.ActiveItems)
}

func TestSyncStatusDefaultsDisabled(t *testing.T) {
	s := newTestStore(t)
	status, err := s.GetSyncStatus()
	require.NoError(t, err)
	require.False(t, status.Enabled)
	require.Nil(t, status.LastSyncAt)
}

func TestCountChangesIncludesInactiveRows(t *testing.T) {
	s := newTestStore(t)
	item := &KnowledgeItem{Content: "x", KnowledgeType: "context", SourceType: "manual", Scope: "personal"}
	require.NoError(t, s.CreateKnowledgeItem(item, embedding.PseudoEmbed("x")))
	require.NoError(t, s.DeactivateKnowledgeItem(item.ID))

	count, err := s.CountChanges("")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
