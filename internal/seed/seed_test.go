package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenDSN(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCeoPatternsCount(t *testing.T) {
	require.Len(t, ceoPatterns(), 30)
}

func TestCeoPatternsNonEmptyAndConfidenceRange(t *testing.T) {
	for _, p := range ceoPatterns() {
		require.NotEmpty(t, p.content)
		require.NotEmpty(t, p.knowledgeType)
		require.GreaterOrEqual(t, p.confidence, 0.85)
		require.LessOrEqual(t, p.confidence, 0.95)
	}
}

func TestSeedCEOPatternsLoadsAllAndIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	e := embedding.New()

	seeded, err := IsSeeded(s)
	require.NoError(t, err)
	require.False(t, seeded)

	count, err := SeedCEOPatterns(s, e)
	require.NoError(t, err)
	require.Equal(t, 30, count)

	seeded, err = IsSeeded(s)
	require.NoError(t, err)
	require.True(t, seeded)

	again, err := SeedCEOPatterns(s, e)
	require.NoError(t, err)
	require.Equal(t, 0, again)

	stats, err := s.GetStats()
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.TotalItems, 30)
}

func TestSeedCEOPatternsSetsRoleTagAndDecisionMaker(t *testing.T) {
	s := newTestStore(t)
	e := embedding.New()

	_, err := SeedCEOPatterns(s, e)
	require.NoError(t, err)

	stats, err := s.GetStats()
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.TotalItems, 30)

	scan, err := s.LegacyScan(time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
	require.Len(t, scan, 30)
	for _, c := range scan {
		require.NotNil(t, c.Item.RoleTag)
		require.Equal(t, "CEO", *c.Item.RoleTag)
		require.NotNil(t, c.Item.DecisionMaker)
		require.Equal(t, decisionMaker, *c.Item.DecisionMaker)
	}
}
