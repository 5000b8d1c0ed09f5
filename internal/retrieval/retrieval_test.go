package retrieval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

func strp(s string) *string { return &s }

func TestHybridScoreFusion(t *testing.T) {
	itemA := &store.KnowledgeItem{ID: "A", RelevanceScore: 0.30, UsageCount: 0}
	itemB := &store.KnowledgeItem{ID: "B", RelevanceScore: 0.95, UsageCount: 40}

	score := func(sim float64, item *store.KnowledgeItem, params SearchParams) float64 {
		uf := float64(item.UsageCount) / 20.0
		if uf > 1.0 {
			uf = 1.0
		}
		return sim*params.VectorWeight + item.RelevanceScore*params.RelevanceWeight + uf*params.UsageWeight
	}

	params := DefaultSearchParams()
	scoreA := score(0.90, itemA, params)
	scoreB := score(0.80, itemB, params)

	require.InDelta(t, 0.690, scoreA, 1e-9)
	require.InDelta(t, 0.850, scoreB, 1e-9)
}

// The merge loop below mirrors BuildContext's thesis → antithesis →
// personal concatenation with first-occurrence dedup by id.
func TestThreePassMergeDedupesByIDAcrossPasses(t *testing.T) {
	item := func(id string) *store.KnowledgeItem {
		return &store.KnowledgeItem{ID: id, KnowledgeType: "decision_pattern", Content: "내용 " + id}
	}

	thesis := []Hit{{Item: item("A")}, {Item: item("B")}, {Item: item("C")}}
	antithesis := []Hit{{Item: item("B")}, {Item: item("D")}}
	personal := []Hit{{Item: item("A")}, {Item: item("E")}}

	merged := make([]Hit, 0)
	seen := make(map[string]bool)
	for _, group := range [][]Hit{thesis, antithesis, personal} {
		for _, h := range group {
			if seen[h.Item.ID] {
				continue
			}
			seen[h.Item.ID] = true
			merged = append(merged, h)
		}
	}

	ids := make([]string, len(merged))
	for i, h := range merged {
		ids[i] = h.Item.ID
	}
	require.Equal(t, []string{"A", "B", "C", "D", "E"}, ids)
}

func TestRenderContextTruncatesAtMaxChars(t *testing.T) {
	hits := []Hit{
		{Item: &store.KnowledgeItem{ID: "1", KnowledgeType: "budget_decision", Content: "예산 관련 결정 사항입니다.", Confidence: 0.9}},
		{Item: &store.KnowledgeItem{ID: "2", KnowledgeType: "risk", Content: "클라이언트 관련 위험 요소입니다.", Confidence: 0.8}},
	}

	full := renderContext(hits, 10000)
	require.Contains(t, full, "참고 지식")
	require.Contains(t, full, "budget_decision")
	require.Contains(t, full, "risk")

	truncated := renderContext(hits, len(contextHeader)+10)
	require.True(t, len(truncated) <= len(contextHeader)+10)
}

func TestMatchesScopePersonal(t *testing.T) {
	personal := &store.KnowledgeItem{Scope: "personal", UserID: strp("u1")}
	require.True(t, matchesScope(personal, "personal", nil, strp("u1"), nil))
	require.False(t, matchesScope(personal, "personal", nil, strp("u2"), nil))
	require.False(t, matchesScope(personal, "personal", nil, nil, nil))
}

func TestMatchesScopeTeam(t *testing.T) {
	scopedTeam := &store.KnowledgeItem{Scope: "team", ProjectID: strp("p1")}
	require.True(t, matchesScope(scopedTeam, "team", nil, nil, strp("p1")))
	require.False(t, matchesScope(scopedTeam, "team", nil, nil, strp("p2")))

	openTeam := &store.KnowledgeItem{Scope: "team", ProjectID: nil}
	require.True(t, matchesScope(openTeam, "team", nil, nil, strp("p9")))

	global := &store.KnowledgeItem{Scope: "global"}
	require.True(t, matchesScope(global, "team", nil, nil, strp("p1")))

	personal := &store.KnowledgeItem{Scope: "personal", UserID: strp("u1")}
	require.False(t, matchesScope(personal, "team", nil, strp("u1"), strp("p1")))
}

func TestMatchesScopeRole(t *testing.T) {
	matched := &store.KnowledgeItem{Scope: "role", RoleTag: strp("CEO")}
	require.True(t, matchesScope(matched, "role", strp("CEO"), nil, nil))
	require.False(t, matchesScope(matched, "role", strp("designer"), nil, nil))

	wildcard := &store.KnowledgeItem{Scope: "role", RoleTag: nil}
	require.True(t, matchesScope(wildcard, "role", strp("designer"), nil, nil))

	global := &store.KnowledgeItem{Scope: "global"}
	require.True(t, matchesScope(global, "role", strp("designer"), nil, nil))
}

func TestMatchesScopeAll(t *testing.T) {
	own := &store.KnowledgeItem{Scope: "personal", UserID: strp("u1")}
	require.True(t, matchesScope(own, "all", nil, strp("u1"), nil))
	require.False(t, matchesScope(own, "all", nil, strp("u2"), nil))

	teamMatch := &store.KnowledgeItem{Scope: "team", ProjectID: strp("p1")}
	require.True(t, matchesScope(teamMatch, "all", nil, nil, strp("p1")))
	require.False(t, matchesScope(teamMatch, "all", nil, nil, strp("p2")))

	role := &store.KnowledgeItem{Scope: "role", RoleTag: strp("designer")}
	require.True(t, matchesScope(role, "all", nil, nil, nil))

	global := &store.KnowledgeItem{Scope: "global"}
	require.True(t, matchesScope(global, "all", nil, nil, nil))
}

func TestMatchesDialecticScope(t *testing.T) {
	risk := &store.KnowledgeItem{Scope: "global", RoleTag: strp("CEO")}
	require.True(t, matchesDialecticScope(risk, strp("designer"), nil))

	teamNoProject := &store.KnowledgeItem{Scope: "team", ProjectID: nil}
	require.True(t, matchesDialecticScope(teamNoProject, nil, nil))

	teamWithProject := &store.KnowledgeItem{Scope: "team", ProjectID: strp("p1")}
	require.False(t, matchesDialecticScope(teamWithProject, nil, nil))

	own := &store.KnowledgeItem{Scope: "personal", UserID: strp("u1")}
	require.True(t, matchesDialecticScope(own, nil, strp("u1")))
	require.False(t, matchesDialecticScope(own, nil, strp("u2")))

	roleMismatch := &store.KnowledgeItem{Scope: "role", RoleTag: strp("producer")}
	require.False(t, matchesDialecticScope(roleMismatch, strp("designer"), nil))
	require.True(t, matchesDialecticScope(roleMismatch, strp("producer"), nil))
}
