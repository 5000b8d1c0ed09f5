package retrieval

import (
	"fmt"
	"strings"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

const contextHeader = "## 참고 지식 (Knowledge Base)\n아래는 이 조직에서 축적된 실제 판단 기록입니다. 반드시 이 내용을 바탕으로 구체적으로 답변하세요.\n\n"

// minTailChars is the smallest truncated remainder worth emitting; below
// this a dangling fragment reads as noise rather than signal.
const minTailChars = 50

// ContextParams configures BuildContext.
type ContextParams struct {
	Query     []float32
	Scope     string // thesis-pass scope; defaults to "all" when empty
	RoleTag   *string
	UserID    *string
	ProjectID *string
	MaxChars  int
}

// BuildContext assembles the three-pass retrieval context injected into a
// persona prompt: thesis (broad hybrid search), antithesis (opposing-view
// dialectic search), and personal (the caller's own hybrid-scoped notes).
// Passes are concatenated in that order, deduplicated by item id on first
// occurrence, and rendered until max_chars would be exceeded.
func (e *Engine) BuildContext(params ContextParams) (string, error) {
	thesisParams := DefaultSearchParams()
	if params.Scope != "" {
		thesisParams.Scope = params.Scope
	}
	thesis, err := e.HybridSearch(params.Query, withOwner(thesisParams, params))
	if err != nil {
		return "", err
	}

	antithesisParams := DefaultDialecticParams()
	antithesisParams.RoleTag, antithesisParams.UserID, antithesisParams.ProjectID =
		params.RoleTag, params.UserID, params.ProjectID
	antithesis, err := e.DialecticSearch(params.Query, antithesisParams)
	if err != nil {
		return "", err
	}

	personalParams := DefaultSearchParams()
	personalParams.Threshold = 0.25
	personalParams.Limit = 3
	personalParams.Scope = "personal"
	personal, err := e.HybridSearch(params.Query, withOwner(personalParams, params))
	if err != nil {
		return "", err
	}

	merged := make([]Hit, 0, len(thesis)+len(antithesis)+len(personal))
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

	return renderContext(merged, params.MaxChars), nil
}

func withOwner(sp SearchParams, cp ContextParams) SearchParams {
	sp.RoleTag, sp.UserID, sp.ProjectID = cp.RoleTag, cp.UserID, cp.ProjectID
	return sp
}

func renderContext(hits []Hit, maxChars int) string {
	var b strings.Builder
	b.WriteString(contextHeader)
	budget := maxChars - b.Len()

	for _, h := range hits {
		block := renderItem(h.Item)
		if len(block) <= budget {
			b.WriteString(block)
			budget -= len(block)
			continue
		}
		if budget >= minTailChars {
			b.WriteString(block[:budget])
		}
		break
	}

	return b.String()
}

func renderItem(item *store.KnowledgeItem) string {
	body := item.Content
	if item.Summary != nil && *item.Summary != "" {
		body = *item.Summary
	}
	return fmt.Sprintf("### %s (신뢰도: %.0f%%)\n%s\n\n", item.KnowledgeType, item.Confidence*100, body)
}
