package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDigestPlainJSON(t *testing.T) {
	raw := `{"decisions":[{"text":"예산 확정","confidence":0.9,"priority":"high"}],"actionItems":[],"risks":[],"summary":"요약"}`
	d, err := parseDigest(raw)
	require.NoError(t, err)
	require.Len(t, d.Decisions, 1)
	require.Equal(t, "예산 확정", d.Decisions[0].Text)
	require.Equal(t, "요약", d.Summary)
}

func TestParseDigestStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"decisions\":[],\"actionItems\":[],\"risks\":[],\"summary\":\"ok\"}\n```"
	d, err := parseDigest(raw)
	require.NoError(t, err)
	require.Equal(t, "ok", d.Summary)
}

func TestParseDigestEmptyString(t *testing.T) {
	d, err := parseDigest("")
	require.NoError(t, err)
	require.Empty(t, d.Decisions)
}

func TestParseExtractionPlainJSON(t *testing.T) {
	raw := `{"items":[{"content":"예산 3000만원으로 확정","knowledge_type":"budget_decision","confidence":0.85}]}`
	e, err := parseExtraction(raw)
	require.NoError(t, err)
	require.Len(t, e.Items, 1)
	require.Equal(t, "budget_decision", e.Items[0].KnowledgeType)
}

func TestParseExtractionDropsEmptyContent(t *testing.T) {
	raw := `{"items":[{"content":"","knowledge_type":"budget_decision","confidence":0.5},{"content":"유효한 항목","knowledge_type":"risk","confidence":0.6}]}`
	e, err := parseExtraction(raw)
	require.NoError(t, err)
	require.Len(t, e.Items, 1)
	require.Equal(t, "유효한 항목", e.Items[0].Content)
}

func TestParseExtractionDefaultsConfidence(t *testing.T) {
	raw := `{"items":[{"content":"내용","knowledge_type":"constraint","confidence":0}]}`
	e, err := parseExtraction(raw)
	require.NoError(t, err)
	require.InDelta(t, 0.7, e.Items[0].Confidence, 1e-9)
}

func TestParseExtractionRegexRepairOnMalformedJSON(t *testing.T) {
	raw := `not quite json {"content": "repaired item", "knowledge_type": "budget_decision", "confidence": 0.8} trailing junk`
	e, err := parseExtraction(raw)
	require.NoError(t, err)
	require.Len(t, e.Items, 1)
	require.Equal(t, "repaired item", e.Items[0].Content)
}

func TestStripCodeFenceNoFence(t *testing.T) {
	require.Equal(t, "plain text", stripCodeFence("plain text"))
}
