// Package analyzer sends chat conversations and extraction targets to an
// Anthropic model and parses the structured JSON it returns. It composes
// with internal/ingest, which turns the parsed result into knowledge_items.
package analyzer

// Priority is a digest item's urgency bucket.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DigestItem is one decision, action item, or risk surfaced from a
// conversation digest.
type DigestItem struct {
	Text           string   `json:"text"`
	Confidence     float64  `json:"confidence"`
	Priority       Priority `json:"priority"`
	RelatedUserIDs []string `json:"relatedUserIds,omitempty"`
}

// Digest is the response shape of AnalyzeConversation.
type Digest struct {
	Decisions   []DigestItem `json:"decisions"`
	ActionItems []DigestItem `json:"actionItems"`
	Risks       []DigestItem `json:"risks"`
	Summary     string       `json:"summary"`
}

// ExtractedItem is one candidate knowledge item surfaced from deep
// extraction, before routing and persistence.
type ExtractedItem struct {
	Content       string   `json:"content"`
	KnowledgeType string   `json:"knowledge_type"`
	RoleTag       *string  `json:"role_tag,omitempty"`
	DialecticTag  *string  `json:"dialectic_tag,omitempty"`
	ScopeLayer    *string  `json:"scope_layer,omitempty"`
	Confidence    float64  `json:"confidence"`
}

// Extraction is the response shape of ExtractKnowledge.
type Extraction struct {
	Items []ExtractedItem `json:"items"`
}
