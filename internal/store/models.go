// Package store provides the SQLite-backed knowledge store: schema
// migrations, the dual blob/vector index, and CRUD plus logging for
// knowledge items. It is the sole persistence layer the rest of the
// engine depends on.
package store

// KnowledgeItem is the primary stored entity: a single unit of organizational
// knowledge, classified, scored, and optionally signed.
type KnowledgeItem struct {
	ID        string
	CreatedAt string
	UpdatedAt string

	Content string
	Summary *string

	KnowledgeType string
	SourceType    string
	Scope         string
	ScopeLayer    *string
	RoleTag       *string
	DialecticTag  *string

	Confidence     float64
	RelevanceScore float64
	UsageCount     int
	LastUsedAt     *string

	DecisionMaker    *string
	Outcome          *string
	FinancialImpact  *int64
	SourceID         *string
	SourceContext    *string

	UserID     *string
	ProjectID  *string
	DIDAuthor  *string

	IsActive  bool
	ExpiresAt *string
}

// Valid enum values, enforced at write time (rejected otherwise).
var (
	ValidScopes = map[string]bool{
		"personal": true, "team": true, "role": true, "global": true,
	}
	ValidScopeLayers = map[string]bool{
		"operations": true, "creative": true, "pitch": true,
		"strategy": true, "execution": true, "culture": true,
	}
	ValidDialecticTags = map[string]bool{
		"risk": true, "opportunity": true, "constraint": true,
		"quality": true, "client_concern": true,
	}
	ValidOutcomes = map[string]bool{
		"confirmed": true, "rejected": true, "pending": true, "escalated": true,
	}
)

// ExtractionLogEntry records that a given upstream source has already been
// ingested, keyed by the unique (source_type, source_id) pair.
type ExtractionLogEntry struct {
	SourceType   string
	SourceID     string
	ItemsCreated int
	CompletedAt  string
}

// QueryLogEntry records a single retrieval call for feedback propagation.
type QueryLogEntry struct {
	ID             string
	QueryText      string
	Scope          string
	ProjectID      *string
	RetrievedIDs   []string
	ResultCount    int
	TopSimilarity  float64
	WasHelpful     *bool
	CreatedAt      string
}

// ChatDigest is a single category slice (decisions/action_items/risks/summary)
// of an analyzed conversation.
type ChatDigest struct {
	ID          string
	Room        *string
	ProjectID   *string
	DigestType  string
	Content     string
	MessageCount int
	Confidence  float64
	CreatedAt   string
}

// DecisionPattern records a recognized recurring decision shape.
type DecisionPattern struct {
	UserID          string
	KnowledgeDomain string
	PatternText     string
	TimesSeen       int
	LastSeenAt      string
}

// ContextSnapshot is a point-in-time capture of a build_context render.
type ContextSnapshot struct {
	ProjectID   string
	Room        *string
	RenderedText string
	CharCount   int
	CreatedAt   string
}

// PersonaQueryLogEntry parallels QueryLogEntry but is scoped to
// role_tag="CEO" persona queries, kept separate so persona analytics do not
// skew the general query log's statistics.
type PersonaQueryLogEntry struct {
	ID            string
	QueryText     string
	RetrievedIDs  []string
	ResultCount   int
	TopSimilarity float64
	CreatedAt     string
}

// Stats summarizes the store's knowledge-item population.
type Stats struct {
	TotalItems  int
	ActiveItems int
	ByScope     []ScopeCount
	ByType      []TypeCount
}

// ScopeCount is the item count for one scope value.
type ScopeCount struct {
	Scope string
	Count int
}

// TypeCount is the item count for one knowledge_type value.
type TypeCount struct {
	KnowledgeType string
	Count int
}

// SyncStatus is the caller-facing view of sync_meta.
type SyncStatus struct {
	Enabled           bool
	LastSyncAt        *string
	LastSyncItemCount int
	TotalItems        int
}
