// Package retrieval implements the hybrid vector/metadata search engine:
// scope-aware KNN search with legacy fallback, dialectic (opposing-view)
// search, and three-pass context assembly for prompt injection.
package retrieval

// SearchParams configures HybridSearch. HybridSearch uses every field as
// given and fills in no defaults (a zero Limit returns no hits); start from
// DefaultSearchParams to get the standard values.
type SearchParams struct {
	Threshold       float64
	Limit           int
	VectorWeight    float64
	RelevanceWeight float64
	UsageWeight     float64
	Scope           string
	RoleTag         *string
	UserID          *string
	ProjectID       *string
	KnowledgeType   *string
}

// DefaultSearchParams mirrors the original retrieval engine's defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Threshold:       0.30,
		Limit:           5,
		VectorWeight:    0.70,
		RelevanceWeight: 0.20,
		UsageWeight:     0.10,
		Scope:           "all",
	}
}

// DialecticParams configures DialecticSearch.
type DialecticParams struct {
	OpposingTags []string
	Threshold    float64
	Limit        int
	RoleTag      *string
	UserID       *string
	ProjectID    *string
}

// DefaultDialecticParams mirrors the original's opposing-view defaults.
func DefaultDialecticParams() DialecticParams {
	return DialecticParams{
		OpposingTags: []string{"risk", "constraint", "client_concern"},
		Threshold:    0.25,
		Limit:        3,
	}
}
