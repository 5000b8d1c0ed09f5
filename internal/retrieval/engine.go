package retrieval

import (
	"time"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

// Engine is the retrieval engine over a Store: hybrid search, dialectic
// search, and context assembly, with query logging for feedback.
type Engine struct {
	store *store.Store
}

// New builds a retrieval Engine over s.
func New(s *store.Store) *Engine { return &Engine{store: s} }

// SearchAndLog runs HybridSearch and records the call in the query log so
// a later RecordFeedback can propagate helpful/unhelpful back to every
// item it returned.
func (e *Engine) SearchAndLog(queryText string, query []float32, params SearchParams) (string, []Hit, error) {
	hits, err := e.HybridSearch(query, params)
	if err != nil {
		return "", nil, err
	}

	ids := make([]string, 0, len(hits))
	var top float64
	for i, h := range hits {
		ids = append(ids, h.Item.ID)
		if i == 0 {
			top = h.Similarity
		}
	}

	entry := &store.QueryLogEntry{
		QueryText:     queryText,
		Scope:         params.Scope,
		ProjectID:     params.ProjectID,
		RetrievedIDs:  ids,
		ResultCount:   len(hits),
		TopSimilarity: top,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := e.store.LogQuery(entry); err != nil {
		return "", nil, err
	}
	return entry.ID, hits, nil
}

// RecordFeedback propagates a helpful/unhelpful verdict for a previously
// logged query to every item it retrieved.
func (e *Engine) RecordFeedback(queryLogID string, helpful bool) error {
	return e.store.RecordQueryFeedback(queryLogID, helpful)
}
