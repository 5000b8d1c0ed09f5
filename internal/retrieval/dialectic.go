package retrieval

import (
	"sort"
	"time"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
)

// DialecticSearch surfaces opposing-view evidence (risks, constraints,
// client concerns) for a query, unweighted by relevance or usage and
// always via a full legacy scan — the opposing set is small enough that
// KNN's candidate-limiting would risk missing the one risk note that
// matters.
func (e *Engine) DialecticSearch(query []float32, params DialecticParams) ([]Hit, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	opposing := make(map[string]bool, len(params.OpposingTags))
	for _, t := range params.OpposingTags {
		opposing[t] = true
	}

	scan, err := e.store.LegacyScan(now)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(scan))
	for _, c := range scan {
		if c.Item.DialecticTag == nil || !opposing[*c.Item.DialecticTag] {
			continue
		}
		if c.Vector == nil || !embedding.IsValidDim(c.Vector) {
			continue
		}
		if !matchesDialecticScope(c.Item, params.RoleTag, params.UserID) {
			continue
		}
		sim := embedding.CosineSimilarity(query, c.Vector)
		if sim < params.Threshold {
			continue
		}
		hits = append(hits, Hit{Item: c.Item, Similarity: sim, HybridScore: sim})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > params.Limit {
		hits = hits[:params.Limit]
	}
	return hits, nil
}
