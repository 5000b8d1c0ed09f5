package retrieval

import (
	"fmt"
	"sort"
	"time"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

// Hit is a single scored result from HybridSearch or DialecticSearch.
type Hit struct {
	Item       *store.KnowledgeItem
	Similarity float64
	HybridScore float64
}

// HybridSearch fuses vector similarity, stored relevance, and usage
// frequency into a single ranking. It prefers the KNN index and degrades
// to a full legacy scan on any KNN error (including an unavailable
// index), scoring the legacy path with in-process cosine similarity.
func (e *Engine) HybridSearch(query []float32, params SearchParams) ([]Hit, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	candidateLimit := params.Limit * 5

	var raw []rawHit
	if e.store.HasVectorIndex() {
		knn, err := e.store.KNNSearch(query, candidateLimit, now)
		if err == nil {
			raw = make([]rawHit, 0, len(knn))
			for _, c := range knn {
				raw = append(raw, rawHit{item: c.Item, similarity: 1.0 - c.Distance})
			}
		}
	}
	if raw == nil {
		scan, err := e.store.LegacyScan(now)
		if err != nil {
			return nil, err
		}
		raw = make([]rawHit, 0, len(scan))
		for _, c := range scan {
			if c.Vector == nil || !embedding.IsValidDim(c.Vector) {
				continue
			}
			raw = append(raw, rawHit{item: c.Item, similarity: embedding.CosineSimilarity(query, c.Vector)})
		}
	}

	hits := make([]Hit, 0, len(raw))
	for _, r := range raw {
		if r.similarity < params.Threshold {
			continue
		}
		if !matchesScope(r.item, params.Scope, params.RoleTag, params.UserID, params.ProjectID) {
			continue
		}
		if params.KnowledgeType != nil && r.item.KnowledgeType != *params.KnowledgeType {
			continue
		}
		uf := float64(r.item.UsageCount) / 20.0
		if uf > 1.0 {
			uf = 1.0
		}
		score := r.similarity*params.VectorWeight +
			r.item.RelevanceScore*params.RelevanceWeight +
			uf*params.UsageWeight
		hits = append(hits, Hit{Item: r.item, Similarity: r.similarity, HybridScore: score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].HybridScore > hits[j].HybridScore })
	if len(hits) > params.Limit {
		hits = hits[:params.Limit]
	}

	for _, h := range hits {
		if err := e.store.TouchUsage(h.Item.ID, now); err != nil {
			fmt.Printf("[rebe] touch usage failed for %s: %v\n", h.Item.ID, err)
		}
	}
	return hits, nil
}

type rawHit struct {
	item       *store.KnowledgeItem
	similarity float64
}
