package store

import (
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// VecCandidate is one row returned by the KNN path: the knowledge item plus
// its cosine distance from the query vector.
type VecCandidate struct {
	Item     *KnowledgeItem
	Distance float64
}

// KNNSearch asks the vec0 virtual table for the candidateLimit nearest
// neighbours of query, joined back to their knowledge_items row, restricted
// to active, non-expired rows. Returns a Storage error if the vector index
// is unavailable or the query fails; callers degrade to LegacyScan on any
// error, matching the spec's "KNN-first, fall back on structural error"
// contract.
func (s *Store) KNNSearch(query []float32, candidateLimit int, nowISOStr string) ([]VecCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasVec {
		return nil, rerr.New(rerr.Storage, "store.KNNSearch", "vector index unavailable")
	}

	blob := embedding.VectorToBlob(query)
	rows, err := s.db.Query(`
		SELECT ki.id, ki.created_at, ki.updated_at, ki.content, ki.summary, ki.knowledge_type,
			ki.source_type, ki.scope, ki.scope_layer, ki.role_tag, ki.dialectic_tag,
			ki.confidence, ki.relevance_score, ki.usage_count, ki.last_used_at,
			ki.decision_maker, ki.outcome, ki.financial_impact, ki.source_id, ki.source_context,
			ki.user_id, ki.project_id, ki.did_author, ki.is_active, ki.expires_at,
			v.distance
		FROM vec_knowledge v
		JOIN knowledge_items ki ON ki.id = v.knowledge_id
		WHERE v.embedding MATCH ? AND k = ?
			AND ki.is_active = 1
			AND (ki.expires_at IS NULL OR ki.expires_at > ?)
		ORDER BY v.distance
	`, blob, candidateLimit, nowISOStr)
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.KNNSearch: query", err)
	}
	defer rows.Close()

	var out []VecCandidate
	for rows.Next() {
		var it KnowledgeItem
		var isActive int
		var distance float64
		if err := rows.Scan(
			&it.ID, &it.CreatedAt, &it.UpdatedAt, &it.Content, &it.Summary, &it.KnowledgeType,
			&it.SourceType, &it.Scope, &it.ScopeLayer, &it.RoleTag, &it.DialecticTag,
			&it.Confidence, &it.RelevanceScore, &it.UsageCount, &it.LastUsedAt,
			&it.DecisionMaker, &it.Outcome, &it.FinancialImpact, &it.SourceID, &it.SourceContext,
			&it.UserID, &it.ProjectID, &it.DIDAuthor, &isActive, &it.ExpiresAt,
			&distance,
		); err != nil {
			return nil, rerr.Wrap(rerr.Storage, "store.KNNSearch: scan", err)
		}
		it.IsActive = isActive != 0
		out = append(out, VecCandidate{Item: &it, Distance: distance})
	}
	return out, rows.Err()
}

// LegacyCandidate is one row returned by the full-scan path: the knowledge
// item plus its raw embedding vector for in-process cosine scoring.
type LegacyCandidate struct {
	Item   *KnowledgeItem
	Vector []float32
}

// LegacyScan returns every active, non-expired knowledge item joined to its
// legacy blob embedding (empty vector if no embedding row exists), for an
// in-process cosine scan. This is the fallback path used whenever KNNSearch
// errors, or always for dialectic_search (which never attempts KNN).
func (s *Store) LegacyScan(nowISOStr string) ([]LegacyCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT ki.id, ki.created_at, ki.updated_at, ki.content, ki.summary, ki.knowledge_type,
			ki.source_type, ki.scope, ki.scope_layer, ki.role_tag, ki.dialectic_tag,
			ki.confidence, ki.relevance_score, ki.usage_count, ki.last_used_at,
			ki.decision_maker, ki.outcome, ki.financial_impact, ki.source_id, ki.source_context,
			ki.user_id, ki.project_id, ki.did_author, ki.is_active, ki.expires_at,
			e.vector
		FROM knowledge_items ki
		LEFT JOIN embeddings e ON e.knowledge_id = ki.id
		WHERE ki.is_active = 1 AND (ki.expires_at IS NULL OR ki.expires_at > ?)
	`, nowISOStr)
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.LegacyScan: query", err)
	}
	defer rows.Close()

	var out []LegacyCandidate
	for rows.Next() {
		var it KnowledgeItem
		var isActive int
		var vecBlob []byte
		if err := rows.Scan(
			&it.ID, &it.CreatedAt, &it.UpdatedAt, &it.Content, &it.Summary, &it.KnowledgeType,
			&it.SourceType, &it.Scope, &it.ScopeLayer, &it.RoleTag, &it.DialecticTag,
			&it.Confidence, &it.RelevanceScore, &it.UsageCount, &it.LastUsedAt,
			&it.DecisionMaker, &it.Outcome, &it.FinancialImpact, &it.SourceID, &it.SourceContext,
			&it.UserID, &it.ProjectID, &it.DIDAuthor, &isActive, &it.ExpiresAt,
			&vecBlob,
		); err != nil {
			return nil, rerr.Wrap(rerr.Storage, "store.LegacyScan: scan", err)
		}
		it.IsActive = isActive != 0
		var vec []float32
		if vecBlob != nil {
			if v, convErr := embedding.BlobToVector(vecBlob); convErr == nil {
				vec = v
			}
		}
		out = append(out, LegacyCandidate{Item: &it, Vector: vec})
	}
	return out, rows.Err()
}
