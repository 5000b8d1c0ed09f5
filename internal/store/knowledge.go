package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// CreateKnowledgeItem inserts item (generating an id if empty) along with
// its embedding, writing the knowledge row, the legacy blob row, and the
// vec0 row in a single transaction so the two indexes can never drift
// relative to each other.
func (s *Store) CreateKnowledgeItem(item *KnowledgeItem, vec []float32) error {
	if err := validateItem(item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := nowISO()
	if item.CreatedAt == "" {
		item.CreatedAt = now
	}
	if item.UpdatedAt == "" {
		item.UpdatedAt = now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.CreateKnowledgeItem: begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO knowledge_items (
			id, created_at, updated_at, content, summary, knowledge_type, source_type,
			scope, scope_layer, role_tag, dialectic_tag, confidence, relevance_score,
			usage_count, last_used_at, decision_maker, outcome, financial_impact,
			source_id, source_context, user_id, project_id, did_author, is_active, expires_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		item.ID, item.CreatedAt, item.UpdatedAt, item.Content, item.Summary,
		item.KnowledgeType, item.SourceType, item.Scope, item.ScopeLayer, item.RoleTag,
		item.DialecticTag, item.Confidence, item.RelevanceScore, item.UsageCount,
		item.LastUsedAt, item.DecisionMaker, item.Outcome, item.FinancialImpact,
		item.SourceID, item.SourceContext, item.UserID, item.ProjectID, item.DIDAuthor,
		boolToInt(item.IsActive), item.ExpiresAt,
	); err != nil {
		return rerr.Wrap(rerr.Storage, "store.CreateKnowledgeItem: insert item", err)
	}

	blob := embedding.VectorToBlob(vec)
	if _, err := tx.Exec(`
		INSERT INTO embeddings (knowledge_id, vector) VALUES (?, ?)
	`, item.ID, blob); err != nil {
		return rerr.Wrap(rerr.Storage, "store.CreateKnowledgeItem: insert blob", err)
	}

	if s.hasVec {
		if _, err := tx.Exec(`
			INSERT INTO vec_knowledge(knowledge_id, embedding) VALUES (?, ?)
		`, item.ID, blob); err != nil {
			return rerr.Wrap(rerr.Storage, "store.CreateKnowledgeItem: insert vec0", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return rerr.Wrap(rerr.Storage, "store.CreateKnowledgeItem: commit", err)
	}
	return nil
}

func validateItem(item *KnowledgeItem) error {
	if item.Content == "" {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "content must not be empty")
	}
	if !ValidScopes[item.Scope] {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "unknown scope: "+item.Scope)
	}
	if item.ScopeLayer != nil && !ValidScopeLayers[*item.ScopeLayer] {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "unknown scope_layer: "+*item.ScopeLayer)
	}
	if item.DialecticTag != nil && !ValidDialecticTags[*item.DialecticTag] {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "unknown dialectic_tag: "+*item.DialecticTag)
	}
	if item.Outcome != nil && !ValidOutcomes[*item.Outcome] {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "unknown outcome: "+*item.Outcome)
	}
	if item.Confidence < 0 || item.Confidence > 1 {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "confidence out of range [0,1]")
	}
	if item.RelevanceScore < 0 || item.RelevanceScore > 1 {
		return rerr.New(rerr.InvalidArgument, "store.validateItem", "relevance_score out of range [0,1]")
	}
	return nil
}

// GetKnowledgeItem fetches a single item by id, or (nil, nil) if not found.
func (s *Store) GetKnowledgeItem(id string) (*KnowledgeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := scanItemRow(s.db.QueryRow(`
		SELECT id, created_at, updated_at, content, summary, knowledge_type, source_type,
			scope, scope_layer, role_tag, dialectic_tag, confidence, relevance_score,
			usage_count, last_used_at, decision_maker, outcome, financial_impact,
			source_id, source_context, user_id, project_id, did_author, is_active, expires_at
		FROM knowledge_items WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetKnowledgeItem", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItemRow(row rowScanner) (*KnowledgeItem, error) {
	var it KnowledgeItem
	var isActive int
	if err := row.Scan(
		&it.ID, &it.CreatedAt, &it.UpdatedAt, &it.Content, &it.Summary,
		&it.KnowledgeType, &it.SourceType, &it.Scope, &it.ScopeLayer, &it.RoleTag,
		&it.DialecticTag, &it.Confidence, &it.RelevanceScore, &it.UsageCount,
		&it.LastUsedAt, &it.DecisionMaker, &it.Outcome, &it.FinancialImpact,
		&it.SourceID, &it.SourceContext, &it.UserID, &it.ProjectID, &it.DIDAuthor,
		&isActive, &it.ExpiresAt,
	); err != nil {
		return nil, err
	}
	it.IsActive = isActive != 0
	return &it, nil
}

// UpdateFeedback adjusts relevance_score by +0.02 if helpful, -0.03
// otherwise, clamped to [0,1].
func (s *Store) UpdateFeedback(id string, helpful bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := -0.03
	if helpful {
		delta = 0.02
	}

	_, err := s.db.Exec(`
		UPDATE knowledge_items
		SET relevance_score = MIN(1.0, MAX(0.0, relevance_score + ?)), updated_at = ?
		WHERE id = ?
	`, delta, nowISO(), id)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.UpdateFeedback", err)
	}
	return nil
}

// TouchUsage increments usage_count and sets last_used_at for id. Callers
// treat failures here as best-effort: the retrieval engine logs and drops
// them rather than failing the search that triggered the touch.
func (s *Store) TouchUsage(id string, at string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE knowledge_items SET usage_count = usage_count + 1, last_used_at = ?
		WHERE id = ?
	`, at, id)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.TouchUsage", err)
	}
	return nil
}

// DeactivateKnowledgeItem soft-deletes an item by clearing is_active.
func (s *Store) DeactivateKnowledgeItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE knowledge_items SET is_active = 0, updated_at = ? WHERE id = ?
	`, nowISO(), id)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.DeactivateKnowledgeItem", err)
	}
	return nil
}

// GetStats summarizes the current knowledge-item population.
func (s *Store) GetStats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_items`).Scan(&stats.TotalItems); err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetStats: total", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_items WHERE is_active = 1`).Scan(&stats.ActiveItems); err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetStats: active", err)
	}

	scopeRows, err := s.db.Query(`
		SELECT scope, COUNT(*) FROM knowledge_items WHERE is_active = 1 GROUP BY scope
	`)
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetStats: by scope", err)
	}
	defer scopeRows.Close()
	for scopeRows.Next() {
		var sc ScopeCount
		if err := scopeRows.Scan(&sc.Scope, &sc.Count); err != nil {
			return nil, rerr.Wrap(rerr.Storage, "store.GetStats: scan scope", err)
		}
		stats.ByScope = append(stats.ByScope, sc)
	}

	typeRows, err := s.db.Query(`
		SELECT knowledge_type, COUNT(*) FROM knowledge_items WHERE is_active = 1 GROUP BY knowledge_type
	`)
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetStats: by type", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var tc TypeCount
		if err := typeRows.Scan(&tc.KnowledgeType, &tc.Count); err != nil {
			return nil, rerr.Wrap(rerr.Storage, "store.GetStats: scan type", err)
		}
		stats.ByType = append(stats.ByType, tc)
	}

	return &stats, nil
}

// IsExtracted reports whether (sourceType, sourceID) has already been
// ingested, guaranteeing idempotent extraction from any upstream source.
func (s *Store) IsExtracted(sourceType, sourceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM extraction_log WHERE source_type = ? AND source_id = ?
	`, sourceType, sourceID).Scan(&count)
	if err != nil {
		return false, rerr.Wrap(rerr.Storage, "store.IsExtracted", err)
	}
	return count > 0, nil
}

// MarkExtracted records that an upstream source has been ingested. Calling
// it twice for the same pair is a no-op thanks to the UNIQUE constraint and
// INSERT OR IGNORE below.
func (s *Store) MarkExtracted(sourceType, sourceID string, itemsCreated int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO extraction_log (source_type, source_id, items_created, completed_at)
		VALUES (?, ?, ?, ?)
	`, sourceType, sourceID, itemsCreated, nowISO())
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.MarkExtracted", err)
	}
	return nil
}

// LogQuery records a retrieval call so feedback can later be propagated to
// the items it returned.
func (s *Store) LogQuery(entry *QueryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt == "" {
		entry.CreatedAt = nowISO()
	}

	idsJSON, err := json.Marshal(entry.RetrievedIDs)
	if err != nil {
		return fmt.Errorf("store.LogQuery: marshal retrieved ids: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO rag_query_log (id, query_text, scope, project_id, retrieved_ids,
			result_count, top_similarity, was_helpful, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)
	`, entry.ID, entry.QueryText, entry.Scope, entry.ProjectID, string(idsJSON),
		entry.ResultCount, entry.TopSimilarity, nullableBool(entry.WasHelpful), entry.CreatedAt)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.LogQuery", err)
	}
	return nil
}

// RecordQueryFeedback marks a logged query as helpful or not and propagates
// that feedback to every item it retrieved via UpdateFeedback.
func (s *Store) RecordQueryFeedback(queryLogID string, helpful bool) error {
	s.mu.Lock()
	var idsJSON string
	err := s.db.QueryRow(`SELECT retrieved_ids FROM rag_query_log WHERE id = ?`, queryLogID).Scan(&idsJSON)
	if err == sql.ErrNoRows {
		s.mu.Unlock()
		return rerr.New(rerr.InvalidArgument, "store.RecordQueryFeedback", "unknown query log id")
	}
	if err != nil {
		s.mu.Unlock()
		return rerr.Wrap(rerr.Storage, "store.RecordQueryFeedback: read", err)
	}

	_, err = s.db.Exec(`UPDATE rag_query_log SET was_helpful = ? WHERE id = ?`,
		boolToInt(helpful), queryLogID)
	s.mu.Unlock()
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.RecordQueryFeedback: update log", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		return fmt.Errorf("store.RecordQueryFeedback: unmarshal retrieved ids: %w", err)
	}
	for _, id := range ids {
		if err := s.UpdateFeedback(id, helpful); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}
