package store

import (
	"database/sql"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/embedding"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// SyncItem is a single row exchanged by the sync engine: the full
// knowledge_items row plus its embedding vector (empty if the item has no
// embedding row — a left join, so items without an embedding still export).
type SyncItem struct {
	Item      KnowledgeItem
	Embedding []float32
}

// GetDelta returns every row whose updated_at is strictly greater than
// since (or every row if since is empty), ordered by updated_at ascending.
func (s *Store) GetDelta(since string) ([]SyncItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ki.id, ki.created_at, ki.updated_at, ki.content, ki.summary, ki.knowledge_type,
			ki.source_type, ki.scope, ki.scope_layer, ki.role_tag, ki.dialectic_tag,
			ki.confidence, ki.relevance_score, ki.usage_count, ki.last_used_at,
			ki.decision_maker, ki.outcome, ki.financial_impact, ki.source_id, ki.source_context,
			ki.user_id, ki.project_id, ki.did_author, ki.is_active, ki.expires_at,
			e.vector
		FROM knowledge_items ki
		LEFT JOIN embeddings e ON e.knowledge_id = ki.id
	`
	var rows *sql.Rows
	var err error
	if since == "" {
		rows, err = s.db.Query(query + ` ORDER BY ki.updated_at ASC`)
	} else {
		rows, err = s.db.Query(query+` WHERE ki.updated_at > ? ORDER BY ki.updated_at ASC`, since)
	}
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetDelta: query", err)
	}
	defer rows.Close()

	var out []SyncItem
	for rows.Next() {
		var si SyncItem
		var isActive int
		var vecBlob []byte
		if err := rows.Scan(
			&si.Item.ID, &si.Item.CreatedAt, &si.Item.UpdatedAt, &si.Item.Content, &si.Item.Summary,
			&si.Item.KnowledgeType, &si.Item.SourceType, &si.Item.Scope, &si.Item.ScopeLayer,
			&si.Item.RoleTag, &si.Item.DialecticTag, &si.Item.Confidence, &si.Item.RelevanceScore,
			&si.Item.UsageCount, &si.Item.LastUsedAt, &si.Item.DecisionMaker, &si.Item.Outcome,
			&si.Item.FinancialImpact, &si.Item.SourceID, &si.Item.SourceContext, &si.Item.UserID,
			&si.Item.ProjectID, &si.Item.DIDAuthor, &isActive, &si.Item.ExpiresAt, &vecBlob,
		); err != nil {
			return nil, rerr.Wrap(rerr.Storage, "store.GetDelta: scan", err)
		}
		si.Item.IsActive = isActive != 0
		if vecBlob != nil {
			if v, convErr := embedding.BlobToVector(vecBlob); convErr == nil {
				si.Embedding = v
			}
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

// ApplyDeltaItem upserts a single incoming item under Last-Write-Wins:
// if no local row exists, or the incoming row is strictly newer, it
// replaces the local row (and its embedding, if non-empty) in one
// transaction; otherwise it is skipped. Returns true if the item was
// applied. When the vector index is available, its vec_knowledge row is
// replaced in the same transaction as the legacy blob row.
func (s *Store) ApplyDeltaItem(si SyncItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var localUpdatedAt string
	err := s.db.QueryRow(`SELECT updated_at FROM knowledge_items WHERE id = ?`, si.Item.ID).Scan(&localUpdatedAt)
	if err != nil && err != sql.ErrNoRows {
		return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: lookup", err)
	}
	exists := err == nil
	if exists && localUpdatedAt >= si.Item.UpdatedAt {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: begin", err)
	}
	defer tx.Rollback()

	it := si.Item
	if _, err := tx.Exec(`
		INSERT INTO knowledge_items (
			id, created_at, updated_at, content, summary, knowledge_type, source_type,
			scope, scope_layer, role_tag, dialectic_tag, confidence, relevance_score,
			usage_count, last_used_at, decision_maker, outcome, financial_impact,
			source_id, source_context, user_id, project_id, did_author, is_active, expires_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			created_at=excluded.created_at, updated_at=excluded.updated_at, content=excluded.content,
			summary=excluded.summary, knowledge_type=excluded.knowledge_type, source_type=excluded.source_type,
			scope=excluded.scope, scope_layer=excluded.scope_layer, role_tag=excluded.role_tag,
			dialectic_tag=excluded.dialectic_tag, confidence=excluded.confidence,
			relevance_score=excluded.relevance_score, usage_count=excluded.usage_count,
			last_used_at=excluded.last_used_at, decision_maker=excluded.decision_maker,
			outcome=excluded.outcome, financial_impact=excluded.financial_impact,
			source_id=excluded.source_id, source_context=excluded.source_context,
			user_id=excluded.user_id, project_id=excluded.project_id, did_author=excluded.did_author,
			is_active=excluded.is_active, expires_at=excluded.expires_at
	`,
		it.ID, it.CreatedAt, it.UpdatedAt, it.Content, it.Summary, it.KnowledgeType, it.SourceType,
		it.Scope, it.ScopeLayer, it.RoleTag, it.DialecticTag, it.Confidence, it.RelevanceScore,
		it.UsageCount, it.LastUsedAt, it.DecisionMaker, it.Outcome, it.FinancialImpact,
		it.SourceID, it.SourceContext, it.UserID, it.ProjectID, it.DIDAuthor,
		boolToInt(it.IsActive), it.ExpiresAt,
	); err != nil {
		return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: upsert item", err)
	}

	if len(si.Embedding) > 0 {
		blob := embedding.VectorToBlob(si.Embedding)
		if _, err := tx.Exec(`
			INSERT INTO embeddings (knowledge_id, vector) VALUES (?, ?)
			ON CONFLICT(knowledge_id) DO UPDATE SET vector = excluded.vector
		`, it.ID, blob); err != nil {
			return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: upsert embedding", err)
		}
		if s.hasVec {
			if _, err := tx.Exec(`DELETE FROM vec_knowledge WHERE knowledge_id = ?`, it.ID); err != nil {
				return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: clear vec0", err)
			}
			if _, err := tx.Exec(`
				INSERT INTO vec_knowledge(knowledge_id, embedding) VALUES (?, ?)
			`, it.ID, blob); err != nil {
				return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: insert vec0", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, rerr.Wrap(rerr.Storage, "store.ApplyDeltaItem: commit", err)
	}
	return true, nil
}
