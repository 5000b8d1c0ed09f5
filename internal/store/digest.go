package store

import (
	"github.com/google/uuid"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// SaveDigest stores a single category slice of an analyzed conversation.
func (s *Store) SaveDigest(d *ChatDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt == "" {
		d.CreatedAt = nowISO()
	}

	_, err := s.db.Exec(`
		INSERT INTO chat_digests (id, room, project_id, digest_type, content, message_count, confidence, created_at)
		VALUES (?,?,?,?,?,?,?,?)
	`, d.ID, d.Room, d.ProjectID, d.DigestType, d.Content, d.MessageCount, d.Confidence, d.CreatedAt)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.SaveDigest", err)
	}
	return nil
}

// RecentDigests returns the most recently stored digests for a project,
// newest first, bounded by limit.
func (s *Store) RecentDigests(projectID string, limit int) ([]*ChatDigest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, room, project_id, digest_type, content, message_count, confidence, created_at
		FROM chat_digests WHERE project_id = ? ORDER BY created_at DESC LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.RecentDigests", err)
	}
	defer rows.Close()

	var out []*ChatDigest
	for rows.Next() {
		var d ChatDigest
		if err := rows.Scan(&d.ID, &d.Room, &d.ProjectID, &d.DigestType, &d.Content,
			&d.MessageCount, &d.Confidence, &d.CreatedAt); err != nil {
			return nil, rerr.Wrap(rerr.Storage, "store.RecentDigests: scan", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// UpsertDecisionPattern records or reinforces a recognized recurring
// decision shape for a user/domain pair.
func (s *Store) UpsertDecisionPattern(p *DecisionPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.LastSeenAt == "" {
		p.LastSeenAt = nowISO()
	}

	_, err := s.db.Exec(`
		INSERT INTO decision_patterns (user_id, knowledge_domain, pattern_text, times_seen, last_seen_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(user_id, knowledge_domain) DO UPDATE SET
			pattern_text = excluded.pattern_text,
			times_seen = decision_patterns.times_seen + 1,
			last_seen_at = excluded.last_seen_at
	`, p.UserID, p.KnowledgeDomain, p.PatternText, p.LastSeenAt)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.UpsertDecisionPattern", err)
	}
	return nil
}

// SaveContextSnapshot persists a point-in-time capture of a build_context
// render, replacing any prior snapshot for the same project.
func (s *Store) SaveContextSnapshot(snap *ContextSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.CreatedAt == "" {
		snap.CreatedAt = nowISO()
	}

	_, err := s.db.Exec(`
		INSERT INTO context_snapshots (project_id, room, rendered_text, char_count, created_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(project_id) DO UPDATE SET
			room = excluded.room,
			rendered_text = excluded.rendered_text,
			char_count = excluded.char_count,
			created_at = excluded.created_at
	`, snap.ProjectID, snap.Room, snap.RenderedText, snap.CharCount, snap.CreatedAt)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.SaveContextSnapshot", err)
	}
	return nil
}

// LogPersonaQuery records a CEO-persona retrieval call, kept separate from
// rag_query_log so persona analytics do not skew general query statistics.
func (s *Store) LogPersonaQuery(entry *PersonaQueryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt == "" {
		entry.CreatedAt = nowISO()
	}

	idsJSON, err := marshalIDs(entry.RetrievedIDs)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO persona_query_log (id, query_text, retrieved_ids, result_count, top_similarity, created_at)
		VALUES (?,?,?,?,?,?)
	`, entry.ID, entry.QueryText, idsJSON, entry.ResultCount, entry.TopSimilarity, entry.CreatedAt)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.LogPersonaQuery", err)
	}
	return nil
}
