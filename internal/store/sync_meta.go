package store

import (
	"database/sql"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/rerr"
)

// metaGet reads a single sync_meta value, or "" if the key is absent.
func (s *Store) metaGet(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sync_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", rerr.Wrap(rerr.Storage, "store.metaGet", err)
	}
	return value, nil
}

func (s *Store) metaSet(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return rerr.Wrap(rerr.Storage, "store.metaSet", err)
	}
	return nil
}

// GetSyncStatus reports the current sync watermark and enablement flag.
// total_items counts every row in knowledge_items regardless of is_active
// (soft-deleted rows included), preserving the original system's
// count_changes(None) semantics.
func (s *Store) GetSyncStatus() (*SyncStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enabledStr, err := s.metaGet("sync_enabled")
	if err != nil {
		return nil, err
	}
	lastSyncAt, err := s.metaGet("last_sync_at")
	if err != nil {
		return nil, err
	}
	lastCountStr, err := s.metaGet("last_sync_item_count")
	if err != nil {
		return nil, err
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_items`).Scan(&total); err != nil {
		return nil, rerr.Wrap(rerr.Storage, "store.GetSyncStatus: count", err)
	}

	status := &SyncStatus{
		Enabled:    enabledStr == "true",
		TotalItems: total,
	}
	if lastSyncAt != "" {
		status.LastSyncAt = &lastSyncAt
	}
	if lastCountStr != "" {
		status.LastSyncItemCount = parseIntOr(lastCountStr, 0)
	}
	return status, nil
}

// SetSyncEnabled flips the sync_enabled flag. Disabled by default.
func (s *Store) SetSyncEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := "false"
	if enabled {
		value = "true"
	}
	return s.metaSet("sync_enabled", value)
}

// MarkSyncComplete records the watermark after a successful import/export
// exchange. It is the caller's responsibility to invoke this.
func (s *Store) MarkSyncComplete(count int, at string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.metaSet("last_sync_at", at); err != nil {
		return err
	}
	return s.metaSet("last_sync_item_count", itoa(count))
}

// CountChanges counts every row updated since the given watermark (or every
// row if since is empty), regardless of is_active — matching the original
// system's count_changes(None) behavior (see SPEC_FULL.md §9, decision 4).
func (s *Store) CountChanges(since string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	var err error
	if since == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_items`).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_items WHERE updated_at > ?`, since).Scan(&count)
	}
	if err != nil {
		return 0, rerr.Wrap(rerr.Storage, "store.CountChanges", err)
	}
	return count, nil
}
