package sync

import (
	"time"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/store"
)

// Item is the wire shape of one exchanged row: the full knowledge item plus
// its embedding vector.
type Item struct {
	Item      store.KnowledgeItem `json:"item"`
	Embedding []float32           `json:"embedding"`
}

// Delta is the payload shipped in a sync envelope.
type Delta struct {
	Items      []Item  `json:"items"`
	ExtractedAt string `json:"extracted_at"`
	Since       *string `json:"since"`
	TotalCount  int     `json:"total_count"`
}

// ExportResult is returned by Export.
type ExportResult struct {
	Blob       string `json:"blob"`
	ItemCount  int    `json:"item_count"`
}

// ImportResult is returned by Import.
type ImportResult struct {
	Upserted      int `json:"upserted"`
	Skipped       int `json:"skipped"`
	IncomingCount int `json:"incoming_count"`
}

// Engine orchestrates delta extraction and encrypted export/import against
// a Store, keyed by a device's DID secret seed.
type Engine struct {
	store *store.Store
}

// New builds a sync Engine over store.
func New(s *store.Store) *Engine { return &Engine{store: s} }

// GetDelta returns every row changed since the watermark (or every row if
// since is empty).
func (e *Engine) GetDelta(since string) (*Delta, error) {
	rows, err := e.store.GetDelta(since)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Item{Item: r.Item, Embedding: r.Embedding})
	}

	d := &Delta{
		Items:       items,
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		TotalCount:  len(items),
	}
	if since != "" {
		d.Since = &since
	}
	return d, nil
}

// ExportEncrypted derives the sync key from didSecretSeed and encrypts the
// current delta since the watermark. An empty delta short-circuits to an
// empty-blob result without calling Encrypt, matching the original's
// behavior of never producing a ciphertext for zero rows.
func (e *Engine) ExportEncrypted(didSecretSeed []byte, since string) (*ExportResult, error) {
	delta, err := e.GetDelta(since)
	if err != nil {
		return nil, err
	}
	if len(delta.Items) == 0 {
		return &ExportResult{Blob: "", ItemCount: 0}, nil
	}

	blob, err := EncryptJSON(didSecretSeed, delta)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Blob: blob, ItemCount: len(delta.Items)}, nil
}

// ImportEncrypted decrypts blob under didSecretSeed and applies every
// incoming item under Last-Write-Wins. An empty blob short-circuits to a
// zero-valued result without attempting to decrypt.
func (e *Engine) ImportEncrypted(didSecretSeed []byte, blob string) (*ImportResult, error) {
	if blob == "" {
		return &ImportResult{}, nil
	}

	var delta Delta
	if err := DecryptJSON(didSecretSeed, blob, &delta); err != nil {
		return nil, err
	}

	result := &ImportResult{IncomingCount: len(delta.Items)}
	for _, item := range delta.Items {
		applied, err := e.store.ApplyDeltaItem(store.SyncItem{Item: item.Item, Embedding: item.Embedding})
		if err != nil {
			return nil, err
		}
		if applied {
			result.Upserted++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

// GetSyncStatus reports the current watermark and enablement flag.
func (e *Engine) GetSyncStatus() (*store.SyncStatus, error) {
	return e.store.GetSyncStatus()
}

// SetSyncEnabled flips the sync_enabled flag. Disabled by default.
func (e *Engine) SetSyncEnabled(enabled bool) error {
	return e.store.SetSyncEnabled(enabled)
}

// MarkSyncComplete records the watermark after a successful exchange. It is
// the caller's responsibility to invoke this after import/export.
func (e *Engine) MarkSyncComplete(count int) error {
	return e.store.MarkSyncComplete(count, time.Now().UTC().Format(time.RFC3339))
}

// PendingCount reports how many rows have changed since the watermark.
func (e *Engine) PendingCount() (int, error) {
	status, err := e.store.GetSyncStatus()
	if err != nil {
		return 0, err
	}
	since := ""
	if status.LastSyncAt != nil {
		since = *status.LastSyncAt
	}
	return e.store.CountChanges(since)
}
