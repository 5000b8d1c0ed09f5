package host

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/ingest"
	"github.com/kyungsinkim-sketch/nexus-planner-spark/internal/retrieval"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	dir := t.TempDir()
	h, err := New(Config{DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewOpensStoreUnderDataDir(t *testing.T) {
	h := newTestHost(t)
	_, err := os.Stat(h.cfg.DataDir)
	require.NoError(t, err)
}

func TestIngestFreeThenHybridSearchFindsIt(t *testing.T) {
	h := newTestHost(t)
	user := "u1"
	item, err := h.IngestFree("예산 3000만원으로 확정", "budget_decision", 0.9, nil, &user, nil)
	require.NoError(t, err)
	require.Equal(t, "personal", item.Scope)

	params := retrieval.DefaultSearchParams()
	params.UserID = &user
	hits, err := h.HybridSearch("예산 3000만원으로 확정", params)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
}

func TestSeedCEOPatternsIsIdempotentThroughHost(t *testing.T) {
	h := newTestHost(t)
	seeded, err := h.IsSeeded()
	require.NoError(t, err)
	require.False(t, seeded)

	count, err := h.SeedCEOPatterns()
	require.NoError(t, err)
	require.Equal(t, 30, count)

	again, err := h.SeedCEOPatterns()
	require.NoError(t, err)
	require.Equal(t, 0, again)
}

func TestIdentityAutoInitializesOnFirstSignCall(t *testing.T) {
	h := newTestHost(t)
	require.False(t, h.HasIdentity())

	sig, err := h.Sign("내용", "decision_pattern", "2026-02-23T10:00:00Z")
	require.NoError(t, err)
	require.True(t, h.HasIdentity())

	ok, err := h.Verify(sig, "내용", "decision_pattern", "2026-02-23T10:00:00Z")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSyncDisabledByDefault(t *testing.T) {
	h := newTestHost(t)
	status, err := h.SyncStatus()
	require.NoError(t, err)
	require.False(t, status.Enabled)

	require.NoError(t, h.SetSyncEnabled(true))
	status, err = h.SyncStatus()
	require.NoError(t, err)
	require.True(t, status.Enabled)
}

func TestSyncExportImportRoundTrip(t *testing.T) {
	h := newTestHost(t)
	_, err := h.IngestFromAction(ingest.Action{ActionType: "decision", Content: "결정 사항"})
	require.NoError(t, err)

	exp, err := h.SyncExport("")
	require.NoError(t, err)
	require.NotEmpty(t, exp.Blob)

	res, err := h.SyncImport(exp.Blob)
	require.NoError(t, err)
	require.GreaterOrEqual(t, res.IncomingCount, 0)
}

func TestRetrievedIDsExtractsItemIDs(t *testing.T) {
	h := newTestHost(t)
	_, err := h.IngestFree("내용", "general_note", 0.8, nil, nil, nil)
	require.NoError(t, err)

	hits, err := h.HybridSearch("내용", retrieval.DefaultSearchParams())
	require.NoError(t, err)
	ids := h.RetrievedIDs(hits)
	require.Len(t, ids, len(hits))
}
