package store

// schemaVersionTable gates every migration below. version is the last
// applied migration number; migrations run strictly in order and a
// migration failure is fatal and blocks open.
const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS _schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// migrateV1 creates every table the knowledge engine needs except the
// vector-KNN index, plus the legacy blob embedding table v2 backfills from.
const migrateV1 = `
CREATE TABLE IF NOT EXISTS knowledge_items (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    content TEXT NOT NULL,
    summary TEXT,
    knowledge_type TEXT NOT NULL,
    source_type TEXT NOT NULL,
    scope TEXT NOT NULL CHECK (scope IN ('personal','team','role','global')),
    scope_layer TEXT CHECK (scope_layer IS NULL OR scope_layer IN
        ('operations','creative','pitch','strategy','execution','culture')),
    role_tag TEXT,
    dialectic_tag TEXT CHECK (dialectic_tag IS NULL OR dialectic_tag IN
        ('risk','opportunity','constraint','quality','client_concern')),
    confidence REAL NOT NULL DEFAULT 0.5,
    relevance_score REAL NOT NULL DEFAULT 0.5,
    usage_count INTEGER NOT NULL DEFAULT 0,
    last_used_at TEXT,
    decision_maker TEXT,
    outcome TEXT CHECK (outcome IS NULL OR outcome IN
        ('confirmed','rejected','pending','escalated')),
    financial_impact INTEGER,
    source_id TEXT,
    source_context TEXT,
    user_id TEXT,
    project_id TEXT,
    did_author TEXT,
    is_active INTEGER NOT NULL DEFAULT 1,
    expires_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_knowledge_user
    ON knowledge_items(user_id) WHERE is_active = 1;
CREATE INDEX IF NOT EXISTS idx_knowledge_project
    ON knowledge_items(project_id) WHERE is_active = 1;
CREATE INDEX IF NOT EXISTS idx_knowledge_scope
    ON knowledge_items(scope) WHERE is_active = 1;
CREATE INDEX IF NOT EXISTS idx_knowledge_type
    ON knowledge_items(knowledge_type) WHERE is_active = 1;
CREATE INDEX IF NOT EXISTS idx_knowledge_role
    ON knowledge_items(role_tag) WHERE is_active = 1;
CREATE INDEX IF NOT EXISTS idx_knowledge_dialectic
    ON knowledge_items(dialectic_tag) WHERE is_active = 1;

-- Legacy embedding table. Always written alongside knowledge_items; the
-- KNN virtual table (migrate_v2) is a denormalized index over the same data.
CREATE TABLE IF NOT EXISTS embeddings (
    knowledge_id TEXT PRIMARY KEY,
    vector BLOB NOT NULL,
    FOREIGN KEY (knowledge_id) REFERENCES knowledge_items(id)
);

CREATE TABLE IF NOT EXISTS extraction_log (
    source_type TEXT NOT NULL,
    source_id TEXT NOT NULL,
    items_created INTEGER NOT NULL DEFAULT 0,
    completed_at TEXT NOT NULL,
    UNIQUE(source_type, source_id)
);

CREATE TABLE IF NOT EXISTS rag_query_log (
    id TEXT PRIMARY KEY,
    query_text TEXT NOT NULL,
    scope TEXT NOT NULL,
    project_id TEXT,
    retrieved_ids TEXT NOT NULL,
    result_count INTEGER NOT NULL,
    top_similarity REAL NOT NULL DEFAULT 0,
    was_helpful INTEGER,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_digests (
    id TEXT PRIMARY KEY,
    room TEXT,
    project_id TEXT,
    digest_type TEXT NOT NULL CHECK (digest_type IN
        ('decisions','action_items','risks','summary')),
    content TEXT NOT NULL,
    message_count INTEGER NOT NULL DEFAULT 0,
    confidence REAL NOT NULL DEFAULT 0.5,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_patterns (
    user_id TEXT NOT NULL,
    knowledge_domain TEXT NOT NULL,
    pattern_text TEXT NOT NULL,
    times_seen INTEGER NOT NULL DEFAULT 1,
    last_seen_at TEXT NOT NULL,
    UNIQUE(user_id, knowledge_domain)
);

CREATE TABLE IF NOT EXISTS context_snapshots (
    project_id TEXT PRIMARY KEY,
    room TEXT,
    rendered_text TEXT NOT NULL,
    char_count INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS persona_query_log (
    id TEXT PRIMARY KEY,
    query_text TEXT NOT NULL,
    retrieved_ids TEXT NOT NULL,
    result_count INTEGER NOT NULL,
    top_similarity REAL NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrateV2Vec creates the vec0 virtual table, using cosine distance. If
// creating it fails (the sqlite-vec extension is not registered), retrieval
// downgrades to the legacy scan path but open is not blocked.
const migrateV2Vec = `
CREATE VIRTUAL TABLE IF NOT EXISTS vec_knowledge USING vec0(
    knowledge_id TEXT PRIMARY KEY,
    embedding float[384] distance_metric=cosine
);
`

// migrateV2Backfill copies every existing legacy embedding into the new
// vector index. INSERT OR IGNORE makes this safe to re-run.
const migrateV2Backfill = `
INSERT OR IGNORE INTO vec_knowledge(knowledge_id, embedding)
SELECT knowledge_id, vector FROM embeddings;
`
