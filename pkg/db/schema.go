package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;
PRAGMA mmap_size = 30000000000;

-- Documents table: one row per distinct document, keyed by content hash
CREATE TABLE IF NOT EXISTS documents (
    doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    file_type TEXT,               -- extension with leading dot, '' when unknown
    origin TEXT NOT NULL,         -- local, drive
    source_path TEXT,             -- local path or drive file ID
    content_hash TEXT NOT NULL UNIQUE,
    size_bytes INTEGER DEFAULT 0,
    first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    times_seen INTEGER DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(file_type);
CREATE INDEX IF NOT EXISTS idx_documents_origin ON documents(origin);

-- Runs: one row per pipeline invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    doc_count INTEGER NOT NULL,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    model TEXT,
    source TEXT,                  -- folder path, drive folder, or file list
    run_dir TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Run documents: per-document outcome within a run
CREATE TABLE IF NOT EXISTS run_documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    doc_id INTEGER NOT NULL,
    status TEXT NOT NULL,         -- success, failed
    error_kind TEXT,
    error_message TEXT,
    size_bytes INTEGER,
    estimated_tokens INTEGER,
    summary_chars INTEGER DEFAULT 0,
    language TEXT,                -- ISO 639-1 code when detected
    top_keywords TEXT,            -- JSON array: ["word:count", ...]
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    FOREIGN KEY (doc_id) REFERENCES documents(doc_id),
    UNIQUE(run_id, doc_id)
);

CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
CREATE INDEX IF NOT EXISTS idx_run_documents_doc ON run_documents(doc_id);
CREATE INDEX IF NOT EXISTS idx_run_documents_status ON run_documents(status);
`
