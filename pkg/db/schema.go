package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per corpus preparation
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    language TEXT NOT NULL,
    input_path TEXT NOT NULL,
    input_bytes INTEGER DEFAULT 0,
    workers INTEGER NOT NULL,
    block_size INTEGER NOT NULL,
    vocabulary_size INTEGER NOT NULL,
    prune_factor INTEGER NOT NULL,
    status TEXT NOT NULL,         -- running, done, cancelled, failed
    error TEXT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,

    -- Counters reported at the end of the run
    batches INTEGER DEFAULT 0,
    prunes INTEGER DEFAULT 0,
    vocabulary_words INTEGER DEFAULT 0,
    prepared_lines INTEGER DEFAULT 0,
    skipped_lines INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_language ON runs(language);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

-- Run artifacts: files produced by a run (DB stores metadata, disk stores content)
CREATE TABLE IF NOT EXISTS run_artifacts (
    artifact_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,           -- prepared, vocabulary, manifest, ...
    file_path TEXT NOT NULL,
    size_bytes INTEGER,
    content_hash TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, name)
);

CREATE INDEX IF NOT EXISTS idx_run_artifacts_run ON run_artifacts(run_id);
`
