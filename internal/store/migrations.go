package store

const schema = `
CREATE TABLE IF NOT EXISTS seen_urls (
    url        TEXT PRIMARY KEY,
    last_shown TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_seen_last_shown ON seen_urls(last_shown);

CREATE TABLE IF NOT EXISTS digests (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    generated_at DATETIME NOT NULL,
    item_count   INTEGER NOT NULL DEFAULT 0,
    payload      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_digests_generated ON digests(generated_at);
`
