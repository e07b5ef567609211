package journal

// Schema creates the submissions table. client_order_id is a ULID, so the
// index sorts by generation time.
const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    time            TIMESTAMP NOT NULL,
    symbol          TEXT NOT NULL,
    action          TEXT NOT NULL,
    order_type      TEXT NOT NULL,
    state           TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    client_order_id TEXT NOT NULL DEFAULT '',
    entry_order_id  TEXT NOT NULL DEFAULT '',
    hedge_order_id  TEXT NOT NULL DEFAULT '',
    entry           REAL NOT NULL DEFAULT 0,
    target          REAL NOT NULL DEFAULT 0,
    stop            REAL NOT NULL DEFAULT 0,
    qty             INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_submissions_symbol ON submissions(symbol);
CREATE INDEX IF NOT EXISTS idx_submissions_client ON submissions(client_order_id);
`
