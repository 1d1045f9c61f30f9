package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rate_snapshot (
    id                   INTEGER PRIMARY KEY CHECK (id = 1),
    base                 TEXT NOT NULL,
    fetched_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rates (
    code                 TEXT PRIMARY KEY,
    rate                 TEXT NOT NULL
);
`
