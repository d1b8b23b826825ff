package obligations

// Schema for the obligations table.
const Schema = `
CREATE TABLE IF NOT EXISTS obligations (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL,
    title TEXT NOT NULL,
    amount REAL NOT NULL,
    due_date TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    category TEXT NOT NULL DEFAULT '',
    minimum_payment REAL NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_obligations_space_due ON obligations(space_id, due_date);
`
