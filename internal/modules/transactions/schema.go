package transactions

// Schema for the transactions table.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL,
    type TEXT NOT NULL,
    amount REAL NOT NULL,
    description TEXT NOT NULL,
    category TEXT NOT NULL,
    date TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_space_date ON transactions(space_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_space_category ON transactions(space_id, category);
`
