package debts

// Schema for the debts table.
const Schema = `
CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL,
    name TEXT NOT NULL,
    total_amount REAL NOT NULL,
    monthly_payment REAL NOT NULL,
    remaining_installments INTEGER NOT NULL,
    total_installments INTEGER NOT NULL,
    next_payment_date TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_space_next ON debts(space_id, next_payment_date);
`
