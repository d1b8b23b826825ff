package budgets

// Schema for the budgets table.
const Schema = `
CREATE TABLE IF NOT EXISTS budgets (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL,
    category TEXT NOT NULL,
    month TEXT NOT NULL,
    limit_amount REAL NOT NULL,
    alert_threshold REAL NOT NULL DEFAULT 80,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_budgets_space_category_month
    ON budgets(space_id, category, month);
`
