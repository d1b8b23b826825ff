package transactions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// MaxListLimit caps how many transactions a single listing returns.
const MaxListLimit = 300

// Repository handles transaction persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// Create inserts a new transaction. A missing ID is generated.
func (r *Repository) Create(tx *Transaction) (*Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO transactions (id, space_id, type, amount, description, category, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID, tx.SpaceID, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Date,
		tx.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return tx, nil
}

// CreateBatch inserts transactions inside a single database
// transaction so a failing row rolls back the whole batch.
func (r *Repository) CreateBatch(txs []Transaction) error {
	dbTx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin batch insert: %w", err)
	}
	defer dbTx.Rollback() // no-op after commit

	stmt, err := dbTx.Prepare(`
		INSERT INTO transactions (id, space_id, type, amount, description, category, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeLayout)
	for i := range txs {
		tx := &txs[i]
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		createdAt := now
		if !tx.CreatedAt.IsZero() {
			createdAt = tx.CreatedAt.Format(timeLayout)
		}
		if _, err := stmt.Exec(tx.ID, tx.SpaceID, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Date, createdAt); err != nil {
			return fmt.Errorf("failed to insert batch row %d: %w", i, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch insert: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction within a space
func (r *Repository) GetByID(spaceID, id string) (*Transaction, error) {
	row := r.db.QueryRow(`
		SELECT id, space_id, type, amount, description, category, date, created_at
		FROM transactions
		WHERE space_id = ? AND id = ?
	`, spaceID, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// List retrieves the most recent transactions for a space, newest
// first. Limit is clamped to MaxListLimit.
func (r *Repository) List(spaceID string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.Query(`
		SELECT id, space_id, type, amount, description, category, date, created_at
		FROM transactions
		WHERE space_id = ?
		ORDER BY date DESC, created_at DESC
		LIMIT ?
	`, spaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListByMonth retrieves all transactions of a space dated within the
// given YYYY-MM month, newest first.
func (r *Repository) ListByMonth(spaceID, month string) ([]Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, space_id, type, amount, description, category, date, created_at
		FROM transactions
		WHERE space_id = ? AND date LIKE ?
		ORDER BY date DESC, created_at DESC
		LIMIT ?
	`, spaceID, month+"-%", MaxListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by month: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Update rewrites the mutable fields of a transaction
func (r *Repository) Update(tx *Transaction) error {
	result, err := r.db.Exec(`
		UPDATE transactions
		SET type = ?, amount = ?, description = ?, category = ?, date = ?
		WHERE space_id = ? AND id = ?
	`, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Date, tx.SpaceID, tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a transaction within a space
func (r *Repository) Delete(spaceID, id string) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE space_id = ? AND id = ?`, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of transactions in a space
func (r *Repository) Count(spaceID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE space_id = ?`, spaceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var tx Transaction
	var createdAt string

	err := row.Scan(
		&tx.ID, &tx.SpaceID, &tx.Type, &tx.Amount,
		&tx.Description, &tx.Category, &tx.Date, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	tx.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &tx, nil
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	var txs []Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, *tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txs, nil
}
