package budgets

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles budget persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new budget repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "budgets").Logger(),
	}
}

// Upsert creates or replaces the budget for (category, month)
func (r *Repository) Upsert(b *Budget) (*Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO budgets (id, space_id, category, month, limit_amount, alert_threshold, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(space_id, category, month) DO UPDATE SET
			limit_amount = excluded.limit_amount,
			alert_threshold = excluded.alert_threshold
	`,
		b.ID, b.SpaceID, b.Category, b.Month, b.LimitAmount, b.AlertThreshold,
		b.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget: %w", err)
	}

	// A replaced row keeps its original ID; read it back.
	return r.getByCategoryMonth(b.SpaceID, b.Category, b.Month)
}

// ListByMonth retrieves the budgets of a space for one month
func (r *Repository) ListByMonth(spaceID, month string) ([]Budget, error) {
	rows, err := r.db.Query(`
		SELECT id, space_id, category, month, limit_amount, alert_threshold, created_at
		FROM budgets
		WHERE space_id = ? AND month = ?
		ORDER BY category ASC
	`, spaceID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var list []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return list, nil
}

// Delete removes a budget within a space
func (r *Repository) Delete(spaceID, id string) error {
	result, err := r.db.Exec(`DELETE FROM budgets WHERE space_id = ? AND id = ?`, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repository) getByCategoryMonth(spaceID, category, month string) (*Budget, error) {
	row := r.db.QueryRow(`
		SELECT id, space_id, category, month, limit_amount, alert_threshold, created_at
		FROM budgets
		WHERE space_id = ? AND category = ? AND month = ?
	`, spaceID, category, month)

	b, err := scanBudget(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBudget(row rowScanner) (*Budget, error) {
	var b Budget
	var createdAt string

	err := row.Scan(
		&b.ID, &b.SpaceID, &b.Category, &b.Month,
		&b.LimitAmount, &b.AlertThreshold, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &b, nil
}
