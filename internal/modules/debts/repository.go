package debts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles debt persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new debt repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "debts").Logger(),
	}
}

// Create inserts a new debt
func (r *Repository) Create(d *Debt) (*Debt, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO debts (id, space_id, name, total_amount, monthly_payment,
			remaining_installments, total_installments, next_payment_date, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID, d.SpaceID, d.Name, d.TotalAmount, d.MonthlyPayment,
		d.RemainingInstallments, d.TotalInstallments, d.NextPaymentDate,
		d.Category, d.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert debt: %w", err)
	}
	return d, nil
}

// GetByID retrieves a debt within a space
func (r *Repository) GetByID(spaceID, id string) (*Debt, error) {
	row := r.db.QueryRow(`
		SELECT id, space_id, name, total_amount, monthly_payment,
			remaining_installments, total_installments, next_payment_date, category, created_at
		FROM debts
		WHERE space_id = ? AND id = ?
	`, spaceID, id)

	d, err := scanDebt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return d, nil
}

// List retrieves the debts of a space ordered by next payment date
func (r *Repository) List(spaceID string) ([]Debt, error) {
	rows, err := r.db.Query(`
		SELECT id, space_id, name, total_amount, monthly_payment,
			remaining_installments, total_installments, next_payment_date, category, created_at
		FROM debts
		WHERE space_id = ?
		ORDER BY next_payment_date ASC, created_at ASC
	`, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	var list []Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		list = append(list, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debts: %w", err)
	}
	return list, nil
}

// AdvancePayment records the effect of one installment payment
func (r *Repository) AdvancePayment(spaceID, id string, remainingInstallments int, nextPaymentDate string) error {
	result, err := r.db.Exec(`
		UPDATE debts SET remaining_installments = ?, next_payment_date = ?
		WHERE space_id = ? AND id = ?
	`, remainingInstallments, nextPaymentDate, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to advance debt payment: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a debt within a space
func (r *Repository) Delete(spaceID, id string) error {
	result, err := r.db.Exec(`DELETE FROM debts WHERE space_id = ? AND id = ?`, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDebt(row rowScanner) (*Debt, error) {
	var d Debt
	var createdAt string

	err := row.Scan(
		&d.ID, &d.SpaceID, &d.Name, &d.TotalAmount, &d.MonthlyPayment,
		&d.RemainingInstallments, &d.TotalInstallments, &d.NextPaymentDate,
		&d.Category, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	d.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &d, nil
}
