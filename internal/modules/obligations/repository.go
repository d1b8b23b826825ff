package obligations

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles obligation persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new obligation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "obligations").Logger(),
	}
}

// Create inserts a new obligation
func (r *Repository) Create(o *Obligation) (*Obligation, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO obligations (id, space_id, title, amount, due_date, status, category, minimum_payment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.SpaceID, o.Title, o.Amount, o.DueDate, o.Status,
		o.Category, o.MinimumPayment, o.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert obligation: %w", err)
	}
	return o, nil
}

// GetByID retrieves an obligation within a space
func (r *Repository) GetByID(spaceID, id string) (*Obligation, error) {
	row := r.db.QueryRow(`
		SELECT id, space_id, title, amount, due_date, status, category, minimum_payment, created_at
		FROM obligations
		WHERE space_id = ? AND id = ?
	`, spaceID, id)

	o, err := scanObligation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation: %w", err)
	}
	return o, nil
}

// List retrieves the obligations of a space ordered by due date.
// Pending obligations past their due date are reported as overdue;
// the stored status is not rewritten.
func (r *Repository) List(spaceID string) ([]Obligation, error) {
	rows, err := r.db.Query(`
		SELECT id, space_id, title, amount, due_date, status, category, minimum_payment, created_at
		FROM obligations
		WHERE space_id = ?
		ORDER BY due_date ASC, created_at ASC
	`, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligations: %w", err)
	}
	defer rows.Close()

	today := time.Now().UTC().Format("2006-01-02")
	var list []Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		if o.Status == StatusPending && o.DueDate < today {
			o.Status = StatusOverdue
		}
		list = append(list, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligations: %w", err)
	}
	return list, nil
}

// UpdatePayment rewrites the remaining amount after a partial payment
func (r *Repository) UpdatePayment(spaceID, id string, remaining float64) error {
	result, err := r.db.Exec(`
		UPDATE obligations SET amount = ?, status = ? WHERE space_id = ? AND id = ?
	`, remaining, StatusPending, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to update obligation payment: %w", err)
	}
	return checkAffected(result)
}

// MarkPaid flips the status after a full payment. The stored amount is
// left untouched.
func (r *Repository) MarkPaid(spaceID, id string) error {
	result, err := r.db.Exec(`
		UPDATE obligations SET status = ? WHERE space_id = ? AND id = ?
	`, StatusPaid, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to mark obligation paid: %w", err)
	}
	return checkAffected(result)
}

// Delete removes an obligation within a space
func (r *Repository) Delete(spaceID, id string) error {
	result, err := r.db.Exec(`DELETE FROM obligations WHERE space_id = ? AND id = ?`, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete obligation: %w", err)
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

func scanObligation(row rowScanner) (*Obligation, error) {
	var o Obligation
	var createdAt string

	err := row.Scan(
		&o.ID, &o.SpaceID, &o.Title, &o.Amount, &o.DueDate,
		&o.Status, &o.Category, &o.MinimumPayment, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &o, nil
}
