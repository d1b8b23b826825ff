package recurring

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles recurring rule persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new recurring rule repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "recurring").Logger(),
	}
}

// Create inserts a new rule
func (r *Repository) Create(rule *Rule) (*Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO recurring_rules (id, space_id, type, amount, description, category, frequency, next_run, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rule.ID, rule.SpaceID, rule.Type, rule.Amount, rule.Description,
		rule.Category, rule.Frequency, rule.NextRun, boolToInt(rule.IsActive),
		rule.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recurring rule: %w", err)
	}
	return rule, nil
}

// ListActive retrieves the active rules of a space ordered by next run
func (r *Repository) ListActive(spaceID string) ([]Rule, error) {
	rows, err := r.db.Query(`
		SELECT id, space_id, type, amount, description, category, frequency, next_run, is_active, created_at
		FROM recurring_rules
		WHERE space_id = ? AND is_active = 1
		ORDER BY next_run ASC, created_at ASC
	`, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// ListDue retrieves every active rule, in any space, whose next run
// is on or before the given date. Used by the advancement job.
func (r *Repository) ListDue(date string) ([]Rule, error) {
	rows, err := r.db.Query(`
		SELECT id, space_id, type, amount, description, category, frequency, next_run, is_active, created_at
		FROM recurring_rules
		WHERE is_active = 1 AND next_run <= ?
		ORDER BY next_run ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query due recurring rules: %w", err)
	}
	defer rows.Close()
	return scanRules(rows)
}

// SetNextRun rewrites a rule's next run date
func (r *Repository) SetNextRun(spaceID, id, nextRun string) error {
	result, err := r.db.Exec(`
		UPDATE recurring_rules SET next_run = ? WHERE space_id = ? AND id = ?
	`, nextRun, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to update recurring rule: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a rule within a space
func (r *Repository) Delete(spaceID, id string) error {
	result, err := r.db.Exec(`DELETE FROM recurring_rules WHERE space_id = ? AND id = ?`, spaceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
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

func scanRules(rows *sql.Rows) ([]Rule, error) {
	var list []Rule

	for rows.Next() {
		var rule Rule
		var createdAt string
		var active int

		err := rows.Scan(
			&rule.ID, &rule.SpaceID, &rule.Type, &rule.Amount, &rule.Description,
			&rule.Category, &rule.Frequency, &rule.NextRun, &active, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring rule: %w", err)
		}

		rule.IsActive = active != 0
		rule.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		list = append(list, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring rules: %w", err)
	}
	return list, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
