package transactions

import (
	"time"
)

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction represents one ledger movement
type Transaction struct {
	ID          string    `json:"id"`
	SpaceID     string    `json:"-"`
	Type        string    `json:"type"`        // income | expense
	Amount      float64   `json:"amount"`      // always positive
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"created_at"`
}

// ValidType reports whether t is a known transaction type.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// CreateRequest is the payload for direct transaction entry
type CreateRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// UpdateRequest is the payload for an explicit update. Zero-valued
// fields are left untouched.
type UpdateRequest struct {
	Type        string  `json:"type,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date,omitempty"`
}
