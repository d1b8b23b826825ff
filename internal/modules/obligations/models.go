package obligations

import (
	"time"

	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Obligation statuses
const (
	StatusPending = "pending"
	StatusOverdue = "overdue"
	StatusPaid    = "paid"
)

// Obligation is a one-off payable. Amount always holds the remaining
// balance: partial payments rewrite it, a full payment only flips the
// status so the last known balance survives for display.
type Obligation struct {
	ID             string    `json:"id"`
	SpaceID        string    `json:"-"`
	Title          string    `json:"title"`
	Amount         float64   `json:"amount"`
	DueDate        string    `json:"due_date"` // YYYY-MM-DD
	Status         string    `json:"status"`   // pending | overdue | paid
	Category       string    `json:"category,omitempty"`
	MinimumPayment float64   `json:"minimum_payment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateRequest is the payload for registering an obligation
type CreateRequest struct {
	Title          string  `json:"title"`
	Amount         float64 `json:"amount"`
	DueDate        string  `json:"due_date"`
	Category       string  `json:"category"`
	MinimumPayment float64 `json:"minimum_payment"`
}

// PayRequest is the payload for confirming a payment. A missing
// amount means the full outstanding balance.
type PayRequest struct {
	PaymentAmount *float64 `json:"payment_amount,omitempty"`
	PaymentDate   string   `json:"payment_date,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// PaymentResult is returned after a confirmed payment
type PaymentResult struct {
	Obligation  *Obligation               `json:"obligation"`
	Transaction *transactions.Transaction `json:"transaction"`
	Remaining   float64                   `json:"remaining"`
}
