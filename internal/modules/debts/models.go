package debts

import (
	"time"

	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Debt is a multi-installment payable with a fixed monthly payment.
// RemainingInstallments never exceeds TotalInstallments.
type Debt struct {
	ID                    string    `json:"id"`
	SpaceID               string    `json:"-"`
	Name                  string    `json:"name"`
	TotalAmount           float64   `json:"total_amount"`
	MonthlyPayment        float64   `json:"monthly_payment"`
	RemainingInstallments int       `json:"remaining_installments"`
	TotalInstallments     int       `json:"total_installments"`
	NextPaymentDate       string    `json:"next_payment_date"` // YYYY-MM-DD
	Category              string    `json:"category,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// CreateRequest is the payload for registering a debt
type CreateRequest struct {
	Name                  string  `json:"name"`
	TotalAmount           float64 `json:"total_amount"`
	MonthlyPayment        float64 `json:"monthly_payment"`
	RemainingInstallments int     `json:"remaining_installments"`
	TotalInstallments     int     `json:"total_installments"`
	NextPaymentDate       string  `json:"next_payment_date"`
	Category              string  `json:"category"`
}

// PayRequest is the payload for confirming an installment payment.
// A missing amount means the monthly payment.
type PayRequest struct {
	PaymentAmount *float64 `json:"payment_amount,omitempty"`
	PaymentDate   string   `json:"payment_date,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// PaymentResult is returned after a confirmed installment payment
type PaymentResult struct {
	Debt        *Debt                     `json:"debt"`
	Transaction *transactions.Transaction `json:"transaction"`
	Remaining   int                       `json:"remaining"`
}
