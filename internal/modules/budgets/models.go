package budgets

import "time"

// DefaultAlertThreshold is applied when a budget does not set one.
const DefaultAlertThreshold = 80.0

// Budget caps one category for one calendar month. Usage is always
// derived from the ledger, never stored.
type Budget struct {
	ID             string    `json:"id"`
	SpaceID        string    `json:"-"`
	Category       string    `json:"category"`
	Month          string    `json:"month"` // YYYY-MM
	LimitAmount    float64   `json:"limit_amount"`
	AlertThreshold float64   `json:"alert_threshold"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpsertRequest is the payload for creating or replacing a budget.
// One budget exists per (category, month); posting again rewrites it.
type UpsertRequest struct {
	Category       string  `json:"category"`
	Month          string  `json:"month"`
	LimitAmount    float64 `json:"limit_amount"`
	AlertThreshold float64 `json:"alert_threshold"`
}
