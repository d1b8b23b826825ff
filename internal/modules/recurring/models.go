package recurring

import "time"

// Rule frequencies
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f string) bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly || f == FrequencyMonthly
}

// Rule is a recurring movement template. NextRun is advanced by the
// background job; readers only consume active rules.
type Rule struct {
	ID          string    `json:"id"`
	SpaceID     string    `json:"-"`
	Type        string    `json:"type"` // income | expense
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Frequency   string    `json:"frequency"` // weekly | biweekly | monthly
	NextRun     string    `json:"next_run"`  // YYYY-MM-DD
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateRequest is the payload for registering a rule
type CreateRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Frequency   string  `json:"frequency"`
	NextRun     string  `json:"next_run"`
}
