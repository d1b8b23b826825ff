package summary

import (
	"github.com/waldear/finanzas/internal/modules/budgets"
	"github.com/waldear/finanzas/internal/modules/debts"
	"github.com/waldear/finanzas/internal/modules/obligations"
	"github.com/waldear/finanzas/internal/modules/recurring"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Reminder kinds, in emission order.
const (
	ReminderObligation = "obligation"
	ReminderDebt       = "debt"
	ReminderBudget     = "budget"
	ReminderRecurring  = "recurring"
)

// MaxReminders caps the reminder list.
const MaxReminders = 12

// Per-kind reminder caps. They sum to MaxReminders.
const (
	maxObligationReminders = 4
	maxDebtReminders       = 3
	maxBudgetReminders     = 3
	maxRecurringReminders  = 2
)

// nearDueDays is the look-ahead window for due-date reminders, in
// whole UTC calendar days.
const nearDueDays = 7

// Reminder is one actionable alert
type Reminder struct {
	Kind     string  `json:"kind"`
	RefID    string  `json:"ref_id"`
	Title    string  `json:"title"`
	DueDate  string  `json:"due_date,omitempty"`
	DaysLeft int     `json:"days_left"`
	Amount   float64 `json:"amount,omitempty"`
}

// BudgetUsage pairs a budget with its derived spend
type BudgetUsage struct {
	Budget       budgets.Budget `json:"budget"`
	Spent        float64        `json:"spent"`
	UsagePercent float64        `json:"usage_percent"`
	IsAlert      bool           `json:"is_alert"`
}

// Insights carries derived statistics over this month's daily expense
// series.
type Insights struct {
	DailySpendMean   float64  `json:"daily_spend_mean"`
	DailySpendStdDev float64  `json:"daily_spend_std_dev"`
	WeeklyTrend      *float64 `json:"weekly_trend,omitempty"`
}

// Summary is the aggregated month view
type Summary struct {
	Month           string             `json:"month"`
	TotalIncome     float64            `json:"total_income"`
	TotalExpenses   float64            `json:"total_expenses"`
	Balance         float64            `json:"balance"`
	SpentByCategory map[string]float64 `json:"spent_by_category"`
	Budgets         []BudgetUsage      `json:"budgets"`
	Reminders       []Reminder         `json:"reminders"`
	Insights        Insights           `json:"insights"`
}

// Snapshot bundles the read-only inputs of one aggregation
type Snapshot struct {
	Month        string
	Today        string // YYYY-MM-DD, UTC
	Transactions []transactions.Transaction
	Obligations  []obligations.Obligation
	Debts        []debts.Debt
	Budgets      []budgets.Budget
	Recurring    []recurring.Rule
}
