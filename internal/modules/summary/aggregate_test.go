package summary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldear/finanzas/internal/modules/budgets"
	"github.com/waldear/finanzas/internal/modules/debts"
	"github.com/waldear/finanzas/internal/modules/obligations"
	"github.com/waldear/finanzas/internal/modules/recurring"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

func expense(date, category string, amount float64) transactions.Transaction {
	return transactions.Transaction{
		Type:     transactions.TypeExpense,
		Amount:   amount,
		Category: category,
		Date:     date,
	}
}

func TestAggregate_TotalsAndSpentByCategory(t *testing.T) {
	snap := &Snapshot{
		Month: "2024-03",
		Today: "2024-03-10",
		Transactions: []transactions.Transaction{
			{Type: transactions.TypeIncome, Amount: 900000, Category: "Sueldo", Date: "2024-03-01"},
			expense("2024-03-05", "Comida", 500),
			expense("2024-03-06", "comida", 350),
			expense("2024-03-07", "Transporte", 120.504),
		},
	}

	s := Aggregate(snap)
	assert.Equal(t, 900000.0, s.TotalIncome)
	assert.Equal(t, 970.5, s.TotalExpenses)
	assert.Equal(t, 899029.5, s.Balance)

	// Category keys are lowercased so "Comida" and "comida" merge.
	assert.Equal(t, 850.0, s.SpentByCategory["comida"])
	assert.Equal(t, 120.5, s.SpentByCategory["transporte"])
}

func TestAggregate_BudgetAlert(t *testing.T) {
	snap := &Snapshot{
		Month: "2024-03",
		Today: "2024-03-10",
		Transactions: []transactions.Transaction{
			expense("2024-03-05", "Comida", 500),
			expense("2024-03-06", "comida", 350),
		},
		Budgets: []budgets.Budget{
			{ID: "b1", Category: "Comida", Month: "2024-03", LimitAmount: 1000, AlertThreshold: 80},
			{ID: "b2", Category: "Transporte", Month: "2024-03", LimitAmount: 5000, AlertThreshold: 80},
			{ID: "b3", Category: "Salud", Month: "2024-03", LimitAmount: 0},
		},
	}

	s := Aggregate(snap)
	require.Len(t, s.Budgets, 3)

	comida := s.Budgets[0]
	assert.Equal(t, 850.0, comida.Spent)
	assert.Equal(t, 85.0, comida.UsagePercent)
	assert.True(t, comida.IsAlert)

	assert.False(t, s.Budgets[1].IsAlert)
	assert.Equal(t, 0.0, s.Budgets[1].UsagePercent)

	// Non-positive limit never alerts.
	assert.Equal(t, 0.0, s.Budgets[2].UsagePercent)
	assert.False(t, s.Budgets[2].IsAlert)
}

func TestAggregate_ReminderOrderAndWindow(t *testing.T) {
	snap := &Snapshot{
		Month: "2024-03",
		Today: "2024-03-10",
		Obligations: []obligations.Obligation{
			{ID: "o1", Title: "Expensas", Amount: 50000, DueDate: "2024-03-05", Status: obligations.StatusOverdue},
			{ID: "o2", Title: "Monotributo", Amount: 30000, DueDate: "2024-03-15", Status: obligations.StatusPending},
			{ID: "o3", Title: "Lejana", Amount: 1000, DueDate: "2024-04-20", Status: obligations.StatusPending},
			{ID: "o4", Title: "Saldada", Amount: 0, DueDate: "2024-03-11", Status: obligations.StatusPaid},
		},
		Debts: []debts.Debt{
			{ID: "d1", Name: "Auto", MonthlyPayment: 100000, RemainingInstallments: 5, NextPaymentDate: "2024-03-12"},
			{ID: "d2", Name: "Terminada", MonthlyPayment: 5000, RemainingInstallments: 0, NextPaymentDate: "2024-03-12"},
		},
		Budgets: []budgets.Budget{
			{ID: "b1", Category: "Comida", LimitAmount: 100, AlertThreshold: 80},
		},
		Transactions: []transactions.Transaction{
			expense("2024-03-05", "Comida", 95),
		},
		Recurring: []recurring.Rule{
			{ID: "r1", Description: "Alquiler", Amount: 300000, NextRun: "2024-03-11", IsActive: true},
		},
	}

	s := Aggregate(snap)
	require.Len(t, s.Reminders, 5)

	// Fixed order: obligations, debts, budgets, recurring.
	assert.Equal(t, []string{
		ReminderObligation, ReminderObligation,
		ReminderDebt, ReminderBudget, ReminderRecurring,
	}, kinds(s.Reminders))

	overdue := s.Reminders[0]
	assert.Equal(t, "o1", overdue.RefID)
	assert.Equal(t, -5, overdue.DaysLeft)
	assert.Equal(t, "Vencida: Expensas", overdue.Title)

	assert.Equal(t, "o2", s.Reminders[1].RefID)
	assert.Equal(t, 5, s.Reminders[1].DaysLeft)

	assert.Equal(t, "d1", s.Reminders[2].RefID)
	assert.Equal(t, 2, s.Reminders[2].DaysLeft)

	assert.Equal(t, "b1", s.Reminders[3].RefID)
	assert.Equal(t, "Presupuesto Comida al 95%", s.Reminders[3].Title)

	assert.Equal(t, "r1", s.Reminders[4].RefID)
	assert.Equal(t, 1, s.Reminders[4].DaysLeft)
}

func TestAggregate_ReminderCaps(t *testing.T) {
	snap := &Snapshot{Month: "2024-03", Today: "2024-03-10"}
	for i := 0; i < 10; i++ {
		snap.Obligations = append(snap.Obligations, obligations.Obligation{
			ID:      fmt.Sprintf("o%d", i),
			Title:   "Obligacion",
			Amount:  100,
			DueDate: "2024-03-11",
			Status:  obligations.StatusPending,
		})
		snap.Debts = append(snap.Debts, debts.Debt{
			ID:                    fmt.Sprintf("d%d", i),
			Name:                  "Deuda",
			MonthlyPayment:        100,
			RemainingInstallments: 1,
			NextPaymentDate:       "2024-03-11",
		})
		snap.Recurring = append(snap.Recurring, recurring.Rule{
			ID:          fmt.Sprintf("r%d", i),
			Description: "Regla",
			Amount:      100,
			NextRun:     "2024-03-11",
			IsActive:    true,
		})
	}

	s := Aggregate(snap)
	assert.LessOrEqual(t, len(s.Reminders), MaxReminders)

	got := map[string]int{}
	for _, r := range s.Reminders {
		got[r.Kind]++
	}
	assert.Equal(t, maxObligationReminders, got[ReminderObligation])
	assert.Equal(t, maxDebtReminders, got[ReminderDebt])
	assert.Equal(t, maxRecurringReminders, got[ReminderRecurring])
}

func TestAggregate_Insights(t *testing.T) {
	snap := &Snapshot{Month: "2024-03", Today: "2024-03-10"}
	for day := 1; day <= 10; day++ {
		snap.Transactions = append(snap.Transactions,
			expense(fmt.Sprintf("2024-03-%02d", day), "Comida", 100))
	}

	s := Aggregate(snap)
	assert.Equal(t, 100.0, s.Insights.DailySpendMean)
	assert.Equal(t, 0.0, s.Insights.DailySpendStdDev)
	require.NotNil(t, s.Insights.WeeklyTrend)
	assert.Equal(t, 100.0, *s.Insights.WeeklyTrend)
}

func TestAggregate_InsightsShortMonth(t *testing.T) {
	snap := &Snapshot{
		Month: "2024-03",
		Today: "2024-03-03",
		Transactions: []transactions.Transaction{
			expense("2024-03-01", "Comida", 100),
			expense("2024-03-02", "Comida", 200),
		},
	}

	s := Aggregate(snap)
	assert.Equal(t, 100.0, s.Insights.DailySpendMean)
	assert.Nil(t, s.Insights.WeeklyTrend, "fewer than 7 days of data")
}

func kinds(reminders []Reminder) []string {
	out := make([]string, len(reminders))
	for i, r := range reminders {
		out[i] = r.Kind
	}
	return out
}
