package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/waldear/finanzas/internal/modules/budgets"
	"github.com/waldear/finanzas/internal/modules/obligations"
	"github.com/waldear/finanzas/internal/modules/transactions"
	"github.com/waldear/finanzas/pkg/formulas"
)

// Aggregate derives the month view from a snapshot. It is a pure
// function: all date math runs against Snapshot.Today in whole UTC
// calendar days, so results do not shift with the caller's timezone.
func Aggregate(snap *Snapshot) *Summary {
	s := &Summary{
		Month:           snap.Month,
		SpentByCategory: make(map[string]float64),
		Budgets:         []BudgetUsage{},
		Reminders:       []Reminder{},
	}

	for _, tx := range snap.Transactions {
		switch tx.Type {
		case transactions.TypeIncome:
			s.TotalIncome += tx.Amount
		case transactions.TypeExpense:
			s.TotalExpenses += tx.Amount
			key := strings.ToLower(tx.Category)
			s.SpentByCategory[key] = formulas.Round2(s.SpentByCategory[key] + tx.Amount)
		}
	}
	s.TotalIncome = formulas.Round2(s.TotalIncome)
	s.TotalExpenses = formulas.Round2(s.TotalExpenses)
	s.Balance = formulas.Round2(s.TotalIncome - s.TotalExpenses)

	for _, b := range snap.Budgets {
		s.Budgets = append(s.Budgets, budgetUsage(b, s.SpentByCategory))
	}

	s.Reminders = buildReminders(snap, s.Budgets)
	s.Insights = buildInsights(snap)
	return s
}

func budgetUsage(b budgets.Budget, spentByCategory map[string]float64) BudgetUsage {
	spent := spentByCategory[strings.ToLower(b.Category)]

	usage := 0.0
	if b.LimitAmount > 0 {
		usage = formulas.Round2(spent / b.LimitAmount * 100)
	}

	threshold := b.AlertThreshold
	if threshold <= 0 {
		threshold = budgets.DefaultAlertThreshold
	}

	return BudgetUsage{
		Budget:       b,
		Spent:        spent,
		UsagePercent: usage,
		IsAlert:      usage >= threshold,
	}
}

// buildReminders emits reminders in fixed priority order, each kind
// bounded to its own cap.
func buildReminders(snap *Snapshot, usages []BudgetUsage) []Reminder {
	reminders := make([]Reminder, 0, MaxReminders)

	count := 0
	for _, o := range snap.Obligations {
		if count == maxObligationReminders {
			break
		}
		if o.Status == obligations.StatusPaid {
			continue
		}
		days, ok := daysBetween(snap.Today, o.DueDate)
		if !ok || days > nearDueDays {
			continue
		}
		title := fmt.Sprintf("Vence: %s", o.Title)
		if days < 0 {
			title = fmt.Sprintf("Vencida: %s", o.Title)
		}
		reminders = append(reminders, Reminder{
			Kind:     ReminderObligation,
			RefID:    o.ID,
			Title:    title,
			DueDate:  o.DueDate,
			DaysLeft: days,
			Amount:   o.Amount,
		})
		count++
	}

	count = 0
	for _, d := range snap.Debts {
		if count == maxDebtReminders {
			break
		}
		if d.RemainingInstallments <= 0 {
			continue
		}
		days, ok := daysBetween(snap.Today, d.NextPaymentDate)
		if !ok || days > nearDueDays {
			continue
		}
		reminders = append(reminders, Reminder{
			Kind:     ReminderDebt,
			RefID:    d.ID,
			Title:    fmt.Sprintf("Cuota: %s", d.Name),
			DueDate:  d.NextPaymentDate,
			DaysLeft: days,
			Amount:   d.MonthlyPayment,
		})
		count++
	}

	count = 0
	for _, u := range usages {
		if count == maxBudgetReminders {
			break
		}
		if !u.IsAlert {
			continue
		}
		reminders = append(reminders, Reminder{
			Kind:   ReminderBudget,
			RefID:  u.Budget.ID,
			Title:  fmt.Sprintf("Presupuesto %s al %.0f%%", u.Budget.Category, u.UsagePercent),
			Amount: u.Spent,
		})
		count++
	}

	count = 0
	for _, rule := range snap.Recurring {
		if count == maxRecurringReminders {
			break
		}
		days, ok := daysBetween(snap.Today, rule.NextRun)
		if !ok || days > nearDueDays {
			continue
		}
		reminders = append(reminders, Reminder{
			Kind:     ReminderRecurring,
			RefID:    rule.ID,
			Title:    fmt.Sprintf("Proximo: %s", rule.Description),
			DueDate:  rule.NextRun,
			DaysLeft: days,
			Amount:   rule.Amount,
		})
		count++
	}

	if len(reminders) > MaxReminders {
		reminders = reminders[:MaxReminders]
	}
	return reminders
}

// buildInsights computes daily-spend statistics over the month so
// far: one bucket per calendar day from the 1st through today.
func buildInsights(snap *Snapshot) Insights {
	daily := dailyExpenseSeries(snap)

	return Insights{
		DailySpendMean:   formulas.Round2(formulas.Mean(daily)),
		DailySpendStdDev: formulas.Round2(formulas.StdDev(daily)),
		WeeklyTrend:      formulas.MovingAverage(daily, 7),
	}
}

func dailyExpenseSeries(snap *Snapshot) []float64 {
	today, err := time.Parse("2006-01-02", snap.Today)
	if err != nil || !strings.HasPrefix(snap.Today, snap.Month) {
		return nil
	}

	daily := make([]float64, today.Day())
	for _, tx := range snap.Transactions {
		if tx.Type != transactions.TypeExpense {
			continue
		}
		t, err := time.Parse("2006-01-02", tx.Date)
		if err != nil || tx.Date[:7] != snap.Month {
			continue
		}
		day := t.Day()
		if day >= 1 && day <= len(daily) {
			daily[day-1] += tx.Amount
		}
	}
	return daily
}

// daysBetween returns the whole-day distance from today to the given
// date. Negative means overdue.
func daysBetween(today, date string) (int, bool) {
	from, err := time.Parse("2006-01-02", today)
	if err != nil {
		return 0, false
	}
	to, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return int(to.Sub(from).Hours() / 24), true
}
