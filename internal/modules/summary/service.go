package summary

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/modules/budgets"
	"github.com/waldear/finanzas/internal/modules/debts"
	"github.com/waldear/finanzas/internal/modules/obligations"
	"github.com/waldear/finanzas/internal/modules/recurring"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Service loads the read-only snapshot and aggregates it
type Service struct {
	transactions *transactions.Repository
	obligations  *obligations.Repository
	debts        *debts.Repository
	budgets      *budgets.Repository
	recurring    *recurring.Repository
	log          zerolog.Logger
}

// NewService creates a new summary service
func NewService(
	txRepo *transactions.Repository,
	oblRepo *obligations.Repository,
	debtRepo *debts.Repository,
	budgetRepo *budgets.Repository,
	recurringRepo *recurring.Repository,
	log zerolog.Logger,
) *Service {
	return &Service{
		transactions: txRepo,
		obligations:  oblRepo,
		debts:        debtRepo,
		budgets:      budgetRepo,
		recurring:    recurringRepo,
		log:          log.With().Str("service", "summary").Logger(),
	}
}

// ForCurrentMonth aggregates the current UTC month for a space
func (s *Service) ForCurrentMonth(spaceID string) (*Summary, error) {
	now := time.Now().UTC()
	month := now.Format("2006-01")

	txs, err := s.transactions.ListByMonth(spaceID, month)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load transactions", err)
	}
	obls, err := s.obligations.List(spaceID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load obligations", err)
	}
	debtList, err := s.debts.List(spaceID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load debts", err)
	}
	budgetList, err := s.budgets.ListByMonth(spaceID, month)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load budgets", err)
	}
	rules, err := s.recurring.ListActive(spaceID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load recurring rules", err)
	}

	return Aggregate(&Snapshot{
		Month:        month,
		Today:        now.Format("2006-01-02"),
		Transactions: txs,
		Obligations:  obls,
		Debts:        debtList,
		Budgets:      budgetList,
		Recurring:    rules,
	}), nil
}
