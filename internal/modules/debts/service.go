package debts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/normalizer"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Store is the debt persistence surface the payment engine needs.
type Store interface {
	GetByID(spaceID, id string) (*Debt, error)
	AdvancePayment(spaceID, id string, remainingInstallments int, nextPaymentDate string) error
}

// Ledger is the transaction persistence surface the payment engine
// needs. Delete doubles as the compensating action.
type Ledger interface {
	Create(tx *transactions.Transaction) (*transactions.Transaction, error)
	Delete(spaceID, id string) error
}

// Service applies installment payments against debts with the same
// compensation shape as obligation payments: ledger entry first, debt
// update second, delete the entry if the update fails.
type Service struct {
	store    Store
	ledger   Ledger
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewService creates a new debt payment service
func NewService(store Store, ledger Ledger, recorder audit.Recorder, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		ledger:   ledger,
		recorder: recorder,
		log:      log.With().Str("service", "debts").Logger(),
	}
}

// ConfirmPayment applies one installment payment. The payment amount
// defaults to the monthly payment; the installment counter drops by
// one and the next payment date advances one month.
func (s *Service) ConfirmPayment(ctx context.Context, spaceID, id string, req *PayRequest) (*PaymentResult, error) {
	debt, err := s.store.GetByID(spaceID, id)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load debt", err)
	}
	if debt == nil {
		return nil, apperrors.NewNotFoundError("debt not found")
	}
	if debt.RemainingInstallments <= 0 {
		return nil, apperrors.NewValidationError("debt has no remaining installments")
	}

	payment := debt.MonthlyPayment
	if req.PaymentAmount != nil {
		if *req.PaymentAmount <= 0 {
			return nil, apperrors.NewValidationError("payment_amount must be positive")
		}
		payment = *req.PaymentAmount
	}
	payment = normalizer.Round2(payment)
	if payment <= 0 {
		return nil, apperrors.NewValidationError("debt has no monthly payment configured")
	}

	date := time.Now().UTC().Format("2006-01-02")
	if req.PaymentDate != "" {
		if _, err := time.Parse("2006-01-02", req.PaymentDate); err != nil {
			return nil, apperrors.NewValidationError("payment_date must be YYYY-MM-DD")
		}
		date = req.PaymentDate
	}

	description := req.Description
	if description == "" {
		installment := debt.TotalInstallments - debt.RemainingInstallments + 1
		description = fmt.Sprintf("Cuota %d/%d: %s", installment, debt.TotalInstallments, debt.Name)
	}
	category := debt.Category
	if category == "" {
		category = "Deudas"
	}

	// Step 1: ledger entry.
	tx, err := s.ledger.Create(&transactions.Transaction{
		SpaceID:     spaceID,
		Type:        transactions.TypeExpense,
		Amount:      payment,
		Description: description,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to record payment transaction", err)
	}

	// Step 2: installment counter and next due date.
	remaining := debt.RemainingInstallments - 1
	if remaining < 0 {
		remaining = 0
	}
	nextDate := advanceOneMonth(debt.NextPaymentDate)

	if err := s.store.AdvancePayment(spaceID, id, remaining, nextDate); err != nil {
		// Step 3: compensate, best effort.
		if delErr := s.ledger.Delete(spaceID, tx.ID); delErr != nil {
			s.log.Error().
				Err(delErr).
				Str("debt_id", id).
				Str("transaction_id", tx.ID).
				Msg("Compensating delete failed, orphan transaction left behind")
		} else {
			s.log.Warn().
				Str("debt_id", id).
				Str("transaction_id", tx.ID).
				Msg("Debt update failed, payment transaction reverted")
		}
		return nil, apperrors.NewReconciliationConflictError("failed to apply payment to debt", err)
	}

	updated := *debt
	updated.RemainingInstallments = remaining
	updated.NextPaymentDate = nextDate

	// Step 4: audit both sides, independently best-effort.
	s.recorder.Record(ctx, audit.Event{
		SpaceID:    spaceID,
		EntityType: "transaction",
		EntityID:   tx.ID,
		Action:     audit.ActionCreate,
		After:      map[string]interface{}{"type": tx.Type, "amount": tx.Amount, "date": tx.Date},
		Metadata:   map[string]interface{}{"debt_id": id},
	})
	s.recorder.Record(ctx, audit.Event{
		SpaceID:    spaceID,
		EntityType: "debt",
		EntityID:   id,
		Action:     audit.ActionUpdate,
		Before: map[string]interface{}{
			"remaining_installments": debt.RemainingInstallments,
			"next_payment_date":      debt.NextPaymentDate,
		},
		After: map[string]interface{}{
			"remaining_installments": remaining,
			"next_payment_date":      nextDate,
		},
	})

	s.log.Info().
		Str("debt_id", id).
		Float64("payment", payment).
		Int("remaining_installments", remaining).
		Msg("Installment reconciled")

	return &PaymentResult{
		Debt:        &updated,
		Transaction: tx,
		Remaining:   remaining,
	}, nil
}

// advanceOneMonth moves an ISO date forward one calendar month. An
// unparseable date falls back to one month from today.
func advanceOneMonth(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		t = time.Now().UTC()
	}
	return t.AddDate(0, 1, 0).Format("2006-01-02")
}
