package obligations

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

// Store is the obligation persistence surface the payment engine
// needs.
type Store interface {
	GetByID(spaceID, id string) (*Obligation, error)
	UpdatePayment(spaceID, id string, remaining float64) error
	MarkPaid(spaceID, id string) error
}

// Ledger is the transaction persistence surface the payment engine
// needs. Delete doubles as the compensating action.
type Ledger interface {
	Create(tx *transactions.Transaction) (*transactions.Transaction, error)
	Delete(spaceID, id string) error
}

// Service applies confirmed payments against obligations. A payment
// spans two tables with no atomic transaction across them, so the
// service runs a fixed sequence with a single compensating step:
// create the ledger entry, update the obligation, and delete the
// ledger entry if the update fails.
type Service struct {
	store    Store
	ledger   Ledger
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewService creates a new payment reconciliation service
func NewService(store Store, ledger Ledger, recorder audit.Recorder, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		ledger:   ledger,
		recorder: recorder,
		log:      log.With().Str("service", "obligations").Logger(),
	}
}

// ConfirmPayment applies a payment to an obligation. A missing or
// over-sized payment amount is clamped to the outstanding balance.
//
// Concurrent confirmations against the same obligation are not
// serialized here: both can read the same outstanding balance and
// each computes its own remainder. Payments are human-initiated and
// rare, so last write wins.
func (s *Service) ConfirmPayment(ctx context.Context, spaceID, id string, req *PayRequest) (*PaymentResult, error) {
	obl, err := s.store.GetByID(spaceID, id)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load obligation", err)
	}
	if obl == nil {
		return nil, apperrors.NewNotFoundError("obligation not found")
	}
	if obl.Status == StatusPaid || obl.Amount <= 0 {
		return nil, apperrors.NewValidationError("obligation has no outstanding balance")
	}

	outstanding := obl.Amount
	payment := outstanding
	if req.PaymentAmount != nil {
		if *req.PaymentAmount <= 0 {
			return nil, apperrors.NewValidationError("payment_amount must be positive")
		}
		if *req.PaymentAmount < payment {
			payment = *req.PaymentAmount
		}
	}
	payment = normalizer.Round2(payment)

	date := time.Now().UTC().Format("2006-01-02")
	if req.PaymentDate != "" {
		if _, err := time.Parse("2006-01-02", req.PaymentDate); err != nil {
			return nil, apperrors.NewValidationError("payment_date must be YYYY-MM-DD")
		}
		date = req.PaymentDate
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Pago: %s", obl.Title)
	}
	category := obl.Category
	if category == "" {
		category = normalizer.DefaultExpenseCategory
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

	// Step 2: remaining balance and status. Only a partial payment
	// rewrites the stored amount.
	remaining := normalizer.Round2(outstanding - payment)
	if remaining < 0 {
		remaining = 0
	}
	if remaining == 0 {
		err = s.store.MarkPaid(spaceID, id)
	} else {
		err = s.store.UpdatePayment(spaceID, id, remaining)
	}

	// Step 3: compensate on update failure by deleting the ledger
	// entry just created. The delete is best-effort; if it also fails
	// an orphan transaction remains and operators find it via the log.
	if err != nil {
		if delErr := s.ledger.Delete(spaceID, tx.ID); delErr != nil {
			s.log.Error().
				Err(delErr).
				Str("obligation_id", id).
				Str("transaction_id", tx.ID).
				Msg("Compensating delete failed, orphan transaction left behind")
		} else {
			s.log.Warn().
				Str("obligation_id", id).
				Str("transaction_id", tx.ID).
				Msg("Obligation update failed, payment transaction reverted")
		}
		return nil, apperrors.NewReconciliationConflictError("failed to apply payment to obligation", err)
	}

	updated := *obl
	updated.Amount = remaining
	updated.Status = StatusPending
	if remaining == 0 {
		updated.Amount = obl.Amount
		updated.Status = StatusPaid
	}

	// Step 4: audit both sides, independently best-effort.
	s.recorder.Record(ctx, audit.Event{
		SpaceID:    spaceID,
		EntityType: "transaction",
		EntityID:   tx.ID,
		Action:     audit.ActionCreate,
		After:      map[string]interface{}{"type": tx.Type, "amount": tx.Amount, "date": tx.Date},
		Metadata:   map[string]interface{}{"obligation_id": id},
	})
	s.recorder.Record(ctx, audit.Event{
		SpaceID:    spaceID,
		EntityType: "obligation",
		EntityID:   id,
		Action:     audit.ActionUpdate,
		Before:     map[string]interface{}{"amount": outstanding, "status": obl.Status},
		After:      map[string]interface{}{"amount": updated.Amount, "status": updated.Status},
	})

	s.log.Info().
		Str("obligation_id", id).
		Float64("payment", payment).
		Float64("remaining", remaining).
		Str("status", updated.Status).
		Msg("Payment reconciled")

	return &PaymentResult{
		Obligation:  &updated,
		Transaction: tx,
		Remaining:   remaining,
	}, nil
}
