package debts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/database"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

type fixture struct {
	repo   *Repository
	ledger *transactions.Repository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Migrate(Schema, transactions.Schema))
	t.Cleanup(func() { db.Close() })

	return &fixture{
		repo:   NewRepository(db.Conn(), zerolog.Nop()),
		ledger: transactions.NewRepository(db.Conn(), zerolog.Nop()),
	}
}

func (f *fixture) service() *Service {
	return NewService(f.repo, f.ledger, audit.NopRecorder{}, zerolog.Nop())
}

func (f *fixture) createDebt(t *testing.T) *Debt {
	t.Helper()
	debt, err := f.repo.Create(&Debt{
		SpaceID:               "default",
		Name:                  "Préstamo auto",
		TotalAmount:           1200000,
		MonthlyPayment:        100000,
		RemainingInstallments: 10,
		TotalInstallments:     12,
		NextPaymentDate:       "2024-03-15",
		Category:              "Deudas",
	})
	require.NoError(t, err)
	return debt
}

func TestConfirmPayment_AdvancesInstallment(t *testing.T) {
	f := setupFixture(t)
	debt := f.createDebt(t)

	result, err := f.service().ConfirmPayment(context.Background(), "default", debt.ID, &PayRequest{})
	require.NoError(t, err)

	assert.Equal(t, 9, result.Remaining)
	assert.Equal(t, 9, result.Debt.RemainingInstallments)
	assert.Equal(t, "2024-04-15", result.Debt.NextPaymentDate)
	assert.Equal(t, 100000.0, result.Transaction.Amount, "payment defaults to the monthly payment")
	assert.Equal(t, transactions.TypeExpense, result.Transaction.Type)
	assert.Equal(t, "Deudas", result.Transaction.Category)
	assert.Equal(t, "Cuota 3/12: Préstamo auto", result.Transaction.Description)

	stored, err := f.repo.GetByID("default", debt.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.RemainingInstallments)
	assert.Equal(t, "2024-04-15", stored.NextPaymentDate)
	assert.LessOrEqual(t, stored.RemainingInstallments, stored.TotalInstallments)
}

func TestConfirmPayment_ExplicitAmountAndLastInstallment(t *testing.T) {
	f := setupFixture(t)
	debt, err := f.repo.Create(&Debt{
		SpaceID:               "default",
		Name:                  "Heladera",
		TotalAmount:           600000,
		MonthlyPayment:        50000,
		RemainingInstallments: 1,
		TotalInstallments:     12,
		NextPaymentDate:       "2024-03-01",
	})
	require.NoError(t, err)

	amount := 52500.0
	result, err := f.service().ConfirmPayment(context.Background(), "default", debt.ID, &PayRequest{
		PaymentAmount: &amount,
		PaymentDate:   "2024-03-02",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 52500.0, result.Transaction.Amount)
	assert.Equal(t, "2024-03-02", result.Transaction.Date)
	// No category on the debt: installments default to Deudas.
	assert.Equal(t, "Deudas", result.Transaction.Category)

	// The counter is exhausted, further payments are rejected.
	_, err = f.service().ConfirmPayment(context.Background(), "default", debt.ID, &PayRequest{})
	assert.ErrorIs(t, err, apperrors.NewValidationError(""))
}

func TestConfirmPayment_NotFound(t *testing.T) {
	f := setupFixture(t)
	debt := f.createDebt(t)

	_, err := f.service().ConfirmPayment(context.Background(), "default", "missing", &PayRequest{})
	assert.ErrorIs(t, err, apperrors.NewNotFoundError(""))

	_, err = f.service().ConfirmPayment(context.Background(), "other-space", debt.ID, &PayRequest{})
	assert.ErrorIs(t, err, apperrors.NewNotFoundError(""))
}

type failingStore struct {
	*Repository
	failAdvance bool
}

func (s *failingStore) AdvancePayment(spaceID, id string, remainingInstallments int, nextPaymentDate string) error {
	if s.failAdvance {
		return errors.New("simulated update failure")
	}
	return s.Repository.AdvancePayment(spaceID, id, remainingInstallments, nextPaymentDate)
}

func TestConfirmPayment_CompensatesOnUpdateFailure(t *testing.T) {
	f := setupFixture(t)
	debt := f.createDebt(t)

	store := &failingStore{Repository: f.repo, failAdvance: true}
	svc := NewService(store, f.ledger, audit.NopRecorder{}, zerolog.Nop())

	_, err := svc.ConfirmPayment(context.Background(), "default", debt.ID, &PayRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.NewReconciliationConflictError("", nil))

	count, err := f.ledger.Count("default")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "compensating delete removed the transaction")

	stored, err := f.repo.GetByID("default", debt.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.RemainingInstallments)
	assert.Equal(t, "2024-03-15", stored.NextPaymentDate)
}

func TestRepositoryListIsSpaceScoped(t *testing.T) {
	f := setupFixture(t)
	f.createDebt(t)

	list, err := f.repo.List("default")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.repo.List("space-b")
	require.NoError(t, err)
	assert.Empty(t, list)

	err = f.repo.Delete("space-b", list1ID(list))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func list1ID(list []Debt) string {
	if len(list) == 0 {
		return "missing"
	}
	return list[0].ID
}
