package obligations

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/database"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Migrate(Schema, transactions.Schema))
	t.Cleanup(func() { db.Close() })
	return db.Conn()
}

type fixture struct {
	repo   *Repository
	ledger *transactions.Repository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	return &fixture{
		repo:   NewRepository(db, zerolog.Nop()),
		ledger: transactions.NewRepository(db, zerolog.Nop()),
	}
}

func (f *fixture) service() *Service {
	return NewService(f.repo, f.ledger, audit.NopRecorder{}, zerolog.Nop())
}

func (f *fixture) createObligation(t *testing.T, amount float64) *Obligation {
	t.Helper()
	obl, err := f.repo.Create(&Obligation{
		SpaceID:  "default",
		Title:    "Expensas marzo",
		Amount:   amount,
		DueDate:  "2024-03-10",
		Category: "Servicios",
	})
	require.NoError(t, err)
	return obl
}

func pay(amount float64) *PayRequest {
	return &PayRequest{PaymentAmount: &amount}
}

func TestConfirmPayment_Invariant(t *testing.T) {
	tests := []struct {
		name          string
		outstanding   float64
		payment       *PayRequest
		wantRemaining float64
		wantStatus    string
		wantTxAmount  float64
	}{
		{"partial", 500, pay(200), 300, StatusPending, 200},
		{"exact", 500, pay(500), 0, StatusPaid, 500},
		{"overpay clamps", 500, pay(900), 0, StatusPaid, 500},
		{"full by default", 500, &PayRequest{}, 0, StatusPaid, 500},
		{"cents", 100.10, pay(0.1), 100, StatusPending, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFixture(t)
			obl := f.createObligation(t, tt.outstanding)

			result, err := f.service().ConfirmPayment(context.Background(), "default", obl.ID, tt.payment)
			require.NoError(t, err)

			assert.Equal(t, tt.wantRemaining, result.Remaining)
			assert.Equal(t, tt.wantStatus, result.Obligation.Status)
			assert.Equal(t, tt.wantTxAmount, result.Transaction.Amount)
			assert.Equal(t, transactions.TypeExpense, result.Transaction.Type)
			assert.Equal(t, "Servicios", result.Transaction.Category)

			stored, err := f.repo.GetByID("default", obl.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
			if tt.wantStatus == StatusPaid {
				// Full payments leave the stored amount untouched.
				assert.Equal(t, tt.outstanding, stored.Amount)
			} else {
				assert.Equal(t, tt.wantRemaining, stored.Amount)
			}
		})
	}
}

func TestConfirmPayment_Validation(t *testing.T) {
	f := setupFixture(t)
	obl := f.createObligation(t, 500)
	svc := f.service()

	_, err := svc.ConfirmPayment(context.Background(), "default", "missing", &PayRequest{})
	assert.ErrorIs(t, err, apperrors.NewNotFoundError(""))

	_, err = svc.ConfirmPayment(context.Background(), "other-space", obl.ID, &PayRequest{})
	assert.ErrorIs(t, err, apperrors.NewNotFoundError(""))

	_, err = svc.ConfirmPayment(context.Background(), "default", obl.ID, pay(-10))
	assert.ErrorIs(t, err, apperrors.NewValidationError(""))

	_, err = svc.ConfirmPayment(context.Background(), "default", obl.ID, &PayRequest{PaymentDate: "10/03/2024"})
	assert.ErrorIs(t, err, apperrors.NewValidationError(""))

	// Paying a settled obligation is rejected.
	_, err = svc.ConfirmPayment(context.Background(), "default", obl.ID, &PayRequest{})
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), "default", obl.ID, &PayRequest{})
	assert.ErrorIs(t, err, apperrors.NewValidationError(""))
}

// failingStore wraps the real repository and fails balance updates on
// demand.
type failingStore struct {
	*Repository
	failUpdates bool
}

func (s *failingStore) UpdatePayment(spaceID, id string, remaining float64) error {
	if s.failUpdates {
		return errors.New("simulated update failure")
	}
	return s.Repository.UpdatePayment(spaceID, id, remaining)
}

func TestConfirmPayment_CompensatesOnUpdateFailure(t *testing.T) {
	f := setupFixture(t)
	obl := f.createObligation(t, 500)

	store := &failingStore{Repository: f.repo}
	svc := NewService(store, f.ledger, audit.NopRecorder{}, zerolog.Nop())

	// First payment succeeds normally.
	result, err := svc.ConfirmPayment(context.Background(), "default", obl.ID, pay(200))
	require.NoError(t, err)
	assert.Equal(t, 300.0, result.Remaining)
	assert.Equal(t, StatusPending, result.Obligation.Status)

	count, err := f.ledger.Count("default")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Second payment hits the simulated failure: the transaction
	// created for it must be deleted and the obligation untouched.
	store.failUpdates = true
	_, err = svc.ConfirmPayment(context.Background(), "default", obl.ID, pay(100))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.NewReconciliationConflictError("", nil))

	count, err = f.ledger.Count("default")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "compensating delete removed the new transaction")

	stored, err := f.repo.GetByID("default", obl.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.Amount)
	assert.Equal(t, StatusPending, stored.Status)
}

// gateStore holds every reader at a barrier after loading the
// obligation, forcing two concurrent payments to observe the same
// outstanding balance.
type gateStore struct {
	*Repository
	gate *sync.WaitGroup
}

func (s *gateStore) GetByID(spaceID, id string) (*Obligation, error) {
	o, err := s.Repository.GetByID(spaceID, id)
	s.gate.Done()
	s.gate.Wait()
	return o, err
}

// Concurrent confirmations of the same obligation are deliberately
// not serialized. This pins the resulting lost update down so the
// trade-off stays visible.
func TestConfirmPayment_ConcurrentDoubleConfirmLosesUpdate(t *testing.T) {
	f := setupFixture(t)
	obl := f.createObligation(t, 500)

	var gate sync.WaitGroup
	gate.Add(2)
	store := &gateStore{Repository: f.repo, gate: &gate}
	svc := NewService(store, f.ledger, audit.NopRecorder{}, zerolog.Nop())

	var done sync.WaitGroup
	done.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer done.Done()
			_, err := svc.ConfirmPayment(context.Background(), "default", obl.ID, pay(200))
			assert.NoError(t, err)
		}()
	}
	done.Wait()

	// Both payments were recorded in the ledger.
	count, err := f.ledger.Count("default")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// But each computed its remainder from the same snapshot: 400 was
	// paid, yet the balance only dropped by 200.
	stored, err := f.repo.GetByID("default", obl.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.Amount)
}
