package importer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/database"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

func setupService(t *testing.T) (*Service, *transactions.Repository) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Migrate(transactions.Schema))
	t.Cleanup(func() { db.Close() })

	repo := transactions.NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, audit.NopRecorder{}, zerolog.Nop()), repo
}

func TestImport_MixedLanguageColumns(t *testing.T) {
	svc, repo := setupService(t)

	req := &Request{
		Source: "resumen-banco.csv",
		Rows: []Row{
			{"tipo": "gasto", "monto": "1.234,56", "fecha": "15/03/2024", "rubro": "Supermercado", "detalle": "Coto"},
			{"type": "income", "amount": 250000.0, "date": "2024-03-01", "description": "Sueldo"},
			{"tipo": "ingreso", "importe": "1000", "fecha": 45292.0},
		},
	}

	result, err := svc.Import(context.Background(), "default", req)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 3, result.Total)

	txs, err := repo.List("default", 0)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	byDesc := make(map[string]transactions.Transaction)
	for _, tx := range txs {
		byDesc[tx.Description] = tx
	}

	coto := byDesc["Coto"]
	assert.Equal(t, transactions.TypeExpense, coto.Type)
	assert.Equal(t, 1234.56, coto.Amount)
	assert.Equal(t, "2024-03-15", coto.Date)
	assert.Equal(t, "Supermercado", coto.Category)

	// Serial date, default description and category.
	imported := byDesc["Movimiento importado"]
	assert.Equal(t, transactions.TypeIncome, imported.Type)
	assert.Equal(t, "2024-01-01", imported.Date)
	assert.Equal(t, "General", imported.Category)
}

func TestImport_SkipsRowsThatFailNormalization(t *testing.T) {
	svc, repo := setupService(t)

	req := &Request{
		Source: "planilla",
		Rows: []Row{
			{"tipo": "gasto", "monto": "500", "fecha": "2024-03-01"},
			{"tipo": "ingreso", "monto": "-50", "fecha": "2024/13/40"},
			{"tipo": "transferencia", "monto": "100", "fecha": "2024-03-01"},
			{"tipo": "gasto", "monto": "abc", "fecha": "2024-03-01"},
			{"tipo": "gasto", "monto": "100"},
		},
	}

	result, err := svc.Import(context.Background(), "default", req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, 5, result.Total)

	count, err := repo.Count("default")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImport_OmittedSourceDefaultsLabel(t *testing.T) {
	svc, repo := setupService(t)

	req := &Request{
		Rows: []Row{{"tipo": "gasto", "monto": "500", "fecha": "2024-03-01"}},
	}

	result, err := svc.Import(context.Background(), "default", req)
	require.NoError(t, err)
	assert.Equal(t, defaultSource, result.Source)
	assert.Equal(t, 1, result.Imported)

	count, err := repo.Count("default")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImport_Validation(t *testing.T) {
	svc, _ := setupService(t)

	tests := []struct {
		name string
		req  *Request
	}{
		{"long source", &Request{
			Source: "una-fuente-con-un-nombre-larguisimo-que-no-entra.csv",
			Rows:   []Row{{"tipo": "gasto", "monto": "1", "fecha": "2024-03-01"}},
		}},
		{"no rows", &Request{Source: "x"}},
		{"nothing importable", &Request{Source: "x", Rows: []Row{{"tipo": "gasto", "monto": "abc"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), "default", tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.NewValidationError(""))
		})
	}
}

func TestImport_RejectsOversizedBatch(t *testing.T) {
	svc, _ := setupService(t)

	rows := make([]Row, MaxRows+1)
	for i := range rows {
		rows[i] = Row{"tipo": "gasto", "monto": "1", "fecha": "2024-03-01"}
	}

	_, err := svc.Import(context.Background(), "default", &Request{Source: "x", Rows: rows})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.NewValidationError(""))
}
