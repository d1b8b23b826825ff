package transactions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldear/finanzas/internal/database"
	"github.com/waldear/finanzas/internal/httpx"
	"github.com/waldear/finanzas/internal/modules/audit"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Migrate(Schema))
	t.Cleanup(func() { db.Close() })
	return db.Conn()
}

func testRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httpx.SpaceMiddleware)
	r.Route("/transactions", h.Routes)
	return r
}

func TestHandleCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	router := testRouter(NewHandler(repo, audit.NopRecorder{}, zerolog.Nop()))

	body := `{"type":"expense","amount":1500.50,"description":"Supermercado Coto","date":"2024-03-10"}`
	req := httptest.NewRequest("POST", "/transactions", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created Transaction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	// No explicit category: the categorizer fills it in.
	assert.Equal(t, "Supermercado", created.Category)

	req = httptest.NewRequest("GET", "/transactions", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var listed []Transaction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 1500.50, listed[0].Amount)
}

func TestHandleCreate_Validation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	router := testRouter(NewHandler(repo, audit.NopRecorder{}, zerolog.Nop()))

	tests := []struct {
		name string
		body string
	}{
		{"bad type", `{"type":"transfer","amount":10,"description":"x"}`},
		{"zero amount", `{"type":"expense","amount":0,"description":"x"}`},
		{"negative amount", `{"type":"expense","amount":-5,"description":"x"}`},
		{"empty description", `{"type":"expense","amount":10,"description":"  "}`},
		{"bad date", `{"type":"expense","amount":10,"description":"x","date":"10/03/2024"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/transactions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, "VALIDATION_ERROR", body["error"]["code"])
		})
	}
}

func TestSpaceIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())
	router := testRouter(NewHandler(repo, audit.NopRecorder{}, zerolog.Nop()))

	_, err := repo.Create(&Transaction{
		SpaceID: "space-a", Type: TypeExpense, Amount: 100,
		Description: "nafta", Category: "Transporte", Date: "2024-03-01",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/transactions", nil)
	req.Header.Set(httpx.SpaceHeader, "space-b")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var listed []Transaction
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	assert.Empty(t, listed)

	// Deleting across spaces is a 404, not a delete.
	tx, err := repo.GetByID("space-a", mustFirstID(t, repo, "space-a"))
	require.NoError(t, err)
	require.NotNil(t, tx)

	req = httptest.NewRequest("DELETE", fmt.Sprintf("/transactions/%s", tx.ID), nil)
	req.Header.Set(httpx.SpaceHeader, "space-b")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepositoryBatchRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	dup := "same-id"
	batch := []Transaction{
		{ID: dup, SpaceID: "s", Type: TypeExpense, Amount: 10, Description: "a", Category: "Gastos", Date: "2024-01-01"},
		{ID: dup, SpaceID: "s", Type: TypeExpense, Amount: 20, Description: "b", Category: "Gastos", Date: "2024-01-02"},
	}

	err := repo.CreateBatch(batch)
	require.Error(t, err)

	count, err := repo.Count("s")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "failed batch must not leave partial rows")
}

func mustFirstID(t *testing.T, repo *Repository, space string) string {
	t.Helper()
	txs, err := repo.List(space, 1)
	require.NoError(t, err)
	require.NotEmpty(t, txs)
	return txs[0].ID
}
