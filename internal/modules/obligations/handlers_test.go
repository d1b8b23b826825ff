package obligations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waldear/finanzas/internal/httpx"
	"github.com/waldear/finanzas/internal/modules/audit"
)

func testRouter(f *fixture) *chi.Mux {
	h := NewHandler(f.repo, f.service(), audit.NopRecorder{}, zerolog.Nop())
	r := chi.NewRouter()
	r.Use(httpx.SpaceMiddleware)
	r.Route("/obligations", h.Routes)
	return r
}

func TestHandleCreatePayAndList(t *testing.T) {
	f := setupFixture(t)
	router := testRouter(f)

	body := `{"title":"Tarjeta Visa","amount":80000,"due_date":"2024-03-10","category":"Deudas"}`
	req := httptest.NewRequest("POST", "/obligations", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created Obligation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, StatusPending, created.Status)

	req = httptest.NewRequest("POST", "/obligations/"+created.ID+"/pay", strings.NewReader(`{"payment_amount":30000}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result PaymentResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 50000.0, result.Remaining)
	assert.Equal(t, 30000.0, result.Transaction.Amount)
	assert.Equal(t, "Deudas", result.Transaction.Category)

	// The due date is in the past, so the listing derives overdue.
	req = httptest.NewRequest("GET", "/obligations", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listed []Obligation
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, StatusOverdue, listed[0].Status)
	assert.Equal(t, 50000.0, listed[0].Amount)
}

func TestHandlePay_WithoutBodyPaysInFull(t *testing.T) {
	f := setupFixture(t)
	router := testRouter(f)
	obl := f.createObligation(t, 1200)

	req := httptest.NewRequest("POST", "/obligations/"+obl.ID+"/pay", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result PaymentResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 0.0, result.Remaining)
	assert.Equal(t, StatusPaid, result.Obligation.Status)
}

func TestHandleDelete_CrossSpaceIsNotFound(t *testing.T) {
	f := setupFixture(t)
	router := testRouter(f)
	obl := f.createObligation(t, 100)

	req := httptest.NewRequest("DELETE", "/obligations/"+obl.ID, nil)
	req.Header.Set(httpx.SpaceHeader, "space-b")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("DELETE", "/obligations/"+obl.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
