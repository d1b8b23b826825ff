package debts

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/httpx"
	"github.com/waldear/finanzas/internal/modules/audit"
)

// Handler handles debt HTTP requests
type Handler struct {
	repo     *Repository
	service  *Service
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewHandler creates a new debt handler
func NewHandler(repo *Repository, service *Service, recorder audit.Recorder, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		service:  service,
		recorder: recorder,
		log:      log.With().Str("handler", "debts").Logger(),
	}
}

// Routes registers debt routes on the given router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/pay", h.handlePay)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(httpx.Space(r))
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to list debts", err))
		return
	}
	if list == nil {
		list = []Debt{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid request body"))
		return
	}

	debt, err := fromCreateRequest(&req, httpx.Space(r))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}

	created, createErr := h.repo.Create(debt)
	if createErr != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to create debt", createErr))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    created.SpaceID,
		EntityType: "debt",
		EntityID:   created.ID,
		Action:     audit.ActionCreate,
		After: map[string]interface{}{
			"name":                   created.Name,
			"total_amount":           created.TotalAmount,
			"remaining_installments": created.RemainingInstallments,
		},
	})

	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	space := httpx.Space(r)
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(space, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Error(w, h.log, apperrors.NewNotFoundError("debt not found"))
			return
		}
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to delete debt", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    space,
		EntityType: "debt",
		EntityID:   id,
		Action:     audit.ActionDelete,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	var req PayRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, h.log, apperrors.NewValidationError("invalid request body"))
			return
		}
	}

	result, err := h.service.ConfirmPayment(r.Context(), httpx.Space(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, result)
}

func fromCreateRequest(req *CreateRequest, spaceID string) (*Debt, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	if req.TotalAmount <= 0 {
		return nil, apperrors.NewValidationError("total_amount must be positive")
	}
	if req.MonthlyPayment <= 0 {
		return nil, apperrors.NewValidationError("monthly_payment must be positive")
	}
	if req.TotalInstallments <= 0 {
		return nil, apperrors.NewValidationError("total_installments must be positive")
	}

	remaining := req.RemainingInstallments
	if remaining == 0 {
		remaining = req.TotalInstallments
	}
	if remaining < 0 || remaining > req.TotalInstallments {
		return nil, apperrors.NewValidationError("remaining_installments must be between 0 and total_installments")
	}

	nextDate := req.NextPaymentDate
	if nextDate == "" {
		nextDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", nextDate); err != nil {
		return nil, apperrors.NewValidationError("next_payment_date must be YYYY-MM-DD")
	}

	return &Debt{
		SpaceID:               spaceID,
		Name:                  name,
		TotalAmount:           req.TotalAmount,
		MonthlyPayment:        req.MonthlyPayment,
		RemainingInstallments: remaining,
		TotalInstallments:     req.TotalInstallments,
		NextPaymentDate:       nextDate,
		Category:              strings.TrimSpace(req.Category),
	}, nil
}
