package transactions

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/httpx"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/normalizer"
)

// Handler handles transaction HTTP requests
type Handler struct {
	repo     *Repository
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewHandler creates a new transactions handler
func NewHandler(repo *Repository, recorder audit.Recorder, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		recorder: recorder,
		log:      log.With().Str("handler", "transactions").Logger(),
	}
}

// Routes mounts the transaction endpoints
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}

// HandleList handles GET / - most recent transactions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > MaxListLimit {
			httpx.Error(w, h.log, apperrors.NewValidationError("limit must be 1-300"))
			return
		}
		limit = l
	}

	txs, err := h.repo.List(httpx.Space(r), limit)
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to list transactions", err))
		return
	}
	if txs == nil {
		txs = []Transaction{}
	}

	httpx.JSON(w, http.StatusOK, txs)
}

// HandleCreate handles POST / - direct transaction entry
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	tx, appErr := fromCreateRequest(httpx.Space(r), &req)
	if appErr != nil {
		httpx.Error(w, h.log, appErr)
		return
	}

	created, err := h.repo.Create(tx)
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to create transaction", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    created.SpaceID,
		EntityType: "transaction",
		EntityID:   created.ID,
		Action:     audit.ActionCreate,
		After:      snapshot(created),
	})

	httpx.JSON(w, http.StatusCreated, created)
}

// HandleUpdate handles PUT /{id} - explicit update
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	space := httpx.Space(r)
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(space, id)
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to load transaction", err))
		return
	}
	if existing == nil {
		httpx.Error(w, h.log, apperrors.NewNotFoundError("transaction not found"))
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	before := snapshot(existing)
	if appErr := applyUpdate(existing, &req); appErr != nil {
		httpx.Error(w, h.log, appErr)
		return
	}

	if err := h.repo.Update(existing); err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to update transaction", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    space,
		EntityType: "transaction",
		EntityID:   existing.ID,
		Action:     audit.ActionUpdate,
		Before:     before,
		After:      snapshot(existing),
	})

	httpx.JSON(w, http.StatusOK, existing)
}

// HandleDelete handles DELETE /{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	space := httpx.Space(r)
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(space, id)
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to load transaction", err))
		return
	}
	if existing == nil {
		httpx.Error(w, h.log, apperrors.NewNotFoundError("transaction not found"))
		return
	}

	if err := h.repo.Delete(space, id); err != nil {
		if err == sql.ErrNoRows {
			httpx.Error(w, h.log, apperrors.NewNotFoundError("transaction not found"))
			return
		}
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to delete transaction", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    space,
		EntityType: "transaction",
		EntityID:   id,
		Action:     audit.ActionDelete,
		Before:     snapshot(existing),
	})

	httpx.JSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func fromCreateRequest(spaceID string, req *CreateRequest) (*Transaction, *apperrors.AppError) {
	if !ValidType(req.Type) {
		return nil, apperrors.NewValidationError("type must be income or expense")
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive")
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required")
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.NewValidationError("date must be YYYY-MM-DD")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = normalizer.Categorize(req.Type, description)
	}

	return &Transaction{
		SpaceID:     spaceID,
		Type:        req.Type,
		Amount:      normalizer.Round2(req.Amount),
		Description: description,
		Category:    category,
		Date:        date,
	}, nil
}

func applyUpdate(tx *Transaction, req *UpdateRequest) *apperrors.AppError {
	if req.Type != "" {
		if !ValidType(req.Type) {
			return apperrors.NewValidationError("type must be income or expense")
		}
		tx.Type = req.Type
	}
	if req.Amount != 0 {
		if req.Amount < 0 {
			return apperrors.NewValidationError("amount must be positive")
		}
		tx.Amount = normalizer.Round2(req.Amount)
	}
	if req.Description != "" {
		tx.Description = strings.TrimSpace(req.Description)
	}
	if req.Category != "" {
		tx.Category = strings.TrimSpace(req.Category)
	}
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			return apperrors.NewValidationError("date must be YYYY-MM-DD")
		}
		tx.Date = req.Date
	}
	return nil
}

func snapshot(tx *Transaction) map[string]interface{} {
	return map[string]interface{}{
		"type":        tx.Type,
		"amount":      tx.Amount,
		"description": tx.Description,
		"category":    tx.Category,
		"date":        tx.Date,
	}
}
