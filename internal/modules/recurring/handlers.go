package recurring

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
	"github.com/waldear/finanzas/internal/modules/normalizer"
	"github.com/waldear/finanzas/internal/modules/transactions"
)

// Handler handles recurring rule HTTP requests
type Handler struct {
	repo     *Repository
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewHandler creates a new recurring rule handler
func NewHandler(repo *Repository, recorder audit.Recorder, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		recorder: recorder,
		log:      log.With().Str("handler", "recurring").Logger(),
	}
}

// Routes registers recurring rule routes on the given router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListActive(httpx.Space(r))
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to list recurring rules", err))
		return
	}
	if list == nil {
		list = []Rule{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid request body"))
		return
	}

	rule, err := fromCreateRequest(&req, httpx.Space(r))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}

	created, createErr := h.repo.Create(rule)
	if createErr != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to create recurring rule", createErr))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    created.SpaceID,
		EntityType: "recurring_rule",
		EntityID:   created.ID,
		Action:     audit.ActionCreate,
		After: map[string]interface{}{
			"description": created.Description,
			"frequency":   created.Frequency,
			"next_run":    created.NextRun,
		},
	})

	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	space := httpx.Space(r)
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(space, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Error(w, h.log, apperrors.NewNotFoundError("recurring rule not found"))
			return
		}
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to delete recurring rule", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    space,
		EntityType: "recurring_rule",
		EntityID:   id,
		Action:     audit.ActionDelete,
	})

	w.WriteHeader(http.StatusNoContent)
}

func fromCreateRequest(req *CreateRequest, spaceID string) (*Rule, error) {
	if !transactions.ValidType(req.Type) {
		return nil, apperrors.NewValidationError("type must be income or expense")
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required")
	}
	if !ValidFrequency(req.Frequency) {
		return nil, apperrors.NewValidationError("frequency must be weekly, biweekly or monthly")
	}

	nextRun := req.NextRun
	if nextRun == "" {
		nextRun = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", nextRun); err != nil {
		return nil, apperrors.NewValidationError("next_run must be YYYY-MM-DD")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = normalizer.Categorize(req.Type, description)
	}

	return &Rule{
		SpaceID:     spaceID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: description,
		Category:    category,
		Frequency:   req.Frequency,
		NextRun:     nextRun,
		IsActive:    true,
	}, nil
}
