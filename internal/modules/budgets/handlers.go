package budgets

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/httpx"
	"github.com/waldear/finanzas/internal/modules/audit"
)

var monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Handler handles budget HTTP requests
type Handler struct {
	repo     *Repository
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewHandler creates a new budget handler
func NewHandler(repo *Repository, recorder audit.Recorder, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		recorder: recorder,
		log:      log.With().Str("handler", "budgets").Logger(),
	}
}

// Routes registers budget routes on the given router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleUpsert)
	r.Delete("/{id}", h.handleDelete)
}

// handleList returns the budgets for the requested month, defaulting
// to the current UTC month.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	} else if !monthRe.MatchString(month) {
		httpx.Error(w, h.log, apperrors.NewValidationError("month must be YYYY-MM"))
		return
	}

	list, err := h.repo.ListByMonth(httpx.Space(r), month)
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to list budgets", err))
		return
	}
	if list == nil {
		list = []Budget{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid request body"))
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		httpx.Error(w, h.log, apperrors.NewValidationError("category is required"))
		return
	}
	if req.LimitAmount <= 0 {
		httpx.Error(w, h.log, apperrors.NewValidationError("limit_amount must be positive"))
		return
	}

	month := req.Month
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	} else if !monthRe.MatchString(month) {
		httpx.Error(w, h.log, apperrors.NewValidationError("month must be YYYY-MM"))
		return
	}

	threshold := req.AlertThreshold
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}
	if threshold > 100 {
		httpx.Error(w, h.log, apperrors.NewValidationError("alert_threshold must be at most 100"))
		return
	}

	saved, err := h.repo.Upsert(&Budget{
		SpaceID:        httpx.Space(r),
		Category:       category,
		Month:          month,
		LimitAmount:    req.LimitAmount,
		AlertThreshold: threshold,
	})
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to save budget", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    saved.SpaceID,
		EntityType: "budget",
		EntityID:   saved.ID,
		Action:     audit.ActionUpdate,
		After: map[string]interface{}{
			"category":     saved.Category,
			"month":        saved.Month,
			"limit_amount": saved.LimitAmount,
		},
	})

	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	space := httpx.Space(r)
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(space, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Error(w, h.log, apperrors.NewNotFoundError("budget not found"))
			return
		}
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to delete budget", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    space,
		EntityType: "budget",
		EntityID:   id,
		Action:     audit.ActionDelete,
	})

	w.WriteHeader(http.StatusNoContent)
}
