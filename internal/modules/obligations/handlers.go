package obligations

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

// Handler handles obligation HTTP requests
type Handler struct {
	repo     *Repository
	service  *Service
	recorder audit.Recorder
	log      zerolog.Logger
}

// NewHandler creates a new obligation handler
func NewHandler(repo *Repository, service *Service, recorder audit.Recorder, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		service:  service,
		recorder: recorder,
		log:      log.With().Str("handler", "obligations").Logger(),
	}
}

// Routes registers obligation routes on the given router
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/pay", h.handlePay)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(httpx.Space(r))
	if err != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to list obligations", err))
		return
	}
	if list == nil {
		list = []Obligation{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid request body"))
		return
	}

	obl, err := fromCreateRequest(&req, httpx.Space(r))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}

	created, createErr := h.repo.Create(obl)
	if createErr != nil {
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to create obligation", createErr))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    created.SpaceID,
		EntityType: "obligation",
		EntityID:   created.ID,
		Action:     audit.ActionCreate,
		After:      map[string]interface{}{"title": created.Title, "amount": created.Amount, "due_date": created.DueDate},
	})

	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	space := httpx.Space(r)
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(space, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Error(w, h.log, apperrors.NewNotFoundError("obligation not found"))
			return
		}
		httpx.Error(w, h.log, apperrors.NewPersistenceError("failed to delete obligation", err))
		return
	}

	h.recorder.Record(r.Context(), audit.Event{
		SpaceID:    space,
		EntityType: "obligation",
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

func fromCreateRequest(req *CreateRequest, spaceID string) (*Obligation, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive")
	}

	dueDate := req.DueDate
	if dueDate == "" {
		dueDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", dueDate); err != nil {
		return nil, apperrors.NewValidationError("due_date must be YYYY-MM-DD")
	}
	if req.MinimumPayment < 0 {
		return nil, apperrors.NewValidationError("minimum_payment must not be negative")
	}

	return &Obligation{
		SpaceID:        spaceID,
		Title:          title,
		Amount:         req.Amount,
		DueDate:        dueDate,
		Status:         StatusPending,
		Category:       strings.TrimSpace(req.Category),
		MinimumPayment: req.MinimumPayment,
	}, nil
}
