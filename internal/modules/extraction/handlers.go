package extraction

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/httpx"
)

// Handler handles extraction HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new extraction handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "extraction").Logger(),
	}
}

// Routes mounts the extraction endpoints
func (h *Handler) Routes(r chi.Router) {
	r.Post("/normalize", h.HandleNormalize)
}

// HandleNormalize handles POST /normalize - raw extraction to
// candidate rows
func (h *Handler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid JSON body"))
		return
	}

	if len(req.Entries) == 0 {
		httpx.Error(w, h.log, apperrors.NewValidationError("entries is required"))
		return
	}

	result := h.service.Normalize(r.Context(), &req.Extraction, req.MaxRows)
	httpx.JSON(w, http.StatusOK, result)
}
