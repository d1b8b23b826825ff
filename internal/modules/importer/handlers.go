package importer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
	"github.com/waldear/finanzas/internal/httpx"
)

// Handler handles import HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new import handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "importer").Logger(),
	}
}

// Routes registers import routes on the given router
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.handleImport)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, h.log, apperrors.NewValidationError("invalid request body"))
		return
	}

	result, err := h.service.Import(r.Context(), httpx.Space(r), &req)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, result)
}
