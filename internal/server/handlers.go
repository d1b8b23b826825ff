package server

import (
	"net/http"

	"github.com/waldear/finanzas/internal/httpx"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "finanzas",
	})
}
