package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/apperrors"
)

// JSON writes v as a JSON response
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the stable error envelope: a machine-checkable code
// plus a human-readable message. Internal error details stay in logs.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error renders an application error. 5xx-class errors are logged
// with full context; 4xx-class ones are the caller's problem.
func Error(w http.ResponseWriter, log zerolog.Logger, err error) {
	appErr := apperrors.From(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error().Err(appErr).Str("code", appErr.Code).Msg("Request failed")
	}

	var body errorBody
	body.Error.Code = appErr.Code
	body.Error.Message = appErr.Message
	JSON(w, appErr.StatusCode, body)
}
