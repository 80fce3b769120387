package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/folio/internal/apperr"
)

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeJSON encodes v as the response body. Encoding failures can only be
// logged since the status line is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: encode response", slog.Int("status", status), slog.String("error", err.Error()))
	}
}

// writeError maps a service error onto a status code. Unknown errors are
// logged with attrs and hidden behind a generic 500.
func writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrContentUnavailable):
		slog.Warn(op, append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusServiceUnavailable, errorBody("content unavailable"))
	default:
		slog.Error(op, append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
