package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/k9tracker/k9tracker/internal/analytics"
	"github.com/k9tracker/k9tracker/internal/store"
	"github.com/k9tracker/k9tracker/internal/versus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps domain errors to a status. Unexpected errors are logged and
// reported without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, versus.ErrSameCompetitor), errors.Is(err, analytics.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
