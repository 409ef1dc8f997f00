package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/k9tracker/k9tracker/internal/metrics"
	"github.com/k9tracker/k9tracker/internal/store"
	"github.com/k9tracker/k9tracker/internal/versus"
)

// Comparer runs a head-to-head comparison.
type Comparer interface {
	Compare(ctx context.Context, a, b store.CoupleID) (*versus.Comparison, error)
}

type VersusHandler struct {
	engine  Comparer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewVersusHandler(engine Comparer, m *metrics.Metrics, logger *slog.Logger) *VersusHandler {
	return &VersusHandler{engine: engine, metrics: m, logger: logger}
}

// Compare handles GET /versus?a=&b= with couple IDs.
func (h *VersusHandler) Compare(w http.ResponseWriter, r *http.Request) {
	a := strings.TrimSpace(r.URL.Query().Get("a"))
	b := strings.TrimSpace(r.URL.Query().Get("b"))
	if a == "" || b == "" {
		writeError(w, http.StatusBadRequest, "query parameters a and b are required")
		return
	}

	c, err := h.engine.Compare(r.Context(), store.CoupleID(a), store.CoupleID(b))
	if err != nil {
		h.metrics.ComparisonFailed(failureReason(err))
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, versus.ErrSameCompetitor):
		return "same_competitor"
	case errors.Is(err, versus.ErrFetch):
		return "fetch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}
