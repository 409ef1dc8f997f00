package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/k9tracker/k9tracker/internal/analytics"
	"github.com/k9tracker/k9tracker/internal/store"
)

var yearPattern = regexp.MustCompile(`^[0-9]{4}$`)

type AnalyticsHandler struct {
	svc    *analytics.Service
	logger *slog.Logger
}

func NewAnalyticsHandler(svc *analytics.Service, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logger}
}

func queryYear(r *http.Request) (string, error) {
	year := r.URL.Query().Get("year")
	if year != "" && !yearPattern.MatchString(year) {
		return "", fmt.Errorf("%w: year %q", analytics.ErrInvalidFilter, year)
	}
	return year, nil
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Overview(r.Context())
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AnalyticsHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	results, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *AnalyticsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	d, err := analytics.ParseDiscipline(r.URL.Query().Get("discipline"))
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	p, err := h.svc.Profile(r.Context(), store.CoupleID(chi.URLParam(r, "id")), year, d)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AnalyticsHandler) History(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	d, err := analytics.ParseDiscipline(r.URL.Query().Get("discipline"))
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	runs, err := h.svc.History(r.Context(), store.CoupleID(chi.URLParam(r, "id")), year, d)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *AnalyticsHandler) Breeds(w http.ResponseWriter, r *http.Request) {
	breeds, err := h.svc.Breeds(r.Context())
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, breeds)
}

func (h *AnalyticsHandler) TopByBreed(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.TopByBreed(r.Context(), chi.URLParam(r, "breed"))
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *AnalyticsHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.svc.EventYears(r.Context())
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}

func (h *AnalyticsHandler) Regions(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	regions, err := h.svc.Regions(r.Context(), year, r.URL.Query().Get("grade"))
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

func (h *AnalyticsHandler) Judges(w http.ResponseWriter, r *http.Request) {
	by, err := analytics.ParseJudgeSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	judges, err := h.svc.Judges(r.Context(), r.URL.Query().Get("grade"), by)
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, judges)
}

func (h *AnalyticsHandler) Judge(w http.ResponseWriter, r *http.Request) {
	j, err := h.svc.Judge(r.Context(), chi.URLParam(r, "name"), r.URL.Query().Get("grade"))
	if err != nil {
		writeFailure(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}
