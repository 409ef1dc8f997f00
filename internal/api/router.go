package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/k9tracker/k9tracker/internal/analytics"
	"github.com/k9tracker/k9tracker/internal/metrics"
)

func NewRouter(engine Comparer, svc *analytics.Service, m *metrics.Metrics, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware(m))
	r.Use(RateLimitMiddleware(rateLimit))

	vs := NewVersusHandler(engine, m, logger)
	an := NewAnalyticsHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/overview", an.Overview)
		r.Get("/years", an.Years)

		r.Get("/competitors", an.Search)
		r.Get("/competitors/{id}/profile", an.Profile)
		r.Get("/competitors/{id}/history", an.History)

		r.Get("/breeds", an.Breeds)
		r.Get("/breeds/{breed}/top", an.TopByBreed)

		r.Get("/regions", an.Regions)
		r.Get("/judges", an.Judges)
		r.Get("/judges/{name}", an.Judge)

		r.Get("/versus", vs.Compare)
	})

	return r
}

func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
