package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/k9tracker/k9tracker/internal/metrics"
)

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitMiddleware_AllowsWithinLimit(t *testing.T) {
	handler := RateLimitMiddleware(5)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("10.0.0.1:5000"))

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	handler := RateLimitMiddleware(3)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:5000"))
	}

	// 4th request should be rate-limited
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:5001"))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rate limit exceeded") {
		t.Errorf("expected JSON error body, got %s", w.Body.String())
	}
}

func TestRateLimitMiddleware_KeysOnClientHost(t *testing.T) {
	handler := RateLimitMiddleware(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust limit for the first client, across source ports
	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:5000"))
	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:6000"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.2:5000"))
	if w.Code != http.StatusOK {
		t.Errorf("second client should not be rate-limited, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("10.0.0.1:7000"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("first client should be rate-limited, got %d", w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	called := false
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if !called {
		t.Error("inner handler was not called")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
	if !strings.Contains(buf.String(), `"status":418`) {
		t.Errorf("expected status in log line, got %s", buf.String())
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/breeds/{breed}/top", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/breeds/Malinois/top", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/breeds/Berger/top", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, f := range families {
		if f.GetName() != "k9_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "route" {
					found = true
					if lp.GetValue() != "/breeds/{breed}/top" {
						t.Errorf("unexpected route label %q", lp.GetValue())
					}
				}
			}
			if metric.GetCounter().GetValue() != 2 {
				t.Errorf("expected both requests on one series, got %v", metric.GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Error("request counter not recorded")
	}
}

func TestNewMetricsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(metrics.WithRegistry(reg)).ComparisonCompleted(1)
	router := NewMetricsRouter(reg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), "k9_versus_comparisons_total 1") {
		t.Errorf("expected comparisons counter in exposition, got %s", body)
	}
}
