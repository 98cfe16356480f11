package app

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/observability"
)

type pingHandler struct{}

func (pingHandler) MountRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newTestRouter(ready HealthChecker) http.Handler {
	return NewRouter(RouterParams{
		Config:            &Config{RateLimitPerMinute: 1000},
		Metrics:           observability.NewMetrics(),
		IngredientHandler: pingHandler{},
		Ready:             ready,
	})
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestRouterMountsUnderAPI(t *testing.T) {
	router := newTestRouter(nil)

	rr := serve(router, "/api/ping")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	require.Equal(t, http.StatusNotFound, serve(router, "/ping").Code)

	rr = serve(router, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `bakery_http_requests_total{code="204",route="/api/ping"} 1`)
}

func TestHealthz(t *testing.T) {
	rr := serve(newTestRouter(nil), "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = serve(newTestRouter(func(*http.Request) error { return errors.New("db down") }), "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouterLogsEachRequestOnce(t *testing.T) {
	var buf bytes.Buffer
	previous := chimw.DefaultLogger
	chimw.DefaultLogger = chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: log.New(&buf, "", 0), NoColor: true})
	t.Cleanup(func() { chimw.DefaultLogger = previous })

	rr := serve(newTestRouter(nil), "/api/ping")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, 1, strings.Count(buf.String(), "/api/ping"))
}
