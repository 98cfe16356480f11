package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-bakery/internal/observability"
)

// RouteMounter is implemented by every domain HTTP handler.
type RouteMounter interface {
	MountRoutes(r chi.Router)
}

// HealthChecker reports readiness of a backing service.
type HealthChecker func(r *http.Request) error

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	IngredientHandler RouteMounter
	RecipeHandler     RouteMounter
	ProductionHandler RouteMounter
	ProductHandler    RouteMounter
	SalesHandler      RouteMounter
	ReportHandler     RouteMounter
	JobHandler        RouteMounter

	// Ready is consulted by /healthz when set.
	Ready HealthChecker
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Ready != nil {
			if err := params.Ready(r); err != nil {
				if params.Logger != nil {
					params.Logger.Warn("health check failed", slog.Any("error", err))
				}
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		for _, h := range []RouteMounter{
			params.IngredientHandler,
			params.RecipeHandler,
			params.ProductionHandler,
			params.ProductHandler,
			params.ReportHandler,
			params.SalesHandler,
		} {
			if h != nil {
				h.MountRoutes(r)
			}
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
