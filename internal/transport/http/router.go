// Package httptransport assembles the public HTTP surface. It should stay a
// thin layer: route wiring and middleware only, with business logic behind
// the module handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "canopy/internal/access/handler"
	claimhandler "canopy/internal/claim/handler"
	"canopy/internal/platform/metrics"
	"canopy/internal/platform/middleware"
	policyhandler "canopy/internal/policy/handler"
	"canopy/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	TokenValidator middleware.TokenValidator

	Claims   *claimhandler.Handler
	Policies *policyhandler.Handler
	Roles    *accesshandler.Handler

	// Optional backing checks surfaced by /healthz.
	Checks map[string]HealthChecker
}

// NewRouter wires all public endpoints with the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(d.Metrics))

	r.Get("/healthz", healthHandler(d.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	auth := middleware.RequireAuth(d.TokenValidator, d.Logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Claims.Register(r, auth)
		d.Policies.Register(r, auth)
		d.Roles.Register(r, auth)
	})

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(r.Context()); err != nil {
				status[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.WriteJSON(w, code, status)
	}
}
