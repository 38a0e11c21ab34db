// Package httptransport assembles the HTTP surface: consumer lookup and
// wallet routes behind bearer auth, admin routes behind the shared token,
// and the unauthenticated operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rcgateway/internal/account"
	"rcgateway/pkg/platform/httputil"
	"rcgateway/pkg/platform/middleware/admin"
	"rcgateway/pkg/platform/middleware/metadata"
	request "rcgateway/pkg/platform/middleware/request"
	"rcgateway/pkg/platform/middleware/requesttime"
)

// Registrar mounts routes on a router. Domain handler packages implement it
// so the transport layer never imports their internals.
type Registrar interface {
	Register(r chi.Router)
}

// AdminRegistrar mounts admin-only routes.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// GuestRegistrar mounts routes served without account authentication.
type GuestRegistrar interface {
	RegisterGuest(r chi.Router)
}

// HealthChecker reports dependency health for readiness probes.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router wires together. Nil health checkers
// are skipped; an empty AdminToken leaves the admin surface closed.
type Deps struct {
	Logger     *slog.Logger
	Resolver   account.Resolver
	AdminToken string
	Consumer   []Registrar
	Admin      []AdminRegistrar
	Guest      []GuestRegistrar
	Health     map[string]HealthChecker
}

// NewRouter builds the chi router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	for _, reg := range deps.Guest {
		reg.RegisterGuest(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(account.Middleware(deps.Resolver))
		for _, reg := range deps.Consumer {
			reg.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(deps.AdminToken, deps.Logger))
		for _, reg := range deps.Admin {
			reg.RegisterAdmin(r)
		}
	})

	return r
}

func handleHealth(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := make(map[string]string, len(checkers))
		for name, checker := range checkers {
			if checker == nil {
				continue
			}
			if err := checker.Health(r.Context()); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}
